// Package invoicing talks to the Omie invoicing API: period sales summaries,
// the optional itemised breakdown and the NF-e listing.
package invoicing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/painel-vendas/painel/internal/dates"
	"github.com/painel-vendas/painel/internal/observability"
)

const (
	summaryPath  = "/produtos/vendas-resumo/"
	invoicesPath = "/produtos/nfconsultar/"

	invoicesPageSize = 100
	maxInvoicePages  = 50
)

// Config holds the invoicing service credentials and endpoint.
type Config struct {
	BaseURL   string
	AppKey    string
	AppSecret string
	Timeout   time.Duration
}

// Recorder receives one observation per outbound call.
type Recorder interface {
	ObserveUpstream(upstream string, start time.Time, err error)
}

// Client issues calls against the invoicing API.
type Client struct {
	baseURL    string
	appKey     string
	appSecret  string
	httpClient *http.Client
	recorder   Recorder
}

// NewClient constructs a Client. recorder may be nil.
func NewClient(cfg Config, recorder Recorder) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		appKey:    cfg.AppKey,
		appSecret: cfg.AppSecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		recorder: recorder,
	}
}

type envelope struct {
	Call      string `json:"call"`
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
	Param     []any  `json:"param"`
}

type summaryParam struct {
	DataInicio   string `json:"dDataInicio"`
	DataFim      string `json:"dDataFim"`
	ApenasResumo bool   `json:"lApenasResumo"`
}

type summaryTotals struct {
	Count *Amount `json:"nFaturadas"`
	Total *Amount `json:"vFaturadas"`
}

// Summary fetches aggregate revenue for the window. With detailed set the
// itemised breakdown is requested too; when the provider omits it Items is
// empty and ItemsAvailable is false.
func (c *Client) Summary(ctx context.Context, window dates.Window, detailed bool) (Summary, error) {
	const op = "summary"
	var root rawObject
	err := c.call(ctx, op, summaryPath, "ObterResumoProdutos", summaryParam{
		DataInicio:   window.LocalStart(),
		DataFim:      window.LocalEnd(),
		ApenasResumo: !detailed,
	}, &root)
	if err != nil {
		return Summary{}, err
	}

	rawTotals, ok := root["faturamentoResumo"]
	if !ok {
		return Summary{}, malformed(op, "faturamentoResumo missing")
	}
	var totals summaryTotals
	if err := json.Unmarshal(rawTotals, &totals); err != nil {
		return Summary{}, malformed(op, err.Error())
	}
	if totals.Count == nil || totals.Total == nil {
		return Summary{}, malformed(op, "nFaturadas or vFaturadas missing")
	}
	if totals.Count.IsNegative() || totals.Total.IsNegative() {
		return Summary{}, malformed(op, "negative totals")
	}

	count := int(totals.Count.IntPart())
	summary := Summary{
		Count:      count,
		TotalValue: totals.Total.InexactFloat64(),
		Items:      []LineItem{},
	}
	if count > 0 {
		summary.AverageValue = totals.Total.Div(decimal.NewFromInt(int64(count))).InexactFloat64()
	}

	if !detailed {
		return summary, nil
	}
	for _, raw := range probeItems(root) {
		item, err := toLineItem(raw)
		if err != nil {
			return Summary{}, malformed(op, err.Error())
		}
		summary.Items = append(summary.Items, item)
	}
	summary.ItemsAvailable = len(summary.Items) > 0
	return summary, nil
}

type invoicesParam struct {
	Pagina             int    `json:"pagina"`
	RegistrosPorPagina int    `json:"registros_por_pagina"`
	ApenasImportadoAPI string `json:"apenas_importado_api"`
	TipoNF             string `json:"tpNF"`
	Ambiente           string `json:"tpAmb"`
	ApenasResumo       string `json:"cApenasResumo"`
	EmissaoInicial     string `json:"dEmiInicial"`
	EmissaoFinal       string `json:"dEmiFinal"`
}

type invoicesPage struct {
	Pagina         int          `json:"pagina"`
	TotalDePaginas int          `json:"total_de_paginas"`
	Cadastro       []nfCadastro `json:"nfCadastro"`
}

type nfCadastro struct {
	Ide struct {
		Emissao    string          `json:"dEmi"`
		Numero     json.RawMessage `json:"nNF"`
		Finalidade json.RawMessage `json:"finNFe"`
	} `json:"ide"`
	Destinatario struct {
		RazaoSocial string `json:"cRazao"`
	} `json:"nfDestInt"`
	Total struct {
		Valor Amount `json:"vNF"`
	} `json:"total"`
	Compl struct {
		ID json.RawMessage `json:"nIdNF"`
	} `json:"compl"`
}

// ListInvoices pages through issued outbound production NF-e in the window
// and drops those with zero value.
func (c *Client) ListInvoices(ctx context.Context, window dates.Window) ([]Invoice, error) {
	const op = "list invoices"
	invoices := []Invoice{}
	seen := 0
	for page := 1; page <= maxInvoicePages; page++ {
		var result invoicesPage
		err := c.call(ctx, op, invoicesPath, "ListarNF", invoicesParam{
			Pagina:             page,
			RegistrosPorPagina: invoicesPageSize,
			ApenasImportadoAPI: "N",
			TipoNF:             "1",
			Ambiente:           "1",
			ApenasResumo:       "S",
			EmissaoInicial:     window.LocalStart(),
			EmissaoFinal:       window.LocalEnd(),
		}, &result)
		if err != nil {
			if isEmptyPage(err) {
				break
			}
			return nil, err
		}
		for _, nf := range result.Cadastro {
			seen++
			invoice := toInvoice(nf, seen)
			if invoice.Total > 0 {
				invoices = append(invoices, invoice)
			}
		}
		if result.TotalDePaginas <= page {
			break
		}
		if page == maxInvoicePages {
			return nil, &GatewayError{Op: op, Detail: fmt.Sprintf("window spans %d pages, limit is %d", result.TotalDePaginas, maxInvoicePages)}
		}
	}
	return invoices, nil
}

func toInvoice(nf nfCadastro, position int) Invoice {
	id := rawString(nf.Compl.ID)
	if id == "" || id == "0" {
		id = strconv.Itoa(position)
	}
	emissao := strings.TrimSpace(nf.Ide.Emissao)
	if strings.Contains(emissao, "/") {
		emissao = dates.LocalToISO(emissao)
	}
	customer := strings.TrimSpace(nf.Destinatario.RazaoSocial)
	if customer == "" {
		customer = "N/A"
	}
	status := rawString(nf.Ide.Finalidade)
	if status == "" {
		status = "N/D"
	}
	return Invoice{
		ID:       id,
		Date:     emissao,
		Customer: customer,
		Document: rawString(nf.Ide.Numero),
		Total:    nf.Total.Valor.InexactFloat64(),
		Status:   status,
	}
}

// isEmptyPage reports the fault the provider returns for a page past the end.
func isEmptyPage(err error) bool {
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		return false
	}
	return strings.Contains(strings.ToLower(gwErr.Detail), "não existem registros")
}

type fault struct {
	String string `json:"faultstring"`
	Code   string `json:"faultcode"`
}

func (c *Client) call(ctx context.Context, op, path, method string, param any, dest any) (err error) {
	start := time.Now()
	defer func() {
		if c.recorder != nil {
			c.recorder.ObserveUpstream(observability.UpstreamInvoicing, start, err)
		}
	}()

	body, err := json.Marshal(envelope{
		Call:      method,
		AppKey:    c.appKey,
		AppSecret: c.appSecret,
		Param:     []any{param},
	})
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &GatewayError{Op: op, Status: resp.StatusCode, Err: err}
	}

	var f fault
	if jsonErr := json.Unmarshal(payload, &f); jsonErr == nil && f.String != "" {
		return &GatewayError{Op: op, Status: resp.StatusCode, Detail: f.String}
	}
	if resp.StatusCode >= 400 {
		return &GatewayError{Op: op, Status: resp.StatusCode, Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return malformed(op, err.Error())
	}
	return nil
}
