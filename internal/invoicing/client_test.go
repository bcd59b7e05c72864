package invoicing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painel-vendas/painel/internal/dates"
)

type capturedCall struct {
	Call      string           `json:"call"`
	AppKey    string           `json:"app_key"`
	AppSecret string           `json:"app_secret"`
	Param     []map[string]any `json:"param"`
}

type recorderStub struct {
	calls  int
	failed int
}

func (r *recorderStub) ObserveUpstream(upstream string, start time.Time, err error) {
	r.calls++
	if err != nil {
		r.failed++
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recorderStub) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	rec := &recorderStub{}
	return NewClient(Config{BaseURL: srv.URL + "/", AppKey: "key", AppSecret: "secret", Timeout: time.Second}, rec), rec
}

var window = dates.Window{Start: "2025-06-09", End: "2025-06-15"}

func TestSummaryAggregates(t *testing.T) {
	var got capturedCall
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, summaryPath, r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"faturamentoResumo":{"nFaturadas":4,"vFaturadas":"7.500,00"}}`))
	})

	summary, err := client.Summary(t.Context(), window, false)
	require.NoError(t, err)

	assert.Equal(t, "ObterResumoProdutos", got.Call)
	assert.Equal(t, "key", got.AppKey)
	assert.Equal(t, "secret", got.AppSecret)
	require.Len(t, got.Param, 1)
	assert.Equal(t, "09/06/2025", got.Param[0]["dDataInicio"])
	assert.Equal(t, "15/06/2025", got.Param[0]["dDataFim"])
	assert.Equal(t, true, got.Param[0]["lApenasResumo"])

	assert.Equal(t, 4, summary.Count)
	assert.Equal(t, 7500.0, summary.TotalValue)
	assert.Equal(t, 1875.0, summary.AverageValue)
	assert.False(t, summary.ItemsAvailable)
	assert.Empty(t, summary.Items)
	assert.Equal(t, 1, rec.calls)
}

func TestSummaryZeroCountHasZeroAverage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"faturamentoResumo":{"nFaturadas":0,"vFaturadas":0}}`))
	})
	summary, err := client.Summary(t.Context(), window, false)
	require.NoError(t, err)
	assert.Zero(t, summary.AverageValue)
}

func TestSummaryDetailedProbesItemList(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"faturamentoResumo":{"nFaturadas":2,"vFaturadas":300},
			"produtos":[],
			"itens":[
				{"cCodigo":"CK1","cDescricao":"Cookie Chocolate","nQtde":3,"vTotal":"45,00"},
				{"codigo":"AG1","descricao":"Agua sem gas","quantidade":"2","valor":8}
			]
		}`))
	})

	summary, err := client.Summary(t.Context(), window, true)
	require.NoError(t, err)
	require.True(t, summary.ItemsAvailable)
	require.Len(t, summary.Items, 2)
	assert.Equal(t, LineItem{Code: "CK1", Description: "Cookie Chocolate", Quantity: 3, Value: 45}, summary.Items[0])
	assert.Equal(t, LineItem{Code: "AG1", Description: "Agua sem gas", Quantity: 2, Value: 8}, summary.Items[1])
}

func TestSummaryDetailedWithoutItems(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"faturamentoResumo":{"nFaturadas":1,"vFaturadas":10}}`))
	})
	summary, err := client.Summary(t.Context(), window, true)
	require.NoError(t, err)
	assert.False(t, summary.ItemsAvailable)
	assert.NotNil(t, summary.Items)
	assert.Empty(t, summary.Items)
}

func TestSummaryFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"fault": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"faultstring":"ERROR: app_key invalida","faultcode":"SOAP-ENV:Client-100"}`))
		},
		"status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
		"missing totals": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"outro":{}}`))
		},
		"negative": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"faturamentoResumo":{"nFaturadas":1,"vFaturadas":-5}}`))
		},
		"garbage amount": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"faturamentoResumo":{"nFaturadas":1,"vFaturadas":"abc"}}`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			client, rec := newTestClient(t, handler)
			_, err := client.Summary(t.Context(), window, false)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrGateway)
			var gwErr *GatewayError
			require.ErrorAs(t, err, &gwErr)
			assert.NotEmpty(t, gwErr.Diagnostic())
			assert.Equal(t, 1, rec.failed)
		})
	}
}

func TestListInvoicesPagesAndFilters(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, invoicesPath, r.URL.Path)
		var body capturedCall
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ListarNF", body.Call)
		assert.Equal(t, "1", body.Param[0]["tpNF"])
		calls.Add(1)
		switch body.Param[0]["pagina"] {
		case float64(1):
			_, _ = w.Write([]byte(`{"pagina":1,"total_de_paginas":2,"nfCadastro":[
				{"ide":{"dEmi":"10/06/2025","nNF":"123","finNFe":"1"},"nfDestInt":{"cRazao":"Padaria Central"},"total":{"vNF":"1.250,50"},"compl":{"nIdNF":987}},
				{"ide":{"dEmi":"11/06/2025","nNF":"124"},"total":{"vNF":0}}
			]}`))
		default:
			_, _ = w.Write([]byte(`{"pagina":2,"total_de_paginas":2,"nfCadastro":[
				{"ide":{"dEmi":"12/06/2025","nNF":125},"total":{"vNF":99.9}}
			]}`))
		}
	})

	invoices, err := client.ListInvoices(t.Context(), window)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, invoices, 2)
	assert.Equal(t, Invoice{ID: "987", Date: "2025-06-10", Customer: "Padaria Central", Document: "123", Total: 1250.5, Status: "1"}, invoices[0])
	assert.Equal(t, Invoice{ID: "3", Date: "2025-06-12", Customer: "N/A", Document: "125", Total: 99.9, Status: "N/D"}, invoices[1])
}

func TestListInvoicesRejectsWindowBeyondPageLimit(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"pagina":1,"total_de_paginas":80,"nfCadastro":[{"ide":{"nNF":"1"},"total":{"vNF":10}}]}`))
	})

	invoices, err := client.ListInvoices(t.Context(), window)
	assert.ErrorIs(t, err, ErrGateway)
	assert.Contains(t, err.Error(), "80 pages")
	assert.Nil(t, invoices)
	assert.Equal(t, int32(maxInvoicePages), calls.Load())
}

func TestListInvoicesEmptyFault(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"faultstring":"ERROR: Não existem registros para a página [1]!","faultcode":"SOAP-ENV:Client-5113"}`))
	})
	invoices, err := client.ListInvoices(t.Context(), window)
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"1.234,56":       "1234.56",
		"1234,5":         "1234.5",
		"1234.56":        "1234.56",
		"R$ 10,00":       "10",
		"":               "0",
		" 2.000.000,00 ": "2000000",
		"1.234":          "1234",
		"2.000.000":      "2000000",
		"12.5":           "12.5",
		"1234.567":       "1234.567",
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.String(), in)
	}
	_, err := ParseAmount("dez")
	assert.Error(t, err)
}

func TestLineItemField(t *testing.T) {
	item := LineItem{Code: "CK1", Description: "Cookie"}
	v, ok := item.Field("DESCRICAO")
	assert.True(t, ok)
	assert.Equal(t, "Cookie", v)
	v, ok = item.Field("codigo")
	assert.True(t, ok)
	assert.Equal(t, "CK1", v)
	_, ok = item.Field("categoria")
	assert.False(t, ok)
}
