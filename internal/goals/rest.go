package goals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/painel-vendas/painel/internal/observability"
	"github.com/painel-vendas/painel/internal/platform/httpx"
)

const (
	goalsTable      = "metas"
	componentsTable = "meta_componentes"
)

// RESTConfig points the store at a PostgREST (Supabase) endpoint.
type RESTConfig struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
}

// RESTStore reads goals through the store's REST query interface.
type RESTStore struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	recorder   Recorder
}

// NewRESTStore constructs a RESTStore. recorder may be nil.
func NewRESTStore(cfg RESTConfig, recorder Recorder) *RESTStore {
	return &RESTStore{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/") + "/rest/v1/",
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		recorder:   recorder,
	}
}

// GoalsForMonth implements Store.
func (s *RESTStore) GoalsForMonth(ctx context.Context, month string) ([]Goal, error) {
	var goalRows []goalRow
	err := s.get(ctx, "list goals", goalsTable, url.Values{
		"select": {"id,mes,tipo,titulo"},
		"mes":    {"eq." + month},
		"order":  {"id.asc"},
	}, &goalRows)
	if err != nil {
		return nil, err
	}
	if len(goalRows) == 0 {
		return []Goal{}, nil
	}

	var componentRows []componentRow
	err = s.get(ctx, "list components", componentsTable, url.Values{
		"select":  {"id,meta_id,metrica,alvo,regra_campo,regra_padroes"},
		"meta_id": {"in.(" + joinIDs(goalIDs(goalRows)) + ")"},
		"order":   {"id.asc"},
	}, &componentRows)
	if err != nil {
		return nil, err
	}
	return assemble(goalRows, componentRows), nil
}

func (s *RESTStore) get(ctx context.Context, op, table string, query url.Values, dest any) (err error) {
	start := time.Now()
	defer func() {
		if s.recorder != nil {
			s.recorder.ObserveUpstream(observability.UpstreamGoals, start, err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+table+"?"+query.Encode(), nil)
	if err != nil {
		return &StoreError{Op: op, Err: err}
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", httpx.RequestID(ctx))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &StoreError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &StoreError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= 400 {
		return &StoreError{Op: op, Status: resp.StatusCode, Detail: restMessage(payload, resp.StatusCode)}
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return &StoreError{Op: op, Detail: "malformed payload: " + err.Error()}
	}
	return nil
}

// restMessage pulls the message field out of a PostgREST error body.
func restMessage(payload []byte, status int) string {
	var body struct {
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Message != "" {
		if body.Details != "" {
			return body.Message + " (" + body.Details + ")"
		}
		return body.Message
	}
	return fmt.Sprintf("unexpected status %d", status)
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}
