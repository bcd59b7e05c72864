package goals

import (
	"context"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/painel-vendas/painel/internal/dates"
)

// FileStore serves goals from a YAML document, re-read on every call.
//
//	metas:
//	  - mes: 2025-06-01
//	    tipo: COOKIES
//	    titulo: Cookies vendidos
//	    componentes:
//	      - metrica: QTD
//	        alvo: 300
//	        regra: {campo: descricao, padroes: [COOKIE]}
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the YAML file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

type goalFile struct {
	Goals []fileGoal `yaml:"metas"`
}

type fileGoal struct {
	Month      string          `yaml:"mes"`
	Kind       string          `yaml:"tipo"`
	Title      string          `yaml:"titulo"`
	Components []fileComponent `yaml:"componentes"`
}

type fileComponent struct {
	Metric string    `yaml:"metrica"`
	Target float64   `yaml:"alvo"`
	Rule   *fileRule `yaml:"regra"`
}

type fileRule struct {
	Field    string   `yaml:"campo"`
	Patterns []string `yaml:"padroes"`
}

// GoalsForMonth implements Store.
func (s *FileStore) GoalsForMonth(ctx context.Context, month string) ([]Goal, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &StoreError{Op: "read goal file", Err: err}
	}
	var doc goalFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &StoreError{Op: "parse goal file", Detail: err.Error()}
	}

	var goalRows []goalRow
	var componentRows []componentRow
	for i, g := range doc.Goals {
		first, err := dates.FirstOfMonth(monthPrefix(g.Month))
		if err != nil {
			return nil, &StoreError{Op: "parse goal file", Detail: err.Error()}
		}
		if first != month {
			continue
		}
		goalID := int64(i + 1)
		title := g.Title
		goalRows = append(goalRows, goalRow{ID: goalID, Month: first, Kind: g.Kind, Title: &title})
		for j, c := range g.Components {
			target := c.Target
			row := componentRow{
				ID:     goalID*1000 + int64(j),
				GoalID: goalID,
				Metric: c.Metric,
				Target: &target,
			}
			if c.Rule != nil {
				field := c.Rule.Field
				row.Field = &field
				row.Patterns = c.Rule.Patterns
			}
			componentRows = append(componentRows, row)
		}
	}
	return assemble(goalRows, componentRows), nil
}
