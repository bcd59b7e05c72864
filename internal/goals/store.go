package goals

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrStore marks every failure reading the goal store.
var ErrStore = errors.New("goals: store failure")

// StoreError carries diagnostics for a failed goal store read.
type StoreError struct {
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *StoreError) Error() string {
	msg := "goals: " + e.Op
	if e.Status > 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrStore and the underlying cause.
func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStore}
	}
	return []error{ErrStore, e.Err}
}

// Diagnostic returns the upstream detail suitable for a response body.
func (e *StoreError) Diagnostic() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// Store returns the goals configured for a month (first-of-month ISO date).
// No goals is an empty slice, not an error.
type Store interface {
	GoalsForMonth(ctx context.Context, month string) ([]Goal, error)
}

// Recorder receives one observation per outbound call.
type Recorder interface {
	ObserveUpstream(upstream string, start time.Time, err error)
}

type goalRow struct {
	ID    int64   `json:"id"`
	Month string  `json:"mes"`
	Kind  string  `json:"tipo"`
	Title *string `json:"titulo"`
}

type componentRow struct {
	ID       int64    `json:"id"`
	GoalID   int64    `json:"meta_id"`
	Metric   string   `json:"metrica"`
	Target   *float64 `json:"alvo"`
	Field    *string  `json:"regra_campo"`
	Patterns []string `json:"regra_padroes"`
}

// assemble nests component rows under their goals, keeping row order.
func assemble(goalRows []goalRow, componentRows []componentRow) []Goal {
	byID := make(map[int64]int, len(goalRows))
	out := make([]Goal, 0, len(goalRows))
	for _, row := range goalRows {
		title := ""
		if row.Title != nil {
			title = strings.TrimSpace(*row.Title)
		}
		byID[row.ID] = len(out)
		out = append(out, Goal{
			ID:         row.ID,
			Month:      monthPrefix(row.Month),
			Kind:       Kind(strings.ToUpper(strings.TrimSpace(row.Kind))),
			Title:      title,
			Components: []Component{},
		})
	}
	sort.SliceStable(componentRows, func(i, j int) bool { return componentRows[i].ID < componentRows[j].ID })
	for _, row := range componentRows {
		idx, ok := byID[row.GoalID]
		if !ok {
			continue
		}
		component := Component{ID: row.ID, Metric: ParseMetric(row.Metric)}
		if row.Target != nil && *row.Target > 0 {
			component.Target = *row.Target
		}
		if row.Field != nil && strings.TrimSpace(*row.Field) != "" {
			component.Rule = &Rule{Field: strings.TrimSpace(*row.Field), Patterns: row.Patterns}
		}
		out[idx].Components = append(out[idx].Components, component)
	}
	return out
}

func goalIDs(rows []goalRow) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}

// monthPrefix trims timestamps such as 2025-06-01T00:00:00 to the date.
func monthPrefix(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
