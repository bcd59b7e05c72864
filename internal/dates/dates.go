// Package dates converts between ISO and Brazilian local date strings and
// resolves reporting windows.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ISOLayout is the yyyy-mm-dd layout used by the API.
	ISOLayout = "2006-01-02"
	// LocalLayout is the dd/mm/yyyy layout expected by the invoicing service.
	LocalLayout = "02/01/2006"

	defaultWindowDays = 7
)

// ErrInvalidWindow indicates a window whose start falls after its end.
var ErrInvalidWindow = errors.New("dates: start after end")

// Window is a resolved, inclusive reporting range in ISO format.
type Window struct {
	Start string
	End   string
}

// Validate ensures both bounds parse and Start does not exceed End.
func (w Window) Validate() error {
	start, err := ParseISO(w.Start)
	if err != nil {
		return err
	}
	end, err := ParseISO(w.End)
	if err != nil {
		return err
	}
	if start.After(end) {
		return ErrInvalidWindow
	}
	return nil
}

// LocalStart returns Start in dd/mm/yyyy.
func (w Window) LocalStart() string { return ToLocalFormat(w.Start) }

// LocalEnd returns End in dd/mm/yyyy.
func (w Window) LocalEnd() string { return ToLocalFormat(w.End) }

// ToLocalFormat rewrites yyyy-mm-dd as dd/mm/yyyy. Input without exactly two
// hyphen separators is returned unchanged.
func ToLocalFormat(iso string) string {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return iso
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// LocalToISO rewrites dd/mm/yyyy as yyyy-mm-dd, padding day and month. Input
// that does not split into three parts is returned unchanged.
func LocalToISO(local string) string {
	parts := strings.Split(local, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return local
	}
	return parts[2] + "-" + padTwo(parts[1]) + "-" + padTwo(parts[0])
}

// ToISO formats t as yyyy-mm-dd.
func ToISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// ParseISO parses a yyyy-mm-dd string in UTC.
func ParseISO(value string) (time.Time, error) {
	t, err := time.Parse(ISOLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("dates: parse iso %q: %w", value, err)
	}
	return t, nil
}

// ParseLocal parses a dd/mm/yyyy string in UTC.
func ParseLocal(value string) (time.Time, error) {
	t, err := time.Parse(LocalLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("dates: parse local %q: %w", value, err)
	}
	return t, nil
}

// DefaultWindow returns the trailing seven days ending on today, inclusive.
func DefaultWindow(today time.Time) Window {
	end := truncateDay(today)
	return Window{
		Start: ToISO(end.AddDate(0, 0, -(defaultWindowDays - 1))),
		End:   ToISO(end),
	}
}

// FirstOfMonth returns the first calendar day of the month containing iso.
func FirstOfMonth(iso string) (string, error) {
	t, err := ParseISO(iso)
	if err != nil {
		return "", err
	}
	return ToISO(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)), nil
}

// LastOfMonth returns the last calendar day of the month containing iso.
func LastOfMonth(iso string) (string, error) {
	t, err := ParseISO(iso)
	if err != nil {
		return "", err
	}
	return ToISO(time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)), nil
}

// MonthWindow spans the month containing month, capped at today when the
// month is still running.
func MonthWindow(month string, today time.Time) (Window, error) {
	first, err := FirstOfMonth(month)
	if err != nil {
		return Window{}, err
	}
	last, err := LastOfMonth(month)
	if err != nil {
		return Window{}, err
	}
	end := last
	todayISO := ToISO(truncateDay(today))
	if todayISO >= first && todayISO < last {
		end = todayISO
	}
	return Window{Start: first, End: end}, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func padTwo(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}
