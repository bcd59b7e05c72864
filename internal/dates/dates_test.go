package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLocalFormat(t *testing.T) {
	assert.Equal(t, "15/06/2025", ToLocalFormat("2025-06-15"))
	assert.Equal(t, "2025/06/15", ToLocalFormat("2025/06/15"), "non-ISO input passes through")
	assert.Equal(t, "", ToLocalFormat(""))
	assert.Equal(t, "2025-06", ToLocalFormat("2025-06"))
}

func TestLocalToISO(t *testing.T) {
	assert.Equal(t, "2025-06-05", LocalToISO("5/6/2025"))
	assert.Equal(t, "2025-12-31", LocalToISO("31/12/2025"))
	assert.Equal(t, "2025-12-31", LocalToISO("2025-12-31"))
}

func TestToISOPadsMonthAndDay(t *testing.T) {
	assert.Equal(t, "2025-01-02", ToISO(time.Date(2025, 1, 2, 23, 59, 0, 0, time.UTC)))
}

func TestLocalRoundTrip(t *testing.T) {
	for _, local := range []string{"01/01/2024", "29/02/2024", "31/12/1999", "15/06/2025"} {
		parsed, err := ParseLocal(local)
		require.NoError(t, err)
		assert.Equal(t, local, ToLocalFormat(ToISO(parsed)))
	}
}

func TestDefaultWindow(t *testing.T) {
	today := time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)
	w := DefaultWindow(today)
	assert.Equal(t, Window{Start: "2025-06-09", End: "2025-06-15"}, w)
	require.NoError(t, w.Validate())

	w = DefaultWindow(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-02-24", w.Start)
}

func TestFirstAndLastOfMonth(t *testing.T) {
	first, err := FirstOfMonth("2024-02-17")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", first)

	last, err := LastOfMonth("2024-02-17")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", last)

	_, err = FirstOfMonth("17/02/2024")
	assert.Error(t, err)
}

func TestMonthWindow(t *testing.T) {
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	w, err := MonthWindow("2025-06-01", today)
	require.NoError(t, err)
	assert.Equal(t, Window{Start: "2025-06-01", End: "2025-06-15"}, w)

	w, err = MonthWindow("2025-05-01", today)
	require.NoError(t, err)
	assert.Equal(t, Window{Start: "2025-05-01", End: "2025-05-31"}, w)
}

func TestWindowValidate(t *testing.T) {
	assert.ErrorIs(t, Window{Start: "2025-06-10", End: "2025-06-01"}.Validate(), ErrInvalidWindow)
	assert.Error(t, Window{Start: "x", End: "2025-06-01"}.Validate())
	w := Window{Start: "2025-06-01", End: "2025-06-10"}
	assert.Equal(t, "01/06/2025", w.LocalStart())
	assert.Equal(t, "10/06/2025", w.LocalEnd())
}
