package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeStringArithmetic(t *testing.T) {
	ts, err := NewTimeStringFromString("10:45")
	require.NoError(t, err)
	assert.Equal(t, 645, ts.Minutes())

	later, err := ts.AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("11:15"), later)
	assert.True(t, ts.IsBefore(later))
	assert.True(t, later.IsAfter(ts))

	_, err = TimeString("23:50").AddMinutes(15)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeStringScan(t *testing.T) {
	var ts TimeString
	require.NoError(t, ts.Scan("09:30:00"))
	assert.Equal(t, TimeString("09:30"), ts)

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 7, 5, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("07:05"), ts)

	assert.Error(t, ts.Scan(42))
}

func TestTimeStringOn(t *testing.T) {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 13, 20, 0, 0, time.UTC), TimeString("13:20").On(date))
}
