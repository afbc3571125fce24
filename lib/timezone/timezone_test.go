package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocation(t *testing.T) {
	require.NotNil(t, Location)
	require.Equal(t, "America/Los_Angeles", Location.String())
}

func TestToday(t *testing.T) {
	today := Today()
	require.Equal(t, Location, today.Location())
	require.Zero(t, today.Hour())
	require.Zero(t, today.Minute())
	require.Zero(t, today.Second())

	now := Now()
	require.Equal(t, now.Year(), today.Year())
	require.Equal(t, now.YearDay(), today.YearDay())
	require.True(t, today.Before(now) || today.Equal(now))
	require.True(t, now.Sub(today) < time.Hour*24)
}
