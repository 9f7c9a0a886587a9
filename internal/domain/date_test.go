package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("day month year", func(t *testing.T) {
		got, ok := ParseDate("15-03-2024")
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("canonical form", func(t *testing.T) {
		got, ok := ParseDate("2024-03-15")
		require.True(t, ok)
		assert.Equal(t, "15-03-2024", FormatDate(got))
	})

	for _, bad := range []string{"", "15/03/2024", "31-02-2024", "2024-15-03", "tomorrow"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, ok := ParseDate(bad)
			assert.False(t, ok)
		})
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*3600)
	late := time.Date(2024, time.March, 15, 23, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), DateOf(late))
	assert.Equal(t, "15-03-2024", FormatDate(DateOf(late)))
}

func TestMatchesName(t *testing.T) {
	closed := []string{"cerrado", "closed", "finalizado"}
	assert.True(t, MatchesName("Cerrado", closed))
	assert.True(t, MatchesName(" CLOSED ", closed))
	assert.False(t, MatchesName("Abierto", closed))
	assert.False(t, MatchesName("Cerrado", nil))
}
