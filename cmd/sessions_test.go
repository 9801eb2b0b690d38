package cmd

import (
	"testing"
	"time"

	"summa/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsTable(t *testing.T) {
	now := time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)
	endedAt := now.Add(-time.Hour)

	ended := &entities.GameSession{
		ID: "s1", Name: "Friday", BuyinBb: 100, Rate: 0.5, CreatorID: "u1",
		StartedAt: now.Add(-5 * time.Hour), EndedAt: &endedAt,
	}
	running := &entities.GameSession{
		ID: "s2", Name: "Late game", BuyinBb: 100, Rate: 0.5, CreatorID: "u2",
		StartedAt: now.Add(-30 * time.Minute),
	}

	summaries := []*entities.SessionSummary{
		entities.Summarize(ended, []*entities.GameSessionPlayer{
			{GameSessionID: "s1", UserID: "u1", Buyins: 2, StackBb: 250},
			{GameSessionID: "s1", UserID: "u2", Buyins: 1, StackBb: 50},
		}),
		entities.Summarize(running, []*entities.GameSessionPlayer{
			{GameSessionID: "s2", UserID: "u2", Buyins: 1, StackBb: 100},
		}),
		nil,
	}

	data := sessionsTable("u1", summaries, now)

	require.Len(t, data, 3)
	assert.Equal(t, []string{"Session", "Started", "Duration", "Players", "Buy-ins", "Result (bb)", "Result"}, data[0])

	assert.Equal(t, "Friday", data[1][0])
	assert.NotContains(t, data[1][1], "running")
	assert.Equal(t, "4h0m0s", data[1][2])
	assert.Equal(t, "2", data[1][3])
	assert.Equal(t, "2", data[1][4])
	assert.Equal(t, "+50", data[1][5])
	assert.Equal(t, "+25", data[1][6])

	// u1 never sat in the running game
	assert.Contains(t, data[2][1], "(running)")
	assert.Equal(t, "30m0s", data[2][2])
	assert.Equal(t, []string{"-", "-", "-"}, data[2][4:])
}

func TestSigned(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{value: 1234.5, want: "+1,234.5"},
		{value: 0, want: "0"},
		{value: -50, want: "-50"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, signed(tt.value, 2))
	}
}
