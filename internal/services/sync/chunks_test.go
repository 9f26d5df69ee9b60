package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPlanChunks_SixMonthRange(t *testing.T) {
	chunks := PlanChunks(day(2024, 2, 10), day(2024, 8, 10), 31)

	require.Len(t, chunks, 6)
	assert.Equal(t, day(2024, 2, 10), chunks[0].Start)
	assert.Equal(t, day(2024, 8, 10), chunks[len(chunks)-1].End)
	assert.LessOrEqual(t, chunks[len(chunks)-1].Days(), 31)
}

func TestPlanChunks_CoverageInvariants(t *testing.T) {
	cases := []struct {
		name    string
		start   time.Time
		end     time.Time
		maxDays int
	}{
		{"six months", day(2024, 2, 10), day(2024, 8, 10), 31},
		{"one month", day(2024, 6, 1), day(2024, 7, 1), 31},
		{"single day", day(2024, 3, 15), day(2024, 3, 15), 31},
		{"exact multiple", day(2024, 1, 1), day(2024, 1, 31), 31},
		{"leap february", day(2024, 2, 1), day(2024, 3, 31), 7},
		{"year boundary", day(2023, 12, 1), day(2024, 2, 15), 31},
		{"tiny windows", day(2024, 5, 1), day(2024, 5, 20), 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunks := PlanChunks(tc.start, tc.end, tc.maxDays)
			require.NotEmpty(t, chunks)

			// Union covers exactly [start, end]
			assert.Equal(t, tc.start, chunks[0].Start)
			assert.Equal(t, tc.end, chunks[len(chunks)-1].End)

			for i, c := range chunks {
				// Ordered, each window well-formed and within the limit
				assert.False(t, c.End.Before(c.Start), "chunk %d inverted", i)
				assert.LessOrEqual(t, c.Days(), tc.maxDays, "chunk %d too long", i)

				// Contiguous and non-overlapping: next starts the day after
				if i > 0 {
					expected := chunks[i-1].End.AddDate(0, 0, 1)
					assert.Equal(t, expected, c.Start, "chunk %d not contiguous", i)
				}
			}
		})
	}
}

func TestPlanChunks_EndBeforeStart(t *testing.T) {
	assert.Nil(t, PlanChunks(day(2024, 5, 2), day(2024, 5, 1), 31))
}

func TestPlanChunks_TruncatesTimeOfDay(t *testing.T) {
	start := time.Date(2024, 4, 1, 15, 30, 0, 0, time.UTC)
	end := time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)

	chunks := PlanChunks(start, end, 31)
	require.Len(t, chunks, 1)
	assert.Equal(t, day(2024, 4, 1), chunks[0].Start)
	assert.Equal(t, day(2024, 4, 10), chunks[0].End)
}

func TestPlanChunks_ZeroMaxDaysUsesDefault(t *testing.T) {
	chunks := PlanChunks(day(2024, 1, 1), day(2024, 1, 31), 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, 31, chunks[0].Days())
}
