// Package sync orchestrates brokerage data synchronization: account,
// holding, and transaction refresh for one owner, plus bulk coordination
// across owners.
package sync

import "time"

// DefaultMaxChunkDays is the upstream's maximum transaction-history window.
const DefaultMaxChunkDays = 31

// Chunk is one request-sized window of a date range. Bounds are inclusive
// whole days.
type Chunk struct {
	Start time.Time
	End   time.Time
}

// Days returns the inclusive day count of the chunk.
func (c Chunk) Days() int {
	return int(c.End.Sub(c.Start).Hours()/24) + 1
}

// PlanChunks splits [start, end] into ordered, contiguous, non-overlapping
// windows of at most maxDays inclusive days each. The final window may be
// shorter. Returns nil when end precedes start.
func PlanChunks(start, end time.Time, maxDays int) []Chunk {
	if maxDays <= 0 {
		maxDays = DefaultMaxChunkDays
	}

	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil
	}

	var chunks []Chunk
	for cur := start; !cur.After(end); {
		chunkEnd := cur.AddDate(0, 0, maxDays-1)
		if chunkEnd.After(end) {
			chunkEnd = end
		}
		chunks = append(chunks, Chunk{Start: cur, End: chunkEnd})
		cur = chunkEnd.AddDate(0, 0, 1)
	}

	return chunks
}

// truncateDay strips the time-of-day component, preserving the location.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
