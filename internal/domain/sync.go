package domain

import (
	"fmt"
	"time"
)

// SyncResult aggregates the outcome of one pull, push, or full sync run.
// Counters are cumulative across all entities processed in the run; a run
// with a non-empty error list still carries the progress it made.
type SyncResult struct {
	ListsCreated int `json:"lists_created"`
	ListsUpdated int `json:"lists_updated"`
	ListsSkipped int `json:"lists_skipped"`
	ListsDeleted int `json:"lists_deleted"`
	ItemsCreated int `json:"items_created"`
	ItemsUpdated int `json:"items_updated"`
	ItemsSkipped int `json:"items_skipped"`
	ItemsDeleted int `json:"items_deleted"`

	Errors      []string  `json:"errors"`
	CompletedAt time.Time `json:"completed_at"`
}

// Successful reports whether the run finished without any recorded error.
// A single entity-level failure marks the whole batch unsuccessful even
// though the rest of the batch converged.
func (r *SyncResult) Successful() bool {
	return len(r.Errors) == 0
}

// AddError appends a formatted, human-readable error entry.
func (r *SyncResult) AddError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// CombineSyncResults merges a pull result and a push result into the result
// of a full sync. Created/updated/deleted counters are summed; skipped
// counters come from the pull only (push has no skip concept); error lists
// are concatenated.
func CombineSyncResults(pull, push *SyncResult) *SyncResult {
	combined := &SyncResult{
		ListsCreated: pull.ListsCreated + push.ListsCreated,
		ListsUpdated: pull.ListsUpdated + push.ListsUpdated,
		ListsSkipped: pull.ListsSkipped,
		ListsDeleted: pull.ListsDeleted + push.ListsDeleted,
		ItemsCreated: pull.ItemsCreated + push.ItemsCreated,
		ItemsUpdated: pull.ItemsUpdated + push.ItemsUpdated,
		ItemsSkipped: pull.ItemsSkipped,
		ItemsDeleted: pull.ItemsDeleted + push.ItemsDeleted,
		CompletedAt:  time.Now(),
	}
	combined.Errors = append(combined.Errors, pull.Errors...)
	combined.Errors = append(combined.Errors, push.Errors...)
	return combined
}
