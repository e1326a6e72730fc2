package domain

import "time"

// RunSearchOptions narrows the fetch history returned by the run store.
// Nil fields are ignored; a Limit of zero or less returns every match.
type RunSearchOptions struct {
	SearchName *string
	Status     *RunStatus
	Since      *time.Time
	Limit      int
}
