package domain

import "time"

// SavedSearch is a named, persisted SearchFilter.
type SavedSearch struct {
	Name         string       `json:"name"`
	Filter       SearchFilter `json:"filter"`
	OutputPrefix string       `json:"output_prefix,omitempty"`
	SavedAt      time.Time    `json:"saved_at"`
}

// NewSavedSearch creates a SavedSearch holding a private copy of filter.
func NewSavedSearch(name string, filter SearchFilter, outputPrefix string) SavedSearch {
	return SavedSearch{
		Name:         name,
		Filter:       filter.Clone(),
		OutputPrefix: outputPrefix,
	}
}
