package domain

import "sort"

// HarvestMode selects the traversal strategy for a harvest.
// Values are ModeGlobal (single resumption-token chain over the whole corpus)
// and ModeDate (one scope per calendar date).
type HarvestMode string

const (
	ModeGlobal HarvestMode = "global"
	ModeDate   HarvestMode = "date"
)

// Valid reports whether m is one of the known harvest modes.
func (m HarvestMode) Valid() bool {
	return m == ModeGlobal || m == ModeDate
}

// Checkpoint is the durable harvest progress state. It is a tagged variant
// over HarvestMode: global mode uses ResumptionToken/TotalHarvested/BatchNum,
// date mode uses LastDate/FetchedDates. A date enters FetchedDates only after
// its partition has been durably written.
type Checkpoint struct {
	Mode HarvestMode `json:"mode"`

	// Global-token mode.
	ResumptionToken string `json:"resumption_token,omitempty"`
	TotalHarvested  int    `json:"total_harvested,omitempty"`
	BatchNum        int    `json:"batch_num,omitempty"`

	// Date-partitioned mode.
	LastDate     string   `json:"last_date,omitempty"`
	FetchedDates []string `json:"fetched_dates,omitempty"`
}

// HasFetched reports whether the given date partition is already complete.
func (c *Checkpoint) HasFetched(date string) bool {
	for _, d := range c.FetchedDates {
		if d == date {
			return true
		}
	}
	return false
}

// MarkFetched records a completed date partition, keeping FetchedDates
// sorted and free of duplicates.
func (c *Checkpoint) MarkFetched(date string) {
	if c.HasFetched(date) {
		return
	}
	c.FetchedDates = append(c.FetchedDates, date)
	sort.Strings(c.FetchedDates)
	if date > c.LastDate {
		c.LastDate = date
	}
}

// TransformCheckpoint is the durable state of the downstream merge step.
// The harvest and transform checkpoints live under separate namespaces so
// the transform can diff fetched minus transformed dates.
type TransformCheckpoint struct {
	TransformedDates []string `json:"transformed_dates,omitempty"`
}

// HasTransformed reports whether the given date has already been merged.
func (c *TransformCheckpoint) HasTransformed(date string) bool {
	for _, d := range c.TransformedDates {
		if d == date {
			return true
		}
	}
	return false
}

// MarkTransformed records a merged date, keeping the set sorted and unique.
func (c *TransformCheckpoint) MarkTransformed(date string) {
	if c.HasTransformed(date) {
		return
	}
	c.TransformedDates = append(c.TransformedDates, date)
	sort.Strings(c.TransformedDates)
}
