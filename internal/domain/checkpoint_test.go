package domain

import (
	"reflect"
	"testing"
)

func TestHarvestModeValid(t *testing.T) {
	tests := []struct {
		mode HarvestMode
		want bool
	}{
		{ModeDate, true},
		{ModeGlobal, true},
		{HarvestMode(""), false},
		{HarvestMode("gobal"), false},
		{HarvestMode("DATE"), false},
	}

	for _, tt := range tests {
		if got := tt.mode.Valid(); got != tt.want {
			t.Errorf("HarvestMode(%q).Valid() = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestCheckpointMarkFetched(t *testing.T) {
	var cp Checkpoint

	cp.MarkFetched("2024-01-16")
	cp.MarkFetched("2024-01-15")
	cp.MarkFetched("2024-01-16") // duplicate is a no-op

	want := []string{"2024-01-15", "2024-01-16"}
	if !reflect.DeepEqual(cp.FetchedDates, want) {
		t.Errorf("fetched dates = %v, want %v", cp.FetchedDates, want)
	}
	if cp.LastDate != "2024-01-16" {
		t.Errorf("last date = %q", cp.LastDate)
	}
	if !cp.HasFetched("2024-01-15") || cp.HasFetched("2024-01-17") {
		t.Error("HasFetched membership wrong")
	}
}

func TestPaperFromRecord(t *testing.T) {
	title := "A Study"
	created := "2024-01-15"
	primary := "cs.LG"

	r := Record{
		ID:              "2401.00001",
		Datestamp:       "2024-01-20",
		Title:           &title,
		Created:         &created,
		PrimaryCategory: &primary,
		Authors:         []string{"Ada Lovelace", "Euler"},
		Categories:      []string{"cs.LG", "stat.ML"},
	}
	p := PaperFromRecord(r)

	if p.ID != "2401.00001" || p.Title != "A Study" {
		t.Errorf("paper = %+v", p)
	}
	if p.Authors == nil || *p.Authors != "Ada Lovelace, Euler" {
		t.Errorf("authors = %v", p.Authors)
	}
	if p.Categories == nil || *p.Categories != "cs.LG stat.ML" {
		t.Errorf("categories = %v", p.Categories)
	}
	if p.PrimaryCategory != "cs.LG" || p.Created != "2024-01-15" {
		t.Errorf("paper = %+v", p)
	}
}
