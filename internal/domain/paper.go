package domain

import (
	"strings"
	"time"
)

// Paper is one row of the merged analytics table produced by the transform
// step. Multi-valued record fields are flattened: authors joined with ", ",
// categories joined with " ". Merges are keyed by ID.
type Paper struct {
	ID              string    `gorm:"type:text;primaryKey" json:"id"`
	Datestamp       string    `gorm:"type:text;index" json:"datestamp"`
	Title           string    `gorm:"type:text;not null" json:"title"`
	Abstract        *string   `gorm:"type:text" json:"abstract"`
	Authors         *string   `gorm:"type:text" json:"authors"`
	Categories      *string   `gorm:"type:text" json:"categories"`
	PrimaryCategory string    `gorm:"type:text;not null;index" json:"primary_category"`
	Comments        *string   `gorm:"type:text" json:"comments"`
	JournalRef      *string   `gorm:"type:text" json:"journal_ref"`
	DOI             *string   `gorm:"type:text" json:"doi"`
	License         *string   `gorm:"type:text" json:"license"`
	Created         string    `gorm:"type:text;not null" json:"created"`
	Updated         *string   `gorm:"type:text" json:"updated"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for Paper.
func (Paper) TableName() string {
	return "papers"
}

// PaperFromRecord flattens a harvested record into a Paper row. Required
// fields are not checked here; the transform validates before merging.
func PaperFromRecord(r Record) Paper {
	p := Paper{
		ID:         r.ID,
		Datestamp:  r.Datestamp,
		Abstract:   r.Abstract,
		Comments:   r.Comments,
		JournalRef: r.JournalRef,
		DOI:        r.DOI,
		License:    r.License,
		Updated:    r.Updated,
	}
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.PrimaryCategory != nil {
		p.PrimaryCategory = *r.PrimaryCategory
	}
	if r.Created != nil {
		p.Created = *r.Created
	}
	if len(r.Authors) > 0 {
		joined := strings.Join(r.Authors, ", ")
		p.Authors = &joined
	}
	if len(r.Categories) > 0 {
		joined := strings.Join(r.Categories, " ")
		p.Categories = &joined
	}
	return p
}
