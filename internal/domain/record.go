package domain

// Record represents one harvested bibliographic entry.
// Optional textual fields are pointers so that absent values serialize as
// JSON null rather than empty strings; the transform step enforces not-null
// constraints on the required columns.
type Record struct {
	ID              string   `json:"id"`
	Datestamp       string   `json:"datestamp"`
	Title           *string  `json:"title"`
	Abstract        *string  `json:"abstract"`
	Authors         []string `json:"authors"`
	Categories      []string `json:"categories"`
	PrimaryCategory *string  `json:"primary_category"`
	Comments        *string  `json:"comments"`
	JournalRef      *string  `json:"journal_ref"`
	DOI             *string  `json:"doi"`
	License         *string  `json:"license"`
	Created         *string  `json:"created"`
	Updated         *string  `json:"updated"`
}
