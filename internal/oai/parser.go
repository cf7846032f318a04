package oai

import (
	"strings"

	"github.com/timmy/papertrawl/internal/domain"
)

// identifierPrefix is stripped from the protocol identifier to obtain the
// stable record ID (oai:arXiv.org:2401.12345 -> 2401.12345).
const identifierPrefix = "oai:arXiv.org:"

// parseRecord maps one protocol-native record into the internal typed record.
// It returns ok=false for tombstoned entries and for records whose header
// lacks an identifier; those are dropped entirely, never retained with a
// null ID.
func parseRecord(rec recordXML) (domain.Record, bool) {
	if rec.Header.Identifier == "" || rec.Header.Status == "deleted" {
		return domain.Record{}, false
	}

	r := domain.Record{
		ID:        strings.TrimPrefix(rec.Header.Identifier, identifierPrefix),
		Datestamp: rec.Header.Datestamp,
	}

	if rec.Metadata == nil || rec.Metadata.ArXiv == nil {
		return r, true
	}
	arx := rec.Metadata.ArXiv

	r.Title = normalizeText(arx.Title)
	r.Abstract = normalizeText(arx.Abstract)
	r.Comments = nonEmpty(arx.Comments)
	r.JournalRef = nonEmpty(arx.JournalRef)
	r.DOI = nonEmpty(arx.DOI)
	r.License = nonEmpty(arx.License)
	r.Created = nonEmpty(arx.Created)
	r.Updated = nonEmpty(arx.Updated)

	for _, a := range arx.Authors {
		name := strings.TrimSpace(strings.TrimSpace(a.Forenames) + " " + strings.TrimSpace(a.KeyName))
		if name != "" {
			r.Authors = append(r.Authors, name)
		}
	}

	r.Categories = strings.Fields(arx.Categories)
	if len(r.Categories) > 0 {
		primary := r.Categories[0]
		r.PrimaryCategory = &primary
	}

	return r, true
}

// normalizeText collapses all runs of whitespace (including newlines) into
// single spaces. Empty input stays nil to keep the not-null contract clean.
func normalizeText(s string) *string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	joined := strings.Join(fields, " ")
	return &joined
}

// nonEmpty converts a present-but-empty optional element to nil.
func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
