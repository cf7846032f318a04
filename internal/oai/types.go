package oai

import "encoding/xml"

// Scope narrows a harvest to a single calendar date. The zero value
// (ScopeAll) harvests the whole corpus on one resumption-token chain.
type Scope string

// ScopeAll is the unscoped (full corpus) harvest scope.
const ScopeAll Scope = ""

// ScopeDate returns a scope covering exactly one calendar date (ISO format).
func ScopeDate(date string) Scope {
	return Scope(date)
}

// IsDate reports whether the scope targets a single calendar date.
func (s Scope) IsDate() bool {
	return s != ScopeAll
}

func (s Scope) String() string {
	if s == ScopeAll {
		return "all"
	}
	return string(s)
}

// Wire envelope for the ListRecords verb. Field matching is by local name,
// so the OAI and arXiv namespaces do not need to be spelled out.
type envelope struct {
	XMLName     xml.Name       `xml:"OAI-PMH"`
	Error       *protocolFault `xml:"error"`
	ListRecords *listRecords   `xml:"ListRecords"`
}

type protocolFault struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

type listRecords struct {
	Records         []recordXML `xml:"record"`
	ResumptionToken string      `xml:"resumptionToken"`
}

type recordXML struct {
	Header   headerXML    `xml:"header"`
	Metadata *metadataXML `xml:"metadata"`
}

type headerXML struct {
	Status     string `xml:"status,attr"`
	Identifier string `xml:"identifier"`
	Datestamp  string `xml:"datestamp"`
}

type metadataXML struct {
	ArXiv *arxivXML `xml:"arXiv"`
}

type arxivXML struct {
	Title      string      `xml:"title"`
	Abstract   string      `xml:"abstract"`
	Comments   *string     `xml:"comments"`
	JournalRef *string     `xml:"journal-ref"`
	DOI        *string     `xml:"doi"`
	License    *string     `xml:"license"`
	Created    *string     `xml:"created"`
	Updated    *string     `xml:"updated"`
	Categories string      `xml:"categories"`
	Authors    []authorXML `xml:"authors>author"`
}

type authorXML struct {
	KeyName   string `xml:"keyname"`
	Forenames string `xml:"forenames"`
}
