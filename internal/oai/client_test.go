package oai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const pageOne = `<?xml version="1.0" encoding="UTF-8"?>
<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <ListRecords>
    <record>
      <header>
        <identifier>oai:arXiv.org:2401.00001</identifier>
        <datestamp>2024-01-20</datestamp>
      </header>
      <metadata>
        <arXiv xmlns="http://arxiv.org/OAI/arXiv/">
          <title>First</title>
          <abstract>One.</abstract>
          <created>2024-01-15</created>
          <categories>cs.LG</categories>
          <authors><author><keyname>Lovelace</keyname><forenames>Ada</forenames></author></authors>
        </arXiv>
      </metadata>
    </record>
    <resumptionToken>tok-1</resumptionToken>
  </ListRecords>
</OAI-PMH>`

const lastPage = `<?xml version="1.0" encoding="UTF-8"?>
<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <ListRecords>
    <record>
      <header>
        <identifier>oai:arXiv.org:2401.00002</identifier>
        <datestamp>2024-01-20</datestamp>
      </header>
    </record>
    <resumptionToken></resumptionToken>
  </ListRecords>
</OAI-PMH>`

const noRecordsMatch = `<?xml version="1.0" encoding="UTF-8"?>
<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <error code="noRecordsMatch">no records match the request</error>
</OAI-PMH>`

const badToken = `<?xml version="1.0" encoding="UTF-8"?>
<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <error code="badResumptionToken">token expired</error>
</OAI-PMH>`

// dropConnection severs the TCP connection mid-request to force a
// transport-level error on the client side.
func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		return
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		return
	}
	conn.Close()
}

// testClient returns a client against srv whose sleeps record their duration
// instead of blocking.
func testClient(srv *httptest.Server, waits *[]time.Duration) *Client {
	c := NewClient(&Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	c.sleep = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	return c
}

func TestFetchPageFirstAndContinuation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("verb") != "ListRecords" {
			t.Errorf("verb = %q", q.Get("verb"))
		}
		if tok := q.Get("resumptionToken"); tok != "" {
			if q.Get("metadataPrefix") != "" || q.Get("from") != "" {
				t.Error("token request must not carry scope arguments")
			}
			fmt.Fprint(w, lastPage)
			return
		}
		if q.Get("metadataPrefix") != "arXiv" {
			t.Errorf("metadataPrefix = %q", q.Get("metadataPrefix"))
		}
		if q.Get("from") != "2024-01-20" || q.Get("until") != "2024-01-20" {
			t.Errorf("date scope = %q..%q", q.Get("from"), q.Get("until"))
		}
		fmt.Fprint(w, pageOne)
	}))
	defer srv.Close()

	var waits []time.Duration
	c := testClient(srv, &waits)

	records, token, err := c.FetchPage(context.Background(), ScopeDate("2024-01-20"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].ID != "2401.00001" {
		t.Fatalf("records = %+v", records)
	}
	if token != "tok-1" {
		t.Fatalf("token = %q, want tok-1", token)
	}

	records, token, err = c.FetchPage(context.Background(), ScopeDate("2024-01-20"), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].ID != "2401.00002" {
		t.Fatalf("records = %+v", records)
	}
	if token != "" {
		t.Fatalf("token = %q, want empty", token)
	}
	if len(waits) != 0 {
		t.Errorf("no waits expected, got %v", waits)
	}
}

func TestFetchPageServerBusy(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, lastPage)
	}))
	defer srv.Close()

	var waits []time.Duration
	c := testClient(srv, &waits)

	records, _, err := c.FetchPage(context.Background(), ScopeDate("2024-01-20"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %+v", records)
	}
	if len(waits) != 1 || waits[0] != 7*time.Second {
		t.Errorf("waits = %v, want [7s]", waits)
	}
}

func TestFetchPageTransientBackoffThenSuccess(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			dropConnection(w)
			return
		}
		fmt.Fprint(w, lastPage)
	}))
	defer srv.Close()

	var waits []time.Duration
	c := testClient(srv, &waits)

	records, _, err := c.FetchPage(context.Background(), ScopeDate("2024-01-20"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %+v", records)
	}
	want := []time.Duration{30 * time.Second, 60 * time.Second}
	if len(waits) != len(want) || waits[0] != want[0] || waits[1] != want[1] {
		t.Errorf("waits = %v, want %v", waits, want)
	}
}

func TestFetchPageTransientExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dropConnection(w)
	}))
	defer srv.Close()

	var waits []time.Duration
	c := testClient(srv, &waits)

	_, _, err := c.FetchPage(context.Background(), ScopeAll, "")
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("err = %v, want ErrTransient", err)
	}
	if len(waits) != 2 {
		t.Errorf("waits = %v, want two backoffs before surfacing", waits)
	}
}

func TestFetchPageErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		scope  Scope
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unexpected status",
			status: http.StatusBadGateway,
			body:   "upstream exploded",
			scope:  ScopeAll,
			check: func(t *testing.T, err error) {
				var re *RequestError
				if !errors.As(err, &re) {
					t.Fatalf("err = %v, want RequestError", err)
				}
				if re.StatusCode != http.StatusBadGateway {
					t.Errorf("status = %d", re.StatusCode)
				}
				if re.Body != "upstream exploded" {
					t.Errorf("body = %q", re.Body)
				}
			},
		},
		{
			name:   "protocol error envelope",
			status: http.StatusOK,
			body:   badToken,
			scope:  ScopeDate("2024-01-20"),
			check: func(t *testing.T, err error) {
				if !IsStaleToken(err) {
					t.Fatalf("err = %v, want badResumptionToken", err)
				}
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   "not xml at all <<<",
			scope:  ScopeAll,
			check: func(t *testing.T, err error) {
				var pe *ProtocolError
				if !errors.As(err, &pe) {
					t.Fatalf("err = %v, want ProtocolError", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			var waits []time.Duration
			c := testClient(srv, &waits)

			_, _, err := c.FetchPage(context.Background(), tt.scope, "")
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsFatal(err) {
				t.Errorf("err = %v, want fatal classification", err)
			}
			tt.check(t, err)
		})
	}
}

func TestFetchPageNoRecordsMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, noRecordsMatch)
	}))
	defer srv.Close()

	var waits []time.Duration
	c := testClient(srv, &waits)

	// For a date scope an empty match is a valid empty partition.
	records, token, err := c.FetchPage(context.Background(), ScopeDate("1991-08-18"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 || token != "" {
		t.Fatalf("records = %v, token = %q", records, token)
	}

	// For the global scope the same envelope is a protocol error.
	_, _, err = c.FetchPage(context.Background(), ScopeAll, "")
	var pe *ProtocolError
	if !errors.As(err, &pe) || pe.Code != "noRecordsMatch" {
		t.Fatalf("err = %v, want noRecordsMatch ProtocolError", err)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"absent", "", 30 * time.Second},
		{"valid seconds", "600", 600 * time.Second},
		{"garbage", "soon", 30 * time.Second},
		{"negative", "-5", 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryAfter(tt.header, 30*time.Second); got != tt.want {
				t.Errorf("retryAfter(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}
