// Package partition serializes completed units of harvested work into
// durable gzip JSONL artifacts: one file per calendar date in date mode, a
// single running file in global mode. Writes are atomic per unit, so a
// downstream reader never observes a partial partition.
package partition

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/timmy/papertrawl/internal/domain"
)

const (
	// RunningFileName is the append-only artifact used in global mode.
	RunningFileName = "arxiv_metadata.jsonl.gz"

	datePrefix = "papers_"
	fileExt    = ".jsonl.gz"
)

// FileName returns the artifact name for a date partition.
func FileName(date string) string {
	return datePrefix + date + fileExt
}

// Writer writes date partitions under a data directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating partition dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// PartitionPath returns the artifact path for a date.
func (w *Writer) PartitionPath(date string) string {
	return filepath.Join(w.dir, FileName(date))
}

// WritePartition serializes all records for one calendar date. The artifact
// is written to a temporary file and renamed into place, so the named path
// either holds the complete partition or does not exist. A date with zero
// records still produces a (valid, empty) artifact.
func (w *Writer) WritePartition(date string, records []domain.Record) (string, error) {
	path := w.PartitionPath(date)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("creating partition %s: %w", date, err)
	}

	if err := writeRecords(f, records); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("writing partition %s: %w", date, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("syncing partition %s: %w", date, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("closing partition %s: %w", date, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("publishing partition %s: %w", date, err)
	}
	return path, nil
}

func writeRecords(dst io.Writer, records []domain.Record) error {
	gz := gzip.NewWriter(dst)
	enc := json.NewEncoder(gz)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return err
		}
	}
	return gz.Close()
}

// Appender appends batches to the running artifact used in global mode.
// Each run writes one gzip member; concatenated members from successive
// runs decode as a single stream.
type Appender struct {
	f    *os.File
	gz   *gzip.Writer
	enc  *json.Encoder
	path string
}

// OpenAppender opens the running artifact. resume=true appends to the
// existing file (continuing an interrupted token chain); resume=false
// truncates and starts the corpus over.
func OpenAppender(dir string, resume bool) (*Appender, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating partition dir: %w", err)
	}
	path := filepath.Join(dir, RunningFileName)

	flags := os.O_CREATE | os.O_WRONLY
	if resume {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening running artifact: %w", err)
	}

	gz := gzip.NewWriter(f)
	return &Appender{
		f:    f,
		gz:   gz,
		enc:  json.NewEncoder(gz),
		path: path,
	}, nil
}

// Path returns the running artifact path.
func (a *Appender) Path() string {
	return a.path
}

// Append writes one batch and flushes it to disk before returning, so the
// subsequent checkpoint save never gets ahead of the durable artifact.
func (a *Appender) Append(records []domain.Record) error {
	for i := range records {
		if err := a.enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("appending batch: %w", err)
		}
	}
	if err := a.gz.Flush(); err != nil {
		return fmt.Errorf("flushing batch: %w", err)
	}
	if err := a.f.Sync(); err != nil {
		return fmt.Errorf("syncing batch: %w", err)
	}
	return nil
}

// Close finalizes the current gzip member and closes the file.
func (a *Appender) Close() error {
	if err := a.gz.Close(); err != nil {
		a.f.Close()
		return err
	}
	return a.f.Close()
}

// ReadPartition decodes every record in a partition artifact. It accepts
// both date partitions and the running artifact (multiple gzip members).
func ReadPartition(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening partition: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading partition %s: %w", filepath.Base(path), err)
	}
	defer gz.Close()

	var records []domain.Record
	dec := json.NewDecoder(gz)
	for {
		var r domain.Record
		if err := dec.Decode(&r); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decoding partition %s: %w", filepath.Base(path), err)
		}
		records = append(records, r)
	}
	return records, nil
}
