package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func captureLogger(buf *bytes.Buffer) *Logger {
	return New(&Config{
		Level:       "debug",
		Format:      "json",
		Output:      buf,
		ServiceName: "papertrawl-test",
	})
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var out map[string]interface{}
	if err := json.Unmarshal(lines[len(lines)-1], &out); err != nil {
		t.Fatalf("unparseable log line %q: %v", lines[len(lines)-1], err)
	}
	return out
}

func TestEntryMetricFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := captureLogger(&buf).WithContext(context.Background())

	With(Fields{"total": 42}).
		WithBatch(3).
		WithCount(7).
		Info(ctx, "Batch complete")

	line := lastLine(t, &buf)
	if line["message"] != "Batch complete" {
		t.Errorf("message = %v", line["message"])
	}
	if line[FieldBatch] != float64(3) {
		t.Errorf("batch = %v", line[FieldBatch])
	}
	if line[FieldCount] != float64(7) {
		t.Errorf("count = %v", line[FieldCount])
	}
	if line["total"] != float64(42) {
		t.Errorf("total = %v", line["total"])
	}
}

func TestEntryStatusAndDuration(t *testing.T) {
	var buf bytes.Buffer
	ctx := captureLogger(&buf).WithContext(context.Background())

	With(Fields{}).
		WithStatus("completed").
		WithDuration(1234).
		Info(ctx, "Harvest run finished")

	line := lastLine(t, &buf)
	if line[FieldStatus] != "completed" {
		t.Errorf("status = %v", line[FieldStatus])
	}
	if line[FieldDurationMs] != float64(1234) {
		t.Errorf("duration_ms = %v", line[FieldDurationMs])
	}
}

func TestEntryMergesContextFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := captureLogger(&buf).WithContext(context.Background())
	ctx = SetRunID(ctx, "run-1")
	ctx = SetScope(ctx, "2024-01-15")

	With(Fields{}).WithCount(2).Info(ctx, "Date partition complete")

	line := lastLine(t, &buf)
	if line[FieldRunID] != "run-1" {
		t.Errorf("run_id = %v", line[FieldRunID])
	}
	if line[FieldScope] != "2024-01-15" {
		t.Errorf("scope = %v", line[FieldScope])
	}
	if line[FieldCount] != float64(2) {
		t.Errorf("count = %v", line[FieldCount])
	}
}
