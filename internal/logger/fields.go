package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRunID is the harvest run ID (UUID)
	FieldRunID = "run_id"

	// FieldMode is the harvest traversal mode (global or date)
	FieldMode = "mode"

	// FieldScope is the current harvest scope (date or "all")
	FieldScope = "scope"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldNamespace is the checkpoint namespace
	FieldNamespace = "namespace"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldBatch is the running batch counter
	FieldBatch = "batch"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
