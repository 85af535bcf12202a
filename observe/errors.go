package observe

import "errors"

// Configuration errors returned by Config.Validate.
var (
	// ErrMissingServiceName means Config.ServiceName is empty.
	ErrMissingServiceName = errors.New("observe: service name is required")

	// ErrInvalidSamplePct means Tracing.SamplePct is outside [0.0, 1.0].
	ErrInvalidSamplePct = errors.New("observe: sample percentage must be between 0.0 and 1.0")

	// ErrInvalidTracingExporter means an unknown tracing exporter name.
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")

	// ErrInvalidMetricsExporter means an unknown metrics exporter name.
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")

	// ErrInvalidLogLevel means an unknown log level name.
	ErrInvalidLogLevel = errors.New("observe: invalid log level")
)

// ErrNilObserver is returned by Wrap when no Observer is supplied.
var ErrNilObserver = errors.New("observe: observer is nil")

// ValidTracingExporters lists accepted tracing exporter names. Empty means
// disabled.
var ValidTracingExporters = []string{"otlp", "stdout", "none", ""}

// ValidMetricsExporters lists accepted metrics exporter names. Empty means
// disabled.
var ValidMetricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}

// ValidLogLevels lists accepted log level names. Empty means disabled.
var ValidLogLevels = []string{"debug", "info", "warn", "error", ""}

// RedactedFields lists log field keys that are replaced with a placeholder
// before serialization. These keys carry credential material that must
// never reach a log sink.
var RedactedFields = []string{
	"password",
	"master_password",
	"secret",
	"token",
	"bearer",
	"authorization",
	"api_key",
	"apiKey",
	"credential",
}
