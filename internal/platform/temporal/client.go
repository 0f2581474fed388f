package temporal

import (
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
)

// ErrDisabled is returned by Dial when Temporal was switched off by configuration.
var ErrDisabled = errors.New("temporal disabled via TEMPORAL_DISABLED env")

// DialOptions selects the Temporal frontend and the instruments attached to the client.
type DialOptions struct {
	Address   string
	Namespace string
	Disabled  bool
	Logger    *slog.Logger
	Tracer    trace.Tracer
}

// Dial connects a Temporal client with the OpenTelemetry tracing interceptor and slog logging.
func Dial(opts DialOptions) (client.Client, error) {
	if opts.Disabled {
		return nil, ErrDisabled
	}
	if opts.Address == "" {
		opts.Address = client.DefaultHostPort
	}
	if opts.Namespace == "" {
		opts.Namespace = client.DefaultNamespace
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{Tracer: opts.Tracer})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  opts.Address,
		Namespace: opts.Namespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
