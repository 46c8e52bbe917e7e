/*
Package tracing provides lightweight request tracing.

Every HTTP request gets a span; spans started from its context become
children. Finished spans are buffered and written to the structured log
by a background collector, so tracing never blocks a request.

# Usage

	tracer := tracing.New("webdesk", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	err := tracer.Trace(ctx, "session.resume", func(ctx context.Context) error {
		return resume(ctx)
	})

# Trace Format

Traces use HTTP headers for propagation:
  - X-Trace-ID: identifier for the entire request flow
  - X-Span-ID: identifier for the current operation
*/
package tracing
