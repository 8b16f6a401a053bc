/*
Package tracing provides lightweight request tracing.

Every HTTP request gets a span. Trace context travels in two headers:

	X-Trace-ID  identifies the whole request flow
	X-Span-ID   identifies the current operation

Incoming headers are honored, so a caller can stitch docfs spans into its
own trace. Outbound curl requests carry the same headers via
InjectTraceContext.

# Usage

	tracer := tracing.New("docfs", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "import")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

Finished spans are buffered and logged asynchronously; when the buffer is
full the span is dropped with a warning.
*/
package tracing
