package mq

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/huynhvq/inventory-tracker/pkg/outbox"
)

// contextFromRecord restores the trace context and correlation ID the
// producer side injected into the record headers.
func contextFromRecord(ctx context.Context, rec *kgo.Record) context.Context {
	headers := make(map[string]string, len(rec.Headers))
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}

	return outbox.ExtractContextFromHeaders(ctx, headers)
}
