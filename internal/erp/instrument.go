package erp

import (
	"context"
	"time"
)

// LookupRecorder receives lookup timings. Satisfied by observability.Metrics.
type LookupRecorder interface {
	RecordErpLookup(duration time.Duration, failed bool)
}

// InstrumentedClient decorates a Client with lookup metrics.
type InstrumentedClient struct {
	client  *Client
	metrics LookupRecorder
}

// NewInstrumentedClient wraps the client. A nil recorder disables recording.
func NewInstrumentedClient(client *Client, metrics LookupRecorder) *InstrumentedClient {
	return &InstrumentedClient{client: client, metrics: metrics}
}

// Lookup delegates to the wrapped client and records the round trip.
func (c *InstrumentedClient) Lookup(ctx context.Context, term string) (*Response, error) {
	start := time.Now()
	resp, err := c.client.Lookup(ctx, term)
	if c.metrics != nil {
		c.metrics.RecordErpLookup(time.Since(start), err != nil)
	}
	return resp, err
}
