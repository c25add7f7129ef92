package erp

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ClientConfig identifies the caller to the ERP and sets per-call deadlines.
type ClientConfig struct {
	Addr            string
	System          string
	Service         string
	Program         string
	DialTimeout     time.Duration
	ResponseTimeout time.Duration
}

// Client turns one product lookup into a parsed Response or a typed failure.
// Each call opens a fresh link; the ERP endpoint is stateless per request and
// low-volume, so there is no pooling. Safe for concurrent use.
type Client struct {
	cfg    ClientConfig
	logger *zap.Logger
}

// NewClient constructs the client.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	return &Client{cfg: cfg, logger: logger}
}

// Lookup queries the ERP for the given search term. The term is passed through
// unmodified; the ERP does its own fuzzy matching. Transport blips
// (ConnectFailed, IOError) get one silent retry; Timeout, MalformedResponse
// and RemoteError never retry.
func (c *Client) Lookup(ctx context.Context, term string) (*Response, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrEmptySearchTerm
	}

	query := Query{
		SearchTerm: term,
		System:     c.cfg.System,
		Service:    c.cfg.Service,
		Program:    c.cfg.Program,
	}
	payload, err := query.Encode()
	if err != nil {
		return nil, err
	}

	resp, err := c.roundTrip(ctx, payload)
	if err != nil && retryable(err) {
		c.logger.Info("erp lookup retrying after transport error",
			zap.String("term", term), zap.Error(err))
		resp, err = c.roundTrip(ctx, payload)
	}
	if err != nil {
		return nil, err
	}

	if !resp.OK() {
		return nil, &RemoteError{Code: resp.ErrorCode, Message: resp.ErrorMessage}
	}
	return resp, nil
}

// roundTrip drives one link through open, send, read and decode. The link is
// closed on every path.
func (c *Client) roundTrip(ctx context.Context, payload []byte) (*Response, error) {
	link := NewLink(LinkConfig{
		Addr:            c.cfg.Addr,
		DialTimeout:     c.cfg.DialTimeout,
		ResponseTimeout: c.cfg.ResponseTimeout,
	}, c.logger)
	defer link.Close()

	if err := link.Open(ctx); err != nil {
		return nil, err
	}
	if err := link.Send(payload); err != nil {
		return nil, err
	}
	raw, err := link.ReadResponse(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

func retryable(err error) bool {
	return errors.Is(err, ErrConnectFailed) || errors.Is(err, ErrIO)
}
