package erp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"
)

// LinkState captures where a Link is in its connection lifecycle.
type LinkState int

const (
	LinkIdle LinkState = iota
	LinkConnecting
	LinkConnected
	LinkSending
	LinkAwaitingResponse
	LinkClosed
	LinkError
)

func (s LinkState) String() string {
	switch s {
	case LinkIdle:
		return "idle"
	case LinkConnecting:
		return "connecting"
	case LinkConnected:
		return "connected"
	case LinkSending:
		return "sending"
	case LinkAwaitingResponse:
		return "awaiting_response"
	case LinkClosed:
		return "closed"
	case LinkError:
		return "error"
	}
	return "unknown"
}

// LinkConfig holds the endpoint and deadlines for one connection.
type LinkConfig struct {
	Addr            string
	DialTimeout     time.Duration
	ResponseTimeout time.Duration
}

// Link owns one TCP connection to the ERP host. It is not safe for concurrent
// use; the Client opens a fresh Link per lookup.
type Link struct {
	cfg     LinkConfig
	conn    net.Conn
	state   LinkState
	scanner *frameScanner
	buf     bytes.Buffer
	logger  *zap.Logger
}

// NewLink prepares an idle link. No connection is made until Open.
func NewLink(cfg LinkConfig, logger *zap.Logger) *Link {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = 30 * time.Second
	}
	return &Link{
		cfg:     cfg,
		state:   LinkIdle,
		scanner: newFrameScanner(responseRoot),
		logger:  logger,
	}
}

// State returns the current lifecycle state.
func (l *Link) State() LinkState {
	return l.state
}

// Open dials the ERP endpoint.
func (l *Link) Open(ctx context.Context) error {
	if l.state != LinkIdle {
		return fmt.Errorf("erp: open from state %s", l.state)
	}
	l.state = LinkConnecting

	dialer := net.Dialer{Timeout: l.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", l.cfg.Addr)
	if err != nil {
		l.state = LinkError
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}
	l.conn = conn
	l.state = LinkConnected
	l.logger.Debug("erp link opened", zap.String("addr", l.cfg.Addr))
	return nil
}

// Send writes one request document followed by the protocol's line terminator.
func (l *Link) Send(payload []byte) error {
	if l.state != LinkConnected {
		return fmt.Errorf("erp: send from state %s", l.state)
	}
	l.state = LinkSending

	out := append(append([]byte{}, payload...), '\n')
	if _, err := l.conn.Write(out); err != nil {
		l.state = LinkError
		return fmt.Errorf("%w: write: %v", ErrIO, err)
	}
	l.state = LinkAwaitingResponse
	return nil
}

// ReadResponse accumulates chunks until the framing rule is satisfied or the
// deadline passes. On timeout the partial buffer is surfaced, never dropped,
// and the link closes.
func (l *Link) ReadResponse(ctx context.Context) ([]byte, error) {
	if l.state != LinkAwaitingResponse {
		return nil, fmt.Errorf("erp: read from state %s", l.state)
	}

	deadline := time.Now().Add(l.cfg.ResponseTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := l.conn.SetReadDeadline(deadline); err != nil {
		l.state = LinkError
		return nil, fmt.Errorf("%w: set deadline: %v", ErrIO, err)
	}

	chunk := make([]byte, 4096)
	for {
		n, err := l.conn.Read(chunk)
		if n > 0 {
			l.buf.Write(chunk[:n])
			l.scanner.feed(chunk[:n])
			if l.scanner.complete() {
				l.state = LinkConnected
				return l.buf.Bytes(), nil
			}
		}
		if err != nil {
			partial := l.buf.Bytes()
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				l.Close()
				l.logger.Warn("erp response timeout",
					zap.String("addr", l.cfg.Addr),
					zap.Int("partial_bytes", len(partial)))
				return partial, &TimeoutError{Partial: partial}
			}
			if errors.Is(err, io.EOF) {
				l.state = LinkError
				return partial, fmt.Errorf("%w: connection closed before frame completed", ErrIO)
			}
			l.state = LinkError
			return partial, fmt.Errorf("%w: read: %v", ErrIO, err)
		}
	}
}

// Close releases the socket. Safe to call from any state, any number of times.
func (l *Link) Close() {
	if l.conn != nil {
		_ = l.conn.Close()
		l.conn = nil
	}
	l.state = LinkClosed
}
