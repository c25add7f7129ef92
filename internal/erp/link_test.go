package erp

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeErpServer accepts one connection, reads one line-terminated request and
// writes the configured chunks with a small delay between them.
func fakeErpServer(t *testing.T, chunks [][]byte) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lis.Close() })

	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := bufio.NewReader(conn).ReadString('\n'); err != nil {
			return
		}
		for _, chunk := range chunks {
			_, _ = conn.Write(chunk)
			time.Sleep(10 * time.Millisecond)
		}
		// Hold the socket open so completion comes from framing, not EOF.
		time.Sleep(500 * time.Millisecond)
	}()
	return lis.Addr().String()
}

func TestLinkLifecycle(t *testing.T) {
	addr := fakeErpServer(t, [][]byte{
		[]byte(`<RESPUESTA><ARTICULO><NOMBRE><![CDATA[Coca Cola 2.25L]]>`),
		[]byte(`</NOMBRE></ARTICULO></RESPUESTA>`),
	})

	link := NewLink(LinkConfig{Addr: addr, ResponseTimeout: 2 * time.Second}, zap.NewNop())
	assert.Equal(t, LinkIdle, link.State())

	require.NoError(t, link.Open(context.Background()))
	assert.Equal(t, LinkConnected, link.State())

	require.NoError(t, link.Send([]byte(`<SOLICITUD><TEXTO>coca</TEXTO></SOLICITUD>`)))
	assert.Equal(t, LinkAwaitingResponse, link.State())

	raw, err := link.ReadResponse(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LinkConnected, link.State())

	resp, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Coca Cola 2.25L", resp.Products[0].Name)

	link.Close()
	assert.Equal(t, LinkClosed, link.State())
	link.Close() // idempotent
	assert.Equal(t, LinkClosed, link.State())
}

func TestLinkTimeoutSurfacesPartialBytes(t *testing.T) {
	addr := fakeErpServer(t, [][]byte{
		[]byte(`<RESPUESTA><ARTICULO>`), // never balanced
	})

	link := NewLink(LinkConfig{Addr: addr, ResponseTimeout: 150 * time.Millisecond}, zap.NewNop())
	require.NoError(t, link.Open(context.Background()))
	require.NoError(t, link.Send([]byte(`<SOLICITUD><TEXTO>x</TEXTO></SOLICITUD>`)))

	raw, err := link.ReadResponse(context.Background())
	require.ErrorIs(t, err, ErrTimeout)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, []byte(`<RESPUESTA><ARTICULO>`), timeoutErr.Partial)
	assert.Equal(t, []byte(`<RESPUESTA><ARTICULO>`), raw)
	assert.Equal(t, LinkClosed, link.State())
}

func TestLinkOpenFailure(t *testing.T) {
	// Grab an ephemeral port and close it so nothing is listening there.
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	link := NewLink(LinkConfig{Addr: addr, DialTimeout: time.Second}, zap.NewNop())
	err = link.Open(context.Background())
	require.ErrorIs(t, err, ErrConnectFailed)
	assert.Equal(t, LinkError, link.State())
}

func TestLinkSendRequiresConnectedState(t *testing.T) {
	link := NewLink(LinkConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	err := link.Send([]byte("x"))
	require.Error(t, err)

	_, err = link.ReadResponse(context.Background())
	require.Error(t, err)
}

func TestLinkEOFBeforeFrameCompletes(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lis.Close() })

	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		_, _ = bufio.NewReader(conn).ReadString('\n')
		_, _ = conn.Write([]byte(`<RESPUESTA>`))
		_ = conn.Close()
	}()

	link := NewLink(LinkConfig{Addr: lis.Addr().String(), ResponseTimeout: 2 * time.Second}, zap.NewNop())
	require.NoError(t, link.Open(context.Background()))
	require.NoError(t, link.Send([]byte(`<SOLICITUD></SOLICITUD>`)))

	_, err = link.ReadResponse(context.Background())
	require.ErrorIs(t, err, ErrIO)
	link.Close()
}
