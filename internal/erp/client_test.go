package erp

import (
	"bufio"
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(addr string, timeout time.Duration) *Client {
	return NewClient(ClientConfig{
		Addr:            addr,
		System:          "CHATVENTAS",
		Service:         "CONSULTAS",
		Program:         "STKPRD01",
		DialTimeout:     time.Second,
		ResponseTimeout: timeout,
	}, zap.NewNop())
}

func TestClientLookupSuccess(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lis.Close() })

	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		if line == "" {
			return
		}
		_, _ = conn.Write([]byte(`<RESPUESTA>` +
			`<ARTICULO><NOMBRE><![CDATA[Coca Cola 2.25L]]></NOMBRE><PRECIO>1850.50</PRECIO></ARTICULO>` +
			`<ARTICULO><NOMBRE><![CDATA[Coca Cola 500ml]]></NOMBRE></ARTICULO>` +
			`</RESPUESTA>`))
		time.Sleep(100 * time.Millisecond)
	}()

	client := newTestClient(lis.Addr().String(), 2*time.Second)
	resp, err := client.Lookup(context.Background(), "coca cola")
	require.NoError(t, err)
	require.Len(t, resp.Products, 2)
	assert.Equal(t, "Coca Cola 2.25L", resp.Products[0].Name)
	assert.Equal(t, "Coca Cola 500ml", resp.Products[1].Name)
}

func TestClientRetriesOnceOnTransportError(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lis.Close() })

	var attempts int32
	go func() {
		for {
			conn, err := lis.Accept()
			if err != nil {
				return
			}
			n := atomic.AddInt32(&attempts, 1)
			if n == 1 {
				// Drop the first connection before answering.
				_ = conn.Close()
				continue
			}
			go func(c net.Conn) {
				defer c.Close()
				_, _ = bufio.NewReader(c).ReadString('\n')
				_, _ = c.Write([]byte(`<RESPUESTA><ARTICULO><NOMBRE><![CDATA[Azucar 1kg]]></NOMBRE></ARTICULO></RESPUESTA>`))
				time.Sleep(100 * time.Millisecond)
			}(conn)
		}
	}()

	client := newTestClient(lis.Addr().String(), 2*time.Second)
	resp, err := client.Lookup(context.Background(), "azucar")
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Azucar 1kg", resp.Products[0].Name)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestClientDoesNotRetryTimeout(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lis.Close() })

	var attempts int32
	go func() {
		for {
			conn, err := lis.Accept()
			if err != nil {
				return
			}
			atomic.AddInt32(&attempts, 1)
			// Read the request and then stay silent.
			go func(c net.Conn) {
				_, _ = bufio.NewReader(c).ReadString('\n')
				time.Sleep(2 * time.Second)
				_ = c.Close()
			}(conn)
		}
	}()

	client := newTestClient(lis.Addr().String(), 150*time.Millisecond)
	_, err = client.Lookup(context.Background(), "yerba")
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClientRemoteRejected(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lis.Close() })

	var attempts int32
	go func() {
		for {
			conn, err := lis.Accept()
			if err != nil {
				return
			}
			atomic.AddInt32(&attempts, 1)
			go func(c net.Conn) {
				defer c.Close()
				_, _ = bufio.NewReader(c).ReadString('\n')
				_, _ = c.Write([]byte(`<RESPUESTA><CODERROR>42</CODERROR><MSGERROR>SERVICIO FUERA DE LINEA</MSGERROR></RESPUESTA>`))
				time.Sleep(100 * time.Millisecond)
			}(conn)
		}
	}()

	client := newTestClient(lis.Addr().String(), 2*time.Second)
	_, err = client.Lookup(context.Background(), "harina")

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 42, remote.Code)
	assert.Equal(t, "SERVICIO FUERA DE LINEA", remote.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClientRejectsBadTermsBeforeDialing(t *testing.T) {
	client := newTestClient("127.0.0.1:1", time.Second)

	_, err := client.Lookup(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptySearchTerm)

	_, err = client.Lookup(context.Background(), "coca <script>")
	assert.ErrorIs(t, err, ErrUnsafeSearchTerm)
}

func TestClientConnectFailedAfterRetry(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	client := newTestClient(addr, time.Second)
	_, err = client.Lookup(context.Background(), "fideos")
	require.ErrorIs(t, err, ErrConnectFailed)
}
