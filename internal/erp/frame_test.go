package erp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameScannerBalancedSingleChunk(t *testing.T) {
	s := newFrameScanner(responseRoot)
	s.feed([]byte(`<RESPUESTA><ARTICULO></ARTICULO></RESPUESTA>`))
	assert.True(t, s.complete())
}

func TestFrameScannerIncompleteUntilClosed(t *testing.T) {
	s := newFrameScanner(responseRoot)
	s.feed([]byte(`<RESPUESTA><ARTICULO><NOMBRE><![CDATA[X]]></NOMBRE>`))
	assert.False(t, s.complete())
	s.feed([]byte(`</ARTICULO>`))
	assert.False(t, s.complete())
	s.feed([]byte(`</RESPUESTA>`))
	assert.True(t, s.complete())
}

func TestFrameScannerMarkerSplitAcrossChunks(t *testing.T) {
	s := newFrameScanner(responseRoot)
	s.feed([]byte(`<RESPU`))
	s.feed([]byte(`ESTA>datos</RESP`))
	assert.False(t, s.complete())
	s.feed([]byte(`UESTA>`))
	assert.True(t, s.complete())
}

func TestFrameScannerDoesNotDoubleCount(t *testing.T) {
	s := newFrameScanner(responseRoot)
	s.feed([]byte(`<RESPUESTA>`))
	// Empty and tiny feeds must not re-count the marker held in the carry.
	s.feed([]byte(``))
	s.feed([]byte(`x`))
	assert.False(t, s.complete())
	assert.Equal(t, 1, s.opens)
}

func TestFrameScannerEmptyInputNotComplete(t *testing.T) {
	s := newFrameScanner(responseRoot)
	assert.False(t, s.complete())
	s.feed([]byte(`sin documento`))
	assert.False(t, s.complete())
}
