package erp

import "bytes"

// frameScanner implements the response framing rule: a document is complete
// once the count of opening root markers equals the count of closing ones,
// with at least one of each seen. It is fed incrementally, chunk by chunk,
// and never re-scans bytes it has already consumed. Markers split across
// chunk boundaries are handled by carrying a short tail between feeds.
type frameScanner struct {
	openMarker  []byte
	closeMarker []byte
	opens       int
	closes      int
	carry       []byte
}

func newFrameScanner(root string) *frameScanner {
	return &frameScanner{
		openMarker:  []byte("<" + root + ">"),
		closeMarker: []byte("</" + root + ">"),
	}
}

// feed consumes the next chunk and updates marker counts.
func (s *frameScanner) feed(chunk []byte) {
	data := chunk
	boundary := 0
	if len(s.carry) > 0 {
		data = append(append([]byte{}, s.carry...), chunk...)
		boundary = len(s.carry)
	}

	s.opens += countEnding(data, s.openMarker, boundary)
	s.closes += countEnding(data, s.closeMarker, boundary)

	keep := len(s.closeMarker) - 1
	if len(data) < keep {
		keep = len(data)
	}
	s.carry = append(s.carry[:0], data[len(data)-keep:]...)
}

// complete reports whether the framing balance condition holds.
func (s *frameScanner) complete() bool {
	return s.opens > 0 && s.opens == s.closes
}

// countEnding counts occurrences of marker in data whose final byte lands at
// or after boundary. Occurrences fully inside the carried tail were already
// counted on a previous feed.
func countEnding(data, marker []byte, boundary int) int {
	count := 0
	offset := 0
	for {
		i := bytes.Index(data[offset:], marker)
		if i < 0 {
			return count
		}
		end := offset + i + len(marker)
		if end > boundary {
			count++
		}
		offset += i + 1
	}
}
