package network

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Goti-staniol/Online-Pvp/protocol"
)

type Framing string

const (
	// FramingLengthPrefixed writes a 4 byte big-endian length before each body.
	FramingLengthPrefixed Framing = "length-prefixed"
	// FramingLegacy writes bare JSON objects back to back, as older
	// peers do.
	FramingLegacy Framing = "legacy"
)

const headerSize = 4

func ParseFraming(s string) (Framing, error) {
	switch Framing(s) {
	case "", FramingLengthPrefixed:
		return FramingLengthPrefixed, nil
	case FramingLegacy:
		return FramingLegacy, nil
	}
	return "", fmt.Errorf("unknown framing %q", s)
}

type frameReader interface {
	ReadFrame() ([]byte, error)
}

func newFrameReader(f Framing, r io.Reader, max int) frameReader {
	if f == FramingLegacy {
		lim := &frameLimit{r: r}
		return &legacyReader{dec: json.NewDecoder(lim), lim: lim, max: max}
	}
	return &prefixedReader{r: bufio.NewReader(r), max: max}
}

func writeFrame(f Framing, w io.Writer, payload []byte) error {
	if f == FramingLegacy {
		_, err := w.Write(payload)
		return err
	}
	buf := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[headerSize:], payload)
	_, err := w.Write(buf)
	return err
}

type prefixedReader struct {
	r   *bufio.Reader
	max int
}

func (p *prefixedReader) ReadFrame() ([]byte, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(p.r, hdr[:]); err != nil {
		return nil, err
	}
	n := int(binary.BigEndian.Uint32(hdr[:]))
	if n == 0 {
		return nil, &protocol.DecodeError{Err: fmt.Errorf("zero length frame")}
	}
	if n > p.max {
		return nil, &protocol.DecodeError{Size: n, Err: protocol.ErrFrameTooLarge}
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(p.r, body); err != nil {
		return nil, err
	}
	return body, nil
}

var errFrameBudget = errors.New("frame budget spent")

// frameLimit caps how many bytes the legacy decoder may pull for one frame.
type frameLimit struct {
	r    io.Reader
	left int
	read int
}

func (l *frameLimit) reset(n int) {
	l.left = max(n, 0)
	l.read = 0
}

func (l *frameLimit) Read(p []byte) (int, error) {
	if l.left <= 0 {
		return 0, errFrameBudget
	}
	if len(p) > l.left {
		p = p[:l.left]
	}
	n, err := l.r.Read(p)
	l.left -= n
	l.read += n
	return n, err
}

// legacyReader relies on JSON being self delimiting, so frames that arrive
// coalesced in one TCP segment still split correctly. Bytes the decoder has
// already buffered count against the next frame's budget.
type legacyReader struct {
	dec *json.Decoder
	lim *frameLimit
	max int
}

func (l *legacyReader) ReadFrame() ([]byte, error) {
	buffered, _ := io.Copy(io.Discard, l.dec.Buffered())
	l.lim.reset(l.max - int(buffered))

	start := l.dec.InputOffset()
	var raw json.RawMessage
	if err := l.dec.Decode(&raw); err != nil {
		var syntax *json.SyntaxError
		switch {
		case errors.Is(err, errFrameBudget):
			return nil, &protocol.DecodeError{Size: int(buffered) + l.lim.read, Err: protocol.ErrFrameTooLarge}
		case errors.As(err, &syntax):
			return nil, &protocol.DecodeError{Err: err}
		}
		return nil, err
	}
	if size := int(l.dec.InputOffset() - start); size > l.max {
		return nil, &protocol.DecodeError{Size: size, Err: protocol.ErrFrameTooLarge}
	}
	return raw, nil
}
