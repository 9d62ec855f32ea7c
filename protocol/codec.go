package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrFrameTooLarge is wrapped in a DecodeError when an incoming frame exceeds
// the configured maximum.
var ErrFrameTooLarge = errors.New("frame exceeds max size")

// DecodeError reports a malformed, truncated or oversized payload.
type DecodeError struct {
	Size int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode frame (%d bytes): %v", e.Size, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Frame is the top level wire object, keyed by the peer key.
type Frame map[string]Snapshot

// PeerKey renders the session port the way both peers key their frames.
func PeerKey(port int) string {
	return strconv.Itoa(port)
}

func Encode(key string, s Snapshot) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("trying to encode frame with empty key")
	}
	s.Normalize()
	return json.Marshal(Frame{key: s})
}

// Decode parses one frame. The entry for key is preferred; a frame holding a
// single entry under another key is accepted as well.
func Decode(b []byte, key string) (Snapshot, error) {
	if len(b) == 0 {
		return Snapshot{}, &DecodeError{Err: errors.New("empty payload")}
	}
	var f Frame
	if err := json.Unmarshal(b, &f); err != nil {
		return Snapshot{}, &DecodeError{Size: len(b), Err: err}
	}
	s, ok := f[key]
	if !ok {
		if len(f) != 1 {
			return Snapshot{}, &DecodeError{
				Size: len(b),
				Err:  fmt.Errorf("frame has %d entries and none for key %q", len(f), key),
			}
		}
		for _, only := range f {
			s = only
		}
	}
	s.Normalize()
	return s, nil
}
