package network

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

var (
	// ErrPeerDisconnected is the terminal signal that the remote peer left.
	ErrPeerDisconnected = errors.New("peer disconnected")
	// ErrSessionClosed is returned after the local side closed the channel.
	ErrSessionClosed = errors.New("session closed")
)

// TransportError reports a failed send or receive on an established channel.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// classify maps low level socket errors onto the channel sentinels while
// keeping the original cause in the chain.
func classify(err error, closedLocally bool) error {
	switch {
	case closedLocally:
		return errors.Join(ErrSessionClosed, err)
	case errors.Is(err, ErrPeerDisconnected):
		return err
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE):
		return errors.Join(ErrPeerDisconnected, err)
	}
	return err
}
