package peer

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

var (
	ErrConnRefused  = errors.New("connection refused")
	ErrUnresolvable = errors.New("unresolvable address")
)

type ConnectCause string

const (
	CauseRefused      ConnectCause = "refused"
	CauseUnresolvable ConnectCause = "unresolvable"
	CauseOther        ConnectCause = "other"
)

// BindError reports that the host could not listen on its address.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// ConnectError reports a failed dial with a cause the caller can branch on.
type ConnectError struct {
	Addr  string
	Cause ConnectCause
	Err   error
}

func (e *ConnectError) Error() string {
	switch e.Cause {
	case CauseRefused:
		return fmt.Sprintf("connection refused on %s", e.Addr)
	case CauseUnresolvable:
		return fmt.Sprintf("invalid ip address or hostname: %s", e.Addr)
	}
	return fmt.Sprintf("connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

func (e *ConnectError) Is(target error) bool {
	switch target {
	case ErrConnRefused:
		return e.Cause == CauseRefused
	case ErrUnresolvable:
		return e.Cause == CauseUnresolvable
	}
	return false
}

func connectCause(err error) ConnectCause {
	var dnsErr *net.DNSError
	var addrErr *net.AddrError
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return CauseRefused
	case errors.As(err, &dnsErr), errors.As(err, &addrErr):
		return CauseUnresolvable
	}
	var parseErr *net.ParseError
	if errors.As(err, &parseErr) {
		return CauseUnresolvable
	}
	return CauseOther
}
