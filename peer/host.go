package peer

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/Goti-staniol/Online-Pvp/protocol"
)

// Host listens for exactly one joiner.
type Host struct {
	ln   net.Listener
	addr string
	opts Options
}

// Bind listens on ip:port. Port 0 picks a free port; Addr reports it.
func Bind(ctx context.Context, ip string, port int, opts Options) (*Host, error) {
	addr := net.JoinHostPort(ip, strconv.Itoa(port))
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}
	opts.Logger.Info().Str("addr", ln.Addr().String()).Msg("waiting for joiner")
	return &Host{ln: ln, addr: addr, opts: opts}, nil
}

func (h *Host) Addr() *net.TCPAddr {
	return h.ln.Addr().(*net.TCPAddr)
}

// Accept blocks until one joiner connects or ctx is cancelled. The listener
// is closed either way, so a Host accepts at most once.
func (h *Host) Accept(ctx context.Context) (*Session, error) {
	stop := context.AfterFunc(ctx, func() { _ = h.ln.Close() })
	defer stop()
	defer h.ln.Close()

	conn, err := h.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("accept on %s: %w", h.addr, err)
	}
	h.opts.Logger.Info().Str("peer", conn.RemoteAddr().String()).Msg("joiner connected")
	return newSession(conn, protocol.RoleHost, h.Addr().Port, h.opts), nil
}

func (h *Host) Close() error {
	return h.ln.Close()
}
