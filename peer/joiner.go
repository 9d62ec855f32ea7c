package peer

import (
	"context"
	"net"
	"strconv"

	"github.com/Goti-staniol/Online-Pvp/protocol"
)

// Dial connects to a host. Failures come back as *ConnectError so callers
// can tell a refused port from a bad address.
func Dial(ctx context.Context, ip string, port int, opts Options) (*Session, error) {
	addr := net.JoinHostPort(ip, strconv.Itoa(port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ConnectError{Addr: addr, Cause: connectCause(err), Err: err}
	}
	opts.Logger.Info().Str("addr", addr).Msg("connected to host")
	return newSession(conn, protocol.RoleClient, port, opts), nil
}
