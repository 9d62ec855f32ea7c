package network

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/Goti-staniol/Online-Pvp/protocol"
)

type Options struct {
	// Key is the top level key of every frame, the session port as a string.
	Key      string
	Framing  Framing
	MaxFrame int
	Logger   zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Key == "" {
		o.Key = protocol.PeerKey(protocol.DefaultPort)
	}
	if o.Framing == "" {
		o.Framing = FramingLengthPrefixed
	}
	if o.MaxFrame <= 0 {
		if o.Framing == FramingLegacy {
			o.MaxFrame = protocol.LegacyBufferSize
		} else {
			o.MaxFrame = protocol.DefaultMaxFrame
		}
	}
	return o
}

// Channel carries snapshots over one connected socket. One Send and one
// Receive may run concurrently; each direction is serialized by its own lock.
type Channel struct {
	conn   net.Conn
	opts   Options
	log    zerolog.Logger
	reader frameReader

	writeMu sync.Mutex
	readMu  sync.Mutex
	closed  atomic.Bool
}

func NewChannel(conn net.Conn, opts Options) *Channel {
	opts = opts.withDefaults()
	return &Channel{
		conn:   conn,
		opts:   opts,
		log:    opts.Logger.With().Str("peer", conn.RemoteAddr().String()).Logger(),
		reader: newFrameReader(opts.Framing, conn, opts.MaxFrame),
	}
}

func (c *Channel) Key() string { return c.opts.Key }

func (c *Channel) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *Channel) Send(s protocol.Snapshot) error {
	if c.closed.Load() {
		return &TransportError{Op: "send", Err: ErrSessionClosed}
	}
	payload, err := protocol.Encode(c.opts.Key, s)
	if err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	if len(payload) > c.opts.MaxFrame {
		c.log.Warn().Int("size", len(payload)).Int("max", c.opts.MaxFrame).Msg("outgoing frame exceeds peer max frame")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := writeFrame(c.opts.Framing, c.conn, payload); err != nil {
		return &TransportError{Op: "send", Err: classify(err, c.closed.Load())}
	}
	return nil
}

// Receive blocks until the next frame arrives. Malformed or oversized frames
// return a *protocol.DecodeError; socket failures return a *TransportError.
func (c *Channel) Receive() (protocol.Snapshot, error) {
	if c.closed.Load() {
		return protocol.Snapshot{}, &TransportError{Op: "receive", Err: ErrSessionClosed}
	}

	c.readMu.Lock()
	defer c.readMu.Unlock()
	b, err := c.reader.ReadFrame()
	if err != nil {
		if _, ok := err.(*protocol.DecodeError); ok {
			return protocol.Snapshot{}, err
		}
		return protocol.Snapshot{}, &TransportError{Op: "receive", Err: classify(err, c.closed.Load())}
	}
	return protocol.Decode(b, c.opts.Key)
}

// Close unblocks any in-flight Send or Receive.
func (c *Channel) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}
