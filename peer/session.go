package peer

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Goti-staniol/Online-Pvp/network"
	"github.com/Goti-staniol/Online-Pvp/protocol"
)

type Options struct {
	Framing  network.Framing
	MaxFrame int
	Logger   zerolog.Logger
}

// Session is one connected peer. Host and joiner sessions behave the same
// once connected; only Role differs.
//
// Send, Receive and Exchange drive the channel directly. Run instead hands
// the channel to a worker and the caller talks to it through Offer and Poll.
// Do not mix the two styles on one session.
type Session struct {
	ch   *network.Channel
	role protocol.Role
	log  zerolog.Logger

	outbox *mailbox
	inbox  *mailbox

	mu   sync.Mutex
	err  error
	done chan struct{}
}

func newSession(conn net.Conn, role protocol.Role, port int, opts Options) *Session {
	log := opts.Logger.With().Str("role", string(role)).Logger()
	return &Session{
		ch: network.NewChannel(conn, network.Options{
			Key:      protocol.PeerKey(port),
			Framing:  opts.Framing,
			MaxFrame: opts.MaxFrame,
			Logger:   log,
		}),
		role:   role,
		log:    log,
		outbox: newMailbox(),
		inbox:  newMailbox(),
		done:   make(chan struct{}),
	}
}

func (s *Session) Role() protocol.Role { return s.role }

func (s *Session) Key() string { return s.ch.Key() }

func (s *Session) RemoteAddr() net.Addr { return s.ch.RemoteAddr() }

func (s *Session) Send(snap protocol.Snapshot) error {
	if err := s.ch.Send(snap); err != nil {
		s.fail(err)
		return err
	}
	return nil
}

func (s *Session) Receive() (protocol.Snapshot, error) {
	snap, err := s.ch.Receive()
	if err != nil {
		s.fail(err)
		return protocol.Snapshot{}, err
	}
	return snap, nil
}

// Exchange performs one lockstep frame: send the local snapshot, then block
// for the remote one.
func (s *Session) Exchange(local protocol.Snapshot) (protocol.Snapshot, error) {
	if err := s.Send(local); err != nil {
		return protocol.Snapshot{}, err
	}
	return s.Receive()
}

// Run is the session worker. Each round it waits for an offered snapshot,
// sends it, receives the remote reply and leaves it in the inbox. It returns
// the error that ended the session; cancelling ctx closes the channel.
func (s *Session) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		out, err := s.outbox.wait(ctx, s.done)
		if err != nil {
			return s.end(ctx, err)
		}
		if err := s.ch.Send(out); err != nil {
			return s.end(ctx, err)
		}
		in, err := s.ch.Receive()
		if err != nil {
			return s.end(ctx, err)
		}
		s.inbox.put(in)
	}
}

func (s *Session) end(ctx context.Context, err error) error {
	if ctx.Err() != nil && (errors.Is(err, network.ErrSessionClosed) || errors.Is(err, ctx.Err())) {
		err = ctx.Err()
	}
	s.fail(err)
	return err
}

// Offer queues the local snapshot for the worker. Entities pending from an
// offer the worker has not taken yet are kept.
func (s *Session) Offer(snap protocol.Snapshot) {
	s.outbox.put(snap)
}

// Poll returns the newest remote snapshot received since the last Poll.
func (s *Session) Poll() (protocol.Snapshot, bool) {
	return s.inbox.take()
}

// Done is closed once the session has ended for any reason.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the error that ended the session, or nil while it is live.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) Close() error {
	s.fail(network.ErrSessionClosed)
	return nil
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return
	}
	s.err = err
	close(s.done)
	s.mu.Unlock()

	if errors.Is(err, network.ErrPeerDisconnected) {
		s.log.Info().Msg("peer disconnected")
	} else if !errors.Is(err, network.ErrSessionClosed) {
		s.log.Warn().Err(err).Msg("session ended")
	}
	_ = s.ch.Close()
}
