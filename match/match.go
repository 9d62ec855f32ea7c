package match

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Goti-staniol/Online-Pvp/game"
	"github.com/Goti-staniol/Online-Pvp/network"
	"github.com/Goti-staniol/Online-Pvp/protocol"
)

// Link is the match's view of a running peer session.
type Link interface {
	Role() protocol.Role
	Offer(protocol.Snapshot)
	Poll() (protocol.Snapshot, bool)
	Done() <-chan struct{}
	Err() error
}

// InputSource is polled once per frame for the local player's controls.
type InputSource interface {
	Poll(tick int) game.Input
}

type InputFunc func(tick int) game.Input

func (f InputFunc) Poll(tick int) game.Input { return f(tick) }

// Renderer receives the merged world after every frame.
type Renderer interface {
	Render(game.View)
}

type RenderFunc func(game.View)

func (f RenderFunc) Render(v game.View) { f(v) }

type EndReason string

const (
	EndPeerLeft   EndReason = "peer_left"
	EndCancelled  EndReason = "cancelled"
	EndFrameLimit EndReason = "frame_limit"
	EndBadFrame   EndReason = "bad_frame"
	EndFailed     EndReason = "failed"
)

type Summary struct {
	Frames      int
	Reason      EndReason
	HostScore   int
	ClientScore int
}

type Config struct {
	TickHz    int
	MaxFrames int // 0 runs until the session ends
	Logger    zerolog.Logger
}

type Match struct {
	world  *game.World
	link   Link
	input  InputSource
	render []Renderer
	tickHz int
	max    int
	frames int
	log    zerolog.Logger
}

func New(world *game.World, link Link, input InputSource, cfg Config, render ...Renderer) *Match {
	tickHz := cfg.TickHz
	if tickHz <= 0 {
		tickHz = protocol.FrameHz
	}
	return &Match{
		world:  world,
		link:   link,
		input:  input,
		render: render,
		tickHz: tickHz,
		max:    cfg.MaxFrames,
		log:    cfg.Logger.With().Str("role", string(world.Role)).Logger(),
	}
}

func (m *Match) World() *game.World { return m.world }

// Run drives frames at the tick rate until the session ends, ctx is
// cancelled or the frame limit is hit. A peer leaving or sending a frame that
// cannot be decoded is a normal end and returns a nil error; only other
// session failures are returned.
func (m *Match) Run(ctx context.Context) (Summary, error) {
	ticker := time.NewTicker(time.Second / time.Duration(m.tickHz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return m.summary(EndCancelled), nil
		case <-m.link.Done():
			return m.ended(m.link.Err())
		case <-ticker.C:
			m.Frame()
			if m.max > 0 && m.frames >= m.max {
				return m.summary(EndFrameLimit), nil
			}
		}
	}
}

// Frame runs one frame: input, local mutation, hand-off of the local
// snapshot, reconciliation with whatever the peer sent, simulation, render.
// It never blocks on the network.
func (m *Match) Frame() {
	w := m.world
	w.Apply(m.input.Poll(w.Tick))
	m.link.Offer(w.Outgoing())

	var remote *protocol.Snapshot
	if s, ok := m.link.Poll(); ok {
		remote = &s
	}
	w.Reconcile(remote)
	w.Step()
	m.frames++

	v := w.View()
	for _, r := range m.render {
		r.Render(v)
	}
}

func (m *Match) ended(err error) (Summary, error) {
	switch {
	case err == nil, errors.Is(err, network.ErrPeerDisconnected):
		m.log.Info().Int("frames", m.frames).Msg("peer left, match over")
		return m.summary(EndPeerLeft), nil
	case errors.Is(err, network.ErrSessionClosed), errors.Is(err, context.Canceled):
		return m.summary(EndCancelled), nil
	}
	var de *protocol.DecodeError
	if errors.As(err, &de) {
		m.log.Warn().Err(err).Int("frames", m.frames).Msg("peer sent a bad frame, match over")
		return m.summary(EndBadFrame), nil
	}
	m.log.Error().Err(err).Int("frames", m.frames).Msg("match ended by session failure")
	return m.summary(EndFailed), err
}

func (m *Match) summary(reason EndReason) Summary {
	return Summary{
		Frames:      m.frames,
		Reason:      reason,
		HostScore:   m.world.Score(protocol.RoleHost),
		ClientScore: m.world.Score(protocol.RoleClient),
	}
}
