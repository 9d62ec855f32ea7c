package peer

import (
	"context"
	"sync"

	"github.com/Goti-staniol/Online-Pvp/network"
	"github.com/Goti-staniol/Online-Pvp/protocol"
)

// mailbox is a single slot. A put into a full slot coalesces with the
// waiting snapshot instead of queueing behind it.
type mailbox struct {
	mu    sync.Mutex
	snap  protocol.Snapshot
	full  bool
	ready chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{}, 1)}
}

func (m *mailbox) put(s protocol.Snapshot) {
	m.mu.Lock()
	if m.full {
		m.snap = m.snap.Coalesce(s)
	} else {
		m.snap = s.Clone()
		m.full = true
	}
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

func (m *mailbox) take() (protocol.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.full {
		return protocol.Snapshot{}, false
	}
	s := m.snap
	m.snap = protocol.Snapshot{}
	m.full = false
	return s, true
}

// wait blocks until a snapshot is available, ctx is done or done is closed.
func (m *mailbox) wait(ctx context.Context, done <-chan struct{}) (protocol.Snapshot, error) {
	for {
		if s, ok := m.take(); ok {
			return s, nil
		}
		select {
		case <-ctx.Done():
			return protocol.Snapshot{}, ctx.Err()
		case <-done:
			return protocol.Snapshot{}, network.ErrSessionClosed
		case <-m.ready:
		}
	}
}
