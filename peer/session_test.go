package peer

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goti-staniol/Online-Pvp/network"
	"github.com/Goti-staniol/Online-Pvp/protocol"
)

func connect(t *testing.T, opts Options) (*Session, *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	h, err := Bind(ctx, "127.0.0.1", 0, opts)
	require.NoError(t, err)

	accepted := make(chan *Session, 1)
	acceptErr := make(chan error, 1)
	go func() {
		s, err := h.Accept(ctx)
		if err != nil {
			acceptErr <- err
			return
		}
		accepted <- s
	}()

	joiner, err := Dial(ctx, "127.0.0.1", h.Addr().Port, opts)
	require.NoError(t, err)

	select {
	case host := <-accepted:
		t.Cleanup(func() {
			_ = host.Close()
			_ = joiner.Close()
		})
		return host, joiner
	case err := <-acceptErr:
		t.Fatalf("accept: %v", err)
	case <-ctx.Done():
		t.Fatalf("timed out waiting for accept")
	}
	return nil, nil
}

func TestHostAndJoinerExchange(t *testing.T) {
	host, joiner := connect(t, Options{})
	assert.Equal(t, protocol.RoleHost, host.Role())
	assert.Equal(t, protocol.RoleClient, joiner.Role())
	assert.Equal(t, host.Key(), joiner.Key(), "both peers key frames by the host port")

	hs := protocol.NewSnapshot(150, 150)
	hs.Bullets["b1"] = protocol.Point{X: 150, Y: 165}
	js := protocol.NewSnapshot(300, 150)

	type result struct {
		snap protocol.Snapshot
		err  error
	}
	fromHost := make(chan result, 1)
	go func() {
		s, err := host.Exchange(hs)
		fromHost <- result{s, err}
	}()

	got, err := joiner.Exchange(js)
	require.NoError(t, err)
	assert.Equal(t, hs, got)

	r := <-fromHost
	require.NoError(t, r.err)
	assert.Equal(t, 300, r.snap.X)
}

func TestHostAcceptsOnlyOnce(t *testing.T) {
	host, _ := connect(t, Options{})
	port, err := strconv.Atoi(host.Key())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = Dial(ctx, "127.0.0.1", port, Options{})
	var ce *ConnectError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CauseRefused, ce.Cause)
}

func TestAcceptCancelled(t *testing.T) {
	h, err := Bind(context.Background(), "127.0.0.1", 0, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := h.Accept(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatalf("accept did not return after cancel")
	}
}

func TestBindAddressInUse(t *testing.T) {
	h, err := Bind(context.Background(), "127.0.0.1", 0, Options{})
	require.NoError(t, err)
	defer h.Close()

	_, err = Bind(context.Background(), "127.0.0.1", h.Addr().Port, Options{})
	var be *BindError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Error(), "bind")
}

func TestDialRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	_, err = Dial(context.Background(), "127.0.0.1", port, Options{})
	assert.ErrorIs(t, err, ErrConnRefused)
	assert.False(t, errors.Is(err, ErrUnresolvable))
}

func TestDialUnresolvable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Dial(ctx, "no-such-host.invalid", 1313, Options{})
	var ce *ConnectError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CauseUnresolvable, ce.Cause)
	assert.ErrorIs(t, err, ErrUnresolvable)
	assert.Contains(t, ce.Error(), "no-such-host.invalid")
}

func TestReceiveAfterPeerCloseIsDisconnect(t *testing.T) {
	host, joiner := connect(t, Options{})
	require.NoError(t, joiner.Close())

	_, err := host.Receive()
	assert.ErrorIs(t, err, network.ErrPeerDisconnected)

	select {
	case <-host.Done():
	default:
		t.Fatalf("expected host session to be done")
	}
	assert.ErrorIs(t, host.Err(), network.ErrPeerDisconnected)
}

func TestRunExchangesThroughMailboxes(t *testing.T) {
	host, joiner := connect(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = host.Run(ctx) }()
	go func() { _ = joiner.Run(ctx) }()

	hs := protocol.NewSnapshot(150, 150)
	hs.Enemies["e1"] = protocol.Point{X: 60, Y: 10}
	host.Offer(hs)
	joiner.Offer(protocol.NewSnapshot(300, 150))

	deadline := time.After(time.Second)
	for {
		if got, ok := joiner.Poll(); ok {
			assert.Equal(t, hs, got)
			break
		}
		select {
		case <-deadline:
			t.Fatalf("joiner never received host snapshot")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRunEndsWhenPeerLeaves(t *testing.T) {
	host, joiner := connect(t, Options{})

	runErr := make(chan error, 1)
	go func() { runErr <- host.Run(context.Background()) }()
	host.Offer(protocol.NewSnapshot(150, 150))

	require.NoError(t, joiner.Close())

	select {
	case err := <-runErr:
		assert.ErrorIs(t, err, network.ErrPeerDisconnected)
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop after peer left")
	}
	<-host.Done()
}

func TestRunStopsOnCancel(t *testing.T) {
	host, _ := connect(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())

	runErr := make(chan error, 1)
	go func() { runErr <- host.Run(ctx) }()
	cancel()

	select {
	case err := <-runErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop after cancel")
	}
}
