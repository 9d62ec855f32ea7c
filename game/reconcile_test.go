package game

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goti-staniol/Online-Pvp/protocol"
)

func emptyRemote() *protocol.Snapshot {
	s := protocol.NewSnapshot(ClientStart.X, ClientStart.Y)
	return &s
}

func TestFiredBulletIsSentOnceThenPurged(t *testing.T) {
	w := NewWorld(protocol.RoleHost, WithIDs(seqIDs("b")))

	for frame := 1; frame < 10; frame++ {
		w.Apply(Input{})
		w.Reconcile(emptyRemote())
		w.Step()
	}

	w.Apply(Input{Fire: true})
	out := w.Outgoing()
	require.Contains(t, out.Bullets, "b1")
	assert.Equal(t, Point{X: 150, Y: 150 + BulletSpawnOffset}, out.Bullets["b1"])

	a := w.Reconcile(emptyRemote())
	assert.Equal(t, 1, a.Bullets)
	assert.NotContains(t, w.Outgoing().Bullets, "b1", "b1 must not be sent again next frame")
	require.Len(t, w.Bullets, 1)
	assert.Equal(t, "b1", w.Bullets[0].ID)
	assert.Equal(t, protocol.RoleHost, w.Bullets[0].Role)
}

func TestJoinerAdmitsHostBullet(t *testing.T) {
	raw := `{"5345": {"x":150,"y":150,"bullets":{"b1":{"x":150,"y":145}},"enemies":{},"score":0}}`
	remote, err := protocol.Decode([]byte(raw), "1313")
	require.NoError(t, err)

	w := NewWorld(protocol.RoleClient)
	a := w.Reconcile(&remote)

	assert.Equal(t, Admission{Bullets: 1}, a)
	require.Len(t, w.Bullets, 1)
	assert.Equal(t, Bullet{ID: "b1", X: 150, Y: 145, Role: protocol.RoleHost}, *w.Bullets[0])
	assert.Equal(t, 150, w.Remote.X)
	assert.Equal(t, 150, w.Remote.Y)
}

func TestReconcileEmptyRemoteIsIdempotent(t *testing.T) {
	w := NewWorld(protocol.RoleClient)
	remote := protocol.NewSnapshot(150, 150)
	remote.Bullets["b1"] = Point{X: 150, Y: 165}
	remote.Enemies["e1"] = Point{X: 300, Y: 10}
	w.Reconcile(&remote)

	bullets := derefBullets(w.Bullets)
	enemies := derefEnemies(w.Enemies)

	empty := protocol.Snapshot{Bullets: map[string]Point{}, Enemies: map[string]Point{}}
	a := w.Reconcile(&empty)
	assert.Equal(t, Admission{}, a)
	if diff := cmp.Diff(bullets, derefBullets(w.Bullets)); diff != "" {
		t.Fatalf("bullets changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(enemies, derefEnemies(w.Enemies)); diff != "" {
		t.Fatalf("enemies changed (-before +after):\n%s", diff)
	}
}

func TestReconcileWithoutRemoteKeepsRemotePosition(t *testing.T) {
	w := NewWorld(protocol.RoleHost)
	w.Remote.X, w.Remote.Y = 42, 24
	w.Reconcile(nil)
	assert.Equal(t, 42, w.Remote.X)
	assert.Equal(t, 24, w.Remote.Y)
}

func TestDuplicateRemoteEnemyAdmittedOnce(t *testing.T) {
	w := NewWorld(protocol.RoleClient)
	remote := protocol.NewSnapshot(150, 150)
	remote.Enemies["e1"] = Point{X: 100, Y: 5}

	first := w.Reconcile(&remote)
	second := w.Reconcile(&remote)

	assert.Equal(t, 1, first.Enemies)
	assert.Equal(t, 0, second.Enemies)
	assert.Len(t, w.Enemies, 1)
}

func TestReconcileTagsRoles(t *testing.T) {
	w := NewWorld(protocol.RoleClient, WithIDs(seqIDs("c")))
	w.Apply(Input{Fire: true})

	remote := protocol.NewSnapshot(150, 150)
	remote.Bullets["h1"] = Point{X: 150, Y: 165}
	w.Reconcile(&remote)

	roles := map[string]protocol.Role{}
	for _, b := range w.Bullets {
		roles[b.ID] = b.Role
	}
	assert.Equal(t, map[string]protocol.Role{"c1": protocol.RoleClient, "h1": protocol.RoleHost}, roles)
	assert.Equal(t, "h1", w.Bullets[0].ID, "host entities are admitted first")
}

func TestNoBulletIsTransmittedTwice(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	w := NewWorld(protocol.RoleHost, WithIDs(seqIDs("x")), WithSeed(3))

	sent := map[string]int{}
	for frame := 0; frame < 600; frame++ {
		w.Apply(Input{
			Fire:  rng.Intn(2) == 0,
			Left:  rng.Intn(3) == 0,
			Right: rng.Intn(3) == 0,
		})
		out := w.Outgoing()
		for id := range out.Bullets {
			sent[id]++
		}
		for id := range out.Enemies {
			sent[id]++
		}

		var remote *protocol.Snapshot
		if rng.Intn(4) != 0 {
			remote = emptyRemote()
		}
		w.Reconcile(remote)
		w.Step()
	}

	require.NotEmpty(t, sent)
	for id, n := range sent {
		if n != 1 {
			t.Fatalf("id %s transmitted %d times", id, n)
		}
	}
}

func TestLockstepPeersAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	host := NewWorld(protocol.RoleHost, WithIDs(seqIDs("h")), WithSeed(5))
	client := NewWorld(protocol.RoleClient, WithIDs(seqIDs("c")))

	randomInput := func() Input {
		return Input{
			Up:    rng.Intn(4) == 0,
			Down:  rng.Intn(4) == 0,
			Left:  rng.Intn(3) == 0,
			Right: rng.Intn(3) == 0,
			Fire:  rng.Intn(2) == 0,
		}
	}

	hits := 0
	for frame := 0; frame < 900; frame++ {
		host.Apply(randomInput())
		client.Apply(randomInput())

		hs, cs := host.Outgoing(), client.Outgoing()
		host.Reconcile(&cs)
		client.Reconcile(&hs)
		host.Step()
		client.Step()

		hv, cv := host.View(), client.View()
		if diff := cmp.Diff(hv.Players, cv.Players); diff != "" {
			t.Fatalf("frame %d players diverged:\n%s", frame, diff)
		}
		if diff := cmp.Diff(hv.Bullets, cv.Bullets); diff != "" {
			t.Fatalf("frame %d bullets diverged:\n%s", frame, diff)
		}
		if diff := cmp.Diff(hv.Enemies, cv.Enemies); diff != "" {
			t.Fatalf("frame %d enemies diverged:\n%s", frame, diff)
		}
		hits = host.Score(protocol.RoleHost) + host.Score(protocol.RoleClient)
	}
	t.Logf("combined score after lockstep run: %d", hits)
}

func derefBullets(in []*Bullet) []Bullet {
	out := make([]Bullet, 0, len(in))
	for _, b := range in {
		out = append(out, *b)
	}
	return out
}

func derefEnemies(in []*Enemy) []Enemy {
	out := make([]Enemy, 0, len(in))
	for _, e := range in {
		out = append(out, *e)
	}
	return out
}

func TestSortedIDs(t *testing.T) {
	got := sortedIDs(map[string]Point{"b": {}, "a": {}, "c": {}})
	assert.True(t, slices.IsSorted(got))
	assert.Len(t, got, 3)
}
