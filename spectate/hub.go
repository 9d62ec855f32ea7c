package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Goti-staniol/Online-Pvp/game"
)

const (
	pingEvery    = 25 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	// Spectators are read only, any origin may watch.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub streams the merged world view to websocket spectators. Each viewer
// holds only the latest frame; a slow viewer skips frames instead of
// stalling the match.
type Hub struct {
	mu      sync.Mutex
	viewers map[*viewer]struct{}
	log     zerolog.Logger

	done     chan struct{}
	stopOnce sync.Once
}

type viewer struct {
	latest chan []byte
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		viewers: make(map[*viewer]struct{}),
		log:     log,
		done:    make(chan struct{}),
	}
}

// Close ends every viewer connection. Viewers that connect afterwards are
// closed straight away.
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Render implements match.Renderer.
func (h *Hub) Render(v game.View) {
	b, err := json.Marshal(v)
	if err != nil {
		h.log.Warn().Err(err).Msg("encode view")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for vw := range h.viewers {
		select {
		case <-vw.latest:
		default:
		}
		vw.latest <- b
	}
}

func (h *Hub) NumViewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

func (h *Hub) add() *viewer {
	vw := &viewer{latest: make(chan []byte, 1)}
	h.mu.Lock()
	h.viewers[vw] = struct{}{}
	h.mu.Unlock()
	return vw
}

func (h *Hub) remove(vw *viewer) {
	h.mu.Lock()
	delete(h.viewers, vw)
	h.mu.Unlock()
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("upgrade")
		return
	}
	defer conn.Close()

	vw := h.add()
	defer h.remove(vw)
	h.log.Info().Str("viewer", r.RemoteAddr).Msg("spectator joined")

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	// Spectators never send anything; the read loop only notices the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-h.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "match over")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
			return
		case b := <-vw.latest:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				h.log.Debug().Err(err).Msg("write view")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ListenAndServe serves the hub on addr at /ws until ctx is cancelled, then
// closes the hub. Upgraded connections are not tracked by the server, so
// Shutdown alone would leave them open.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	stop := context.AfterFunc(ctx, func() {
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	h.log.Info().Str("addr", addr).Msg("spectator feed listening (ws endpoint: /ws)")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
