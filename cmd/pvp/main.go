package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Goti-staniol/Online-Pvp/config"
	"github.com/Goti-staniol/Online-Pvp/game"
	"github.com/Goti-staniol/Online-Pvp/logger"
	"github.com/Goti-staniol/Online-Pvp/match"
	"github.com/Goti-staniol/Online-Pvp/network"
	"github.com/Goti-staniol/Online-Pvp/peer"
	"github.com/Goti-staniol/Online-Pvp/spectate"
)

const usage = `usage:
  pvp host     [-config path] [-ip addr] [-port n] [-frames n] [-spectate addr]
  pvp join     -ip addr [-port n] [-frames n] [-spectate addr]
  pvp settings [-config path] [-ip addr] [-port n] [-default]`

func main() {
	if err := config.InitConfig(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	os.Exit(run(os.Args[1], os.Args[2:]))
}

func run(cmd string, args []string) int {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	settingsPath := fs.String("config", config.DefaultSettingsPath, "settings file")
	ip := fs.String("ip", "", "address to bind (host) or connect to (join)")
	port := fs.Int("port", 0, "port, overrides the settings file")
	frames := fs.Int("frames", 0, "stop after this many frames, 0 plays until the peer leaves")
	seed := fs.Int64("seed", time.Now().UnixNano(), "autopilot seed")
	spectateAddr := fs.String("spectate", "", "serve the merged view over websocket on this address")
	reset := fs.Bool("default", false, "settings: restore the default address and port")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if cmd == "settings" {
		return writeSettings(*settingsPath, *ip, *port, *reset)
	}

	cfg, err := config.Load(*settingsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *ip != "" {
		cfg.IP = *ip
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *spectateAddr != "" {
		cfg.SpectateAddr = *spectateAddr
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	framing, err := network.ParseFraming(cfg.Framing)
	if err != nil {
		log.Error().Err(err).Msg("bad framing")
		return 1
	}
	opts := peer.Options{Framing: framing, MaxFrame: cfg.MaxFrame, Logger: log}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sess *peer.Session
	switch cmd {
	case "host":
		sess, err = host(ctx, cfg, opts)
	case "join":
		if *ip == "" && cfg.IP == config.LocalDevice {
			fmt.Fprintln(os.Stderr, "join needs -ip")
			return 2
		}
		sess, err = peer.Dial(ctx, cfg.IP, cfg.Port, opts)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	if err != nil {
		reportStartError(log, err)
		return 1
	}
	defer sess.Close()

	return play(ctx, sess, cfg, *frames, *seed, log)
}

func host(ctx context.Context, cfg config.Config, opts peer.Options) (*peer.Session, error) {
	ip, err := cfg.ResolveIP()
	if err != nil {
		return nil, err
	}
	h, err := peer.Bind(ctx, ip, cfg.Port, opts)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Data to connect:\nIP - %s\nPORT - %d\n", ip, h.Addr().Port)
	return h.Accept(ctx)
}

func play(ctx context.Context, sess *peer.Session, cfg config.Config, frames int, seed int64, log zerolog.Logger) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	renderers := []match.Renderer{scoreboard(log)}
	if cfg.SpectateAddr != "" {
		hub := spectate.NewHub(log)
		renderers = append(renderers, hub)
		go func() {
			if err := hub.ListenAndServe(ctx, cfg.SpectateAddr); err != nil {
				log.Error().Err(err).Msg("spectator feed stopped")
			}
		}()
	}

	go func() { _ = sess.Run(ctx) }()

	world := game.NewWorld(sess.Role(), game.WithLogger(log))
	m := match.New(world, sess, match.NewAutopilot(seed), match.Config{MaxFrames: frames, Logger: log}, renderers...)
	sum, err := m.Run(ctx)
	log.Info().
		Str("reason", string(sum.Reason)).
		Int("frames", sum.Frames).
		Int("host_score", sum.HostScore).
		Int("client_score", sum.ClientScore).
		Msg("match over")
	if err != nil {
		return 1
	}
	return 0
}

// scoreboard logs both scores once a second of game time.
func scoreboard(log zerolog.Logger) match.Renderer {
	return match.RenderFunc(func(v game.View) {
		if v.Tick%30 != 0 {
			return
		}
		ev := log.Debug().Int("tick", v.Tick).Int("bullets", len(v.Bullets)).Int("enemies", len(v.Enemies))
		for _, p := range v.Players {
			ev = ev.Int(string(p.Role)+"_score", p.Score)
		}
		ev.Msg("frame")
	})
}

func reportStartError(log zerolog.Logger, err error) {
	var be *peer.BindError
	var ce *peer.ConnectError
	switch {
	case errors.As(err, &be):
		log.Error().Err(be.Err).Str("addr", be.Addr).Msg("cannot listen on this address")
	case errors.As(err, &ce):
		log.Error().Str("cause", string(ce.Cause)).Msg(ce.Error())
	case errors.Is(err, context.Canceled):
		log.Info().Msg("cancelled before a peer connected")
	default:
		log.Error().Err(err).Msg("session did not start")
	}
}

func writeSettings(path, ip string, port int, reset bool) int {
	s := config.DefaultSettings()
	if !reset {
		cur, err := config.ReadSettings(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		s = cur
		if ip != "" {
			s.Server.IP = ip
		}
		if port != 0 {
			s.Server.Port = port
		}
	}
	if err := config.Save(path, s); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("saved %s: ip=%s port=%d\n", path, s.Server.IP, s.Server.Port)
	return 0
}
