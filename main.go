package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/bgm/internal/bgm"
	"github.com/llehouerou/bgm/internal/catalog"
	"github.com/llehouerou/bgm/internal/config"
	"github.com/llehouerou/bgm/internal/device"
	"github.com/llehouerou/bgm/internal/errmsg"
	"github.com/llehouerou/bgm/internal/host"
	"github.com/llehouerou/bgm/internal/icons"
	"github.com/llehouerou/bgm/internal/logging"
	"github.com/llehouerou/bgm/internal/mpris"
	"github.com/llehouerou/bgm/internal/notify"
	"github.com/llehouerou/bgm/internal/pacer"
	"github.com/llehouerou/bgm/internal/state"
	"github.com/llehouerou/bgm/internal/stderr"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := cfg.GetLogConfig()
	log, logFile, err := logging.Open(logCfg.File, logCfg.Level)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()

	dir := cfg.MusicDir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return err
		}
	}

	fade := cfg.GetFadeConfig()
	p, err := pacer.New(fade.FPS)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}

	// Capture before the speaker initializes the audio backend.
	capture, err := stderr.Start(100)
	if err != nil {
		log.Warn().Err(err).Msg("stderr capture unavailable")
	} else {
		defer capture.Stop()
	}

	// The loop stands in for the UI thread device notifications are
	// addressed to; bubbletea owns the terminal.
	ctx, cancel := context.WithCancel(context.Background())
	loop := host.NewLoop(func(msg host.Message) {
		log.Debug().Stringer("type", msg.Type).Uint64("lparam", msg.LParam).Msg("unhandled host message")
	}, 0)
	go func() { _ = loop.Run(ctx) }()
	defer func() {
		cancel()
		<-loop.Done()
	}()

	mgr, err := bgm.New(loop, device.NewSpeaker(),
		bgm.WithLogger(log.With().Str("component", "bgm").Logger()),
		bgm.WithQueueSize(fade.QueueSize),
	)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer func() {
		if cerr := mgr.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("close manager")
			err = errors.Join(err, errors.New(errmsg.Format(errmsg.OpShutdown, cerr)))
		}
	}()

	store, err := state.Open()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer store.Close()

	icons.Init(cfg.Icons)
	m := newModel(mgr, store, p, fade, dir, log)
	if capture != nil {
		m.stderr = capture.Lines()
	}
	if cfg.Notify {
		if m.notifier, err = notify.New(); err != nil {
			return errors.New(errmsg.Format(errmsg.OpInitialize, err))
		}
		m.thumbs = filepath.Join(xdg.CacheHome, "bgm", "covers")
	}
	if cfg.MPRIS {
		adapter, err := mpris.New(mgr, mpris.Fade{Pacer: p, Ticks: fade.Frames})
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpInitialize, err))
		}
		defer adapter.Close()
	}
	if cfg.Watch {
		watcher, err := catalog.Watch(dir)
		if err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("catalog watch unavailable")
		} else {
			defer watcher.Close()
			m.changes = watcher.Changes()
		}
	}
	if cfg.Resume {
		m = m.resume()
	}

	log.Info().Str("dir", dir).Float64("fps", fade.FPS).Int("frames", fade.Frames).Msg("starting")
	prog := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
