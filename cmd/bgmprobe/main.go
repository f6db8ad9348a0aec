// bgmprobe plays a file through the manager, fades it out with the frame
// pacer and logs every notification it receives.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/llehouerou/bgm/internal/bgm"
	"github.com/llehouerou/bgm/internal/device"
	"github.com/llehouerou/bgm/internal/dispatch"
	"github.com/llehouerou/bgm/internal/host"
	"github.com/llehouerou/bgm/internal/logging"
	"github.com/llehouerou/bgm/internal/pacer"
)

func main() {
	var (
		play   = flag.DurationP("play", "p", 5*time.Second, "time to play before fading out")
		fade   = flag.DurationP("fade", "f", 2*time.Second, "fadeout length")
		fps    = flag.Float64("fps", 60, "fadeout frame rate")
		offset = flag.Duration("from", 0, "start offset")
		level  = flag.StringP("level", "l", "debug", "log level")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bgmprobe [flags] <file>")
		flag.PrintDefaults()
	}
	flag.Parse()

	lvl, err := logging.ParseLevel(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logging.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, lvl)

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := probe(log, flag.Arg(0), *play, *fade, *fps, *offset); err != nil {
		log.Fatal().Err(err).Msg("probe failed")
	}
}

func probe(log zerolog.Logger, path string, play, fade time.Duration, fps float64, offset time.Duration) error {
	p, err := pacer.New(fps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop := host.NewLoop(func(msg host.Message) {
		log.Debug().Stringer("type", msg.Type).Uint64("handle", msg.LParam).Msg("unclaimed message")
	}, 0)
	go func() { _ = loop.Run(ctx) }()

	mgr, err := bgm.New(loop, device.NewSpeaker(), bgm.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}()

	key, err := mgr.Load(path)
	if err != nil {
		return err
	}
	info, _ := mgr.Track(key)
	log.Info().Uint32("key", uint32(key)).Int("volume", info.Volume).Str("path", path).Msg("loaded")

	ended := make(chan dispatch.Notify, 1)
	onPlay := dispatch.CallbackFunc(func(n dispatch.Notify) {
		log.Info().Stringer("notify", n).Msg("play callback")
		if n == dispatch.Successful {
			ended <- n
		}
	})
	if offset > 0 {
		err = mgr.PlayFrom(key, offset)
	} else {
		err = mgr.Play(key, onPlay)
	}
	if err != nil {
		return err
	}

	select {
	case <-ended:
		log.Info().Msg("track ended before fadeout")
		_, err = mgr.Stop(key)
		return err
	case <-time.After(play):
	}

	if pos, err := mgr.Position(key); err == nil {
		log.Info().Dur("position", pos).Msg("fading out")
	}
	faded := make(chan dispatch.Notify, 1)
	ticks := p.Frames(fade)
	start := time.Now()
	if _, err := mgr.Fadeout(key, p, ticks, dispatch.CallbackFunc(func(n dispatch.Notify) {
		faded <- n
	})); err != nil {
		return err
	}
	n := <-faded
	log.Info().
		Stringer("notify", n).
		Int("ticks", ticks).
		Dur("took", time.Since(start)).
		Msg("fade callback")
	return nil
}
