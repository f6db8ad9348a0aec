package bgm

import "github.com/rs/zerolog"

type options struct {
	runtime   *Runtime
	log       zerolog.Logger
	queueSize int
}

// Option configures a Manager.
type Option func(*options)

// WithRuntime attaches the manager to rt instead of DefaultRuntime.
func WithRuntime(rt *Runtime) Option {
	return func(o *options) { o.runtime = rt }
}

// WithLogger sets the manager's logger. Managers are silent by default.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithQueueSize sets how many fade requests may wait for the worker.
func WithQueueSize(n int) Option {
	return func(o *options) { o.queueSize = n }
}

func buildOptions(opts []Option) options {
	o := options{
		log:       zerolog.Nop(),
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runtime == nil {
		o.runtime = DefaultRuntime()
	}
	return o
}
