package dispatchers

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"
)

// Builder creates a Dispatcher from a config entry.
type Builder func(ctx context.Context, cfg DispatcherConfig, log Logger) (Dispatcher, error)

// Builders maps a dispatcher type to the builder for it.
type Builders map[string]Builder

// DefaultBuilders knows every dispatcher type this package ships.
func DefaultBuilders() Builders {
	return Builders{
		TypeSMS:   newSMSDispatcher,
		TypeQueue: newQueueDispatcher,
		TypeHTTP:  newHTTPDispatcher,
	}
}

// Build instantiates one dispatcher per config. Each client is built once and
// reused for every send. On failure the dispatchers built so far are closed.
func (b Builders) Build(ctx context.Context, cfgs []DispatcherConfig, log Logger) ([]Dispatcher, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	log = ensureLogger(log)

	out := make([]Dispatcher, 0, len(cfgs))
	for _, cfg := range cfgs {
		d, err := b.build(ctx, cfg, log)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("build dispatcher %q: %w", cfg.ID, err), CloseAll(out))
		}
		out = append(out, d)
	}
	return out, nil
}

func (b Builders) build(ctx context.Context, cfg DispatcherConfig, log Logger) (Dispatcher, error) {
	typ := lowerTrim(cfg.Type)
	if typ == "" {
		return nil, fmt.Errorf("dispatcher %q has no type configured", cfg.ID)
	}
	builder := b[typ]
	if builder == nil {
		return nil, fmt.Errorf("no dispatcher registered for type %q", cfg.Type)
	}
	return builder(ctx, cfg, log)
}

// CloseAll releases dispatchers that hold long-lived clients.
func CloseAll(ds []Dispatcher) error {
	var err error
	for _, d := range ds {
		if c, ok := d.(io.Closer); ok {
			if cerr := c.Close(); cerr != nil {
				err = multierr.Append(err, fmt.Errorf("close dispatcher %q: %w", d.ID(), cerr))
			}
		}
	}
	return err
}
