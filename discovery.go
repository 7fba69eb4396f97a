package portbrain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/allbin/portbrain/channel"
	"github.com/allbin/portbrain/serial"
)

// Discovery defaults
const (
	DefaultProbeTimeout   = 300 * time.Millisecond
	DefaultCommandTimeout = 500 * time.Millisecond
)

// Lister returns the names of the ports worth probing
type Lister func() ([]string, error)

// ChannelFactory returns a closed channel able to open the named port
type ChannelFactory func(name string, logger *slog.Logger) *channel.Channel

// DiscoveryOption configures Discover
type DiscoveryOption func(*discoverer)

// WithMaxCount stops discovery after n devices (default 1)
func WithMaxCount(n int) DiscoveryOption {
	return func(d *discoverer) {
		if n > 0 {
			d.maxCount = n
		}
	}
}

// WithLister replaces serial.AvailablePorts as the source of candidates
func WithLister(l Lister) DiscoveryOption {
	return func(d *discoverer) {
		if l != nil {
			d.lister = l
		}
	}
}

// WithChannelFactory replaces the serial channel used for every candidate
func WithChannelFactory(f ChannelFactory) DiscoveryOption {
	return func(d *discoverer) {
		if f != nil {
			d.factory = f
		}
	}
}

// WithPortSettings sets the transport settings string (default
// DefaultPortSettings)
func WithPortSettings(s string) DiscoveryOption {
	return func(d *discoverer) {
		if s != "" {
			d.portSettings = s
		}
	}
}

// WithProbeTimeout sets the command timeout used while scanning
func WithProbeTimeout(t time.Duration) DiscoveryOption {
	return func(d *discoverer) {
		if t > 0 {
			d.probeTimeout = t
		}
	}
}

// WithCommandTimeout sets the command timeout of the returned channels
func WithCommandTimeout(t time.Duration) DiscoveryOption {
	return func(d *discoverer) {
		if t > 0 {
			d.commandTimeout = t
		}
	}
}

// WithConcurrency probes up to n ports at once (default 1)
func WithConcurrency(n int) DiscoveryOption {
	return func(d *discoverer) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithDiscoveryLogger sets the logger for probe results
func WithDiscoveryLogger(logger *slog.Logger) DiscoveryOption {
	return func(d *discoverer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

type discoverer struct {
	maxCount       int
	lister         Lister
	factory        ChannelFactory
	portSettings   string
	probeTimeout   time.Duration
	commandTimeout time.Duration
	concurrency    int
	logger         *slog.Logger
}

func newDiscoverer(opts []DiscoveryOption) *discoverer {
	d := &discoverer{
		maxCount:       1,
		lister:         serial.AvailablePorts,
		factory:        func(_ string, logger *slog.Logger) *channel.Channel { return serial.NewChannel(logger) },
		portSettings:   DefaultPortSettings,
		probeTimeout:   DefaultProbeTimeout,
		commandTimeout: DefaultCommandTimeout,
		concurrency:    1,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover scans the candidate ports for PortBrain controllers.
//
// Every candidate is opened, asked for its version and closed again; ports
// that cannot be opened or do not answer are skipped. The matches, in lister
// order and at most the configured max count, are then reopened with the
// command timeout and verified once more. The returned controllers own open
// channels; release them with CloseAll.
func Discover(ctx context.Context, opts ...DiscoveryOption) ([]*Controller, error) {
	d := newDiscoverer(opts)

	names, err := d.lister()
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}
	d.logger.Debug("searching for PortBrains", slog.Int("candidates", len(names)), slog.Int("max", d.maxCount))

	found, err := d.scan(ctx, names)
	if err != nil {
		return nil, err
	}

	var ctrls []*Controller
	for _, name := range found {
		if err := ctx.Err(); err != nil {
			CloseAll(ctrls)
			return nil, err
		}
		if ctrl := d.connect(name); ctrl != nil {
			ctrls = append(ctrls, ctrl)
		}
	}
	return ctrls, nil
}

// scan returns the names of responding ports in lister order
func (d *discoverer) scan(ctx context.Context, names []string) ([]string, error) {
	if d.concurrency <= 1 {
		var found []string
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if d.probe(name) {
				found = append(found, name)
				if len(found) >= d.maxCount {
					break
				}
			}
		}
		return found, nil
	}

	// Probes stop once the first maxCount hits in lister order are settled
	sctx, stop := context.WithCancel(ctx)
	defer stop()

	var mu sync.Mutex
	hits := make([]bool, len(names))
	done := make([]bool, len(names))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if sctx.Err() != nil {
				return nil
			}
			hit := d.probe(name)

			mu.Lock()
			defer mu.Unlock()
			hits[i], done[i] = hit, true
			if settled(hits, done, d.maxCount) {
				stop()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var found []string
	for i, hit := range hits {
		if hit {
			found = append(found, names[i])
			if len(found) >= d.maxCount {
				break
			}
		}
	}
	return found, nil
}

// settled reports whether the probed prefix of the candidates already holds
// limit hits
func settled(hits, done []bool, limit int) bool {
	n := 0
	for i := range done {
		if !done[i] {
			return false
		}
		if hits[i] {
			n++
			if n >= limit {
				return true
			}
		}
	}
	return false
}

func (d *discoverer) settings(name string, timeout time.Duration) channel.Settings {
	return channel.Settings{
		ReadTerminator:    Terminator,
		CmdTerminator:     Terminator,
		CmdTimeout:        timeout,
		TransportName:     name,
		TransportSettings: d.portSettings,
	}
}

// probe opens name, checks for a device and closes it again
func (d *discoverer) probe(name string) bool {
	d.logger.Debug("checking port for PortBrain", slog.String("port", name))

	ch := d.factory(name, d.logger)
	if err := ch.Open(d.settings(name, d.probeTimeout)); err != nil {
		d.logger.Debug("skipping port", slog.String("port", name), slog.Any("error", err))
		return false
	}
	defer ch.Close()

	ctrl := NewController(ch, WithLogger(d.logger))
	if !ctrl.CheckForDevice() {
		d.logger.Debug("no PortBrain on port", slog.String("port", name))
		return false
	}

	info := ctrl.DeviceInfo()
	d.logger.Debug("PortBrain found", slog.String("port", info.ChannelName), slog.String("version", info.Version))
	return true
}

// connect reopens a matched port for use and returns nil if the device no
// longer answers
func (d *discoverer) connect(name string) *Controller {
	ch := d.factory(name, d.logger)
	if err := ch.Open(d.settings(name, d.commandTimeout)); err != nil {
		d.logger.Warn("failed to reopen PortBrain port", slog.String("port", name), slog.Any("error", err))
		return nil
	}

	ctrl := NewController(ch, WithLogger(d.logger))
	if !ctrl.CheckForDevice() {
		d.logger.Warn("PortBrain stopped answering", slog.String("port", name))
		ch.Close()
		return nil
	}
	return ctrl
}

// CloseAll closes the channels of controllers returned by Discover
func CloseAll(ctrls []*Controller) error {
	var errs []error
	for _, c := range ctrls {
		if c == nil {
			continue
		}
		if closer, ok := c.ch.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", c.ch.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
