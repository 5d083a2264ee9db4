// Package collector runs every probe once and assembles the results into a
// single report.
package collector

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/K0NGR3SS/triagekit/internal/hashing"
	"github.com/K0NGR3SS/triagekit/internal/metrics"
	"github.com/K0NGR3SS/triagekit/internal/models"
	"github.com/K0NGR3SS/triagekit/internal/probe"
	"github.com/K0NGR3SS/triagekit/internal/ui"
	"github.com/pterm/pterm"
)

// CloudIdentifier looks up the cloud instance the host runs on.
type CloudIdentifier interface {
	InstanceIdentity(ctx context.Context) (*models.CloudIdentity, error)
}

type Options struct {
	ConnectionLimit int
	ProcessLimit    int
	SecurityNotes   []string
	// HashFile is hashed with MD5 and SHA256 when set.
	HashFile string
}

type Collector struct {
	Prober  *probe.Prober
	Cloud   CloudIdentifier
	Metrics *metrics.Recorder
	Logger  *pterm.Logger
	Clock   func() time.Time
}

func New(p *probe.Prober, logger *pterm.Logger) *Collector {
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled).WithWriter(io.Discard)
	}
	return &Collector{Prober: p, Logger: logger, Clock: time.Now}
}

// Collect runs the probes one after another. It cannot fail: every probe
// degrades to a placeholder value and a hashing failure is recorded in the
// report's hashes.error field.
func (c *Collector) Collect(ctx context.Context, opts Options, spinner *pterm.SpinnerPrinter) *models.Report {
	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}
	r := &models.Report{Timestamp: clock()}

	r.Host = observe(c, spinner, "host", func() probe.Result[models.HostInfo] {
		return c.Prober.HostIdentity(ctx)
	})
	if c.Cloud != nil {
		r.Host.Cloud = c.cloudIdentity(ctx, spinner)
	}

	r.Network.Interfaces = observe(c, spinner, "interfaces", func() probe.Result[[]models.NetworkInterfaceRecord] {
		return c.Prober.NetworkInterfaces(ctx)
	})
	r.Network.Routes = observe(c, spinner, "routes", func() probe.Result[string] {
		return c.Prober.RoutingTable(ctx)
	})
	r.Network.DNS = observe(c, spinner, "dns", func() probe.Result[string] {
		return c.Prober.DNSConfiguration(ctx)
	})
	r.Network.Connections = observe(c, spinner, "connections", func() probe.Result[[]models.ConnectionRecord] {
		return c.Prober.ConnectionsSnapshot(ctx, opts.ConnectionLimit)
	})
	r.Processes = observe(c, spinner, "processes", func() probe.Result[[]models.ProcessRecord] {
		return c.Prober.TopProcesses(ctx, opts.ProcessLimit)
	})

	r.SecurityNotes = append([]string{}, opts.SecurityNotes...)

	if opts.HashFile != "" {
		r.Hashes = observe(c, spinner, "hashes", func() probe.Result[*models.HashResult] {
			return hashTarget(opts.HashFile)
		})
	}

	c.Metrics.ObserveReport(r.Timestamp, len(r.Network.Connections), len(r.Processes))
	return r
}

func observe[T any](c *Collector, spinner *pterm.SpinnerPrinter, name string, fn func() probe.Result[T]) T {
	ui.UpdateSpinner(spinner, "Collecting "+name+"...")
	start := time.Now()
	res := fn()
	took := time.Since(start)

	c.Metrics.ObserveProbe(name, took, res.Degraded())
	if res.Degraded() {
		c.Logger.Warn("probe degraded", c.Logger.Args("probe", name, "reason", res.Reason))
	} else {
		c.Logger.Debug("probe finished", c.Logger.Args("probe", name, "took", took.String()))
	}
	return res.Value
}

func hashTarget(path string) probe.Result[*models.HashResult] {
	sums, err := hashing.SumAll(path, hashing.MD5, hashing.SHA256)
	if err != nil {
		return probe.Degraded(&models.HashResult{Error: err.Error()}, err.Error())
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return probe.Ok(&models.HashResult{
		File:   abs,
		MD5:    sums[hashing.MD5],
		SHA256: sums[hashing.SHA256],
	})
}

func (c *Collector) cloudIdentity(ctx context.Context, spinner *pterm.SpinnerPrinter) *models.CloudIdentity {
	ui.UpdateSpinner(spinner, "Querying instance metadata...")
	start := time.Now()
	id, err := c.Cloud.InstanceIdentity(ctx)
	c.Metrics.ObserveProbe("cloud", time.Since(start), err != nil)
	if err != nil {
		c.Logger.Warn("cloud identity unavailable", c.Logger.Args("error", err.Error()))
		return nil
	}
	return id
}
