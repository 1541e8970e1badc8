package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"deviceinventory/internal/domain"
)

// Enricher probes devices concurrently and merges what they report into a table
type Enricher struct {
	prober      Prober
	timeout     time.Duration
	concurrency int
	logger      *logrus.Logger
}

// NewEnricher creates an enricher. A concurrency of zero means one probe per device at once.
func NewEnricher(prober Prober, timeout time.Duration, concurrency int, logger *logrus.Logger) *Enricher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Enricher{
		prober:      prober,
		timeout:     timeout,
		concurrency: concurrency,
		logger:      logger,
	}
}

type probeOutcome struct {
	target domain.ProbeTarget
	result *domain.ProbeResult
	err    error
}

// Enrich probes every device missing architecture or firmware that has a known port.
// Probe failures only leave the device unenriched; a conflict between what a device
// reports and what another source claims is returned.
func (e *Enricher) Enrich(ctx context.Context, table *domain.Table) error {
	var targets []domain.ProbeTarget
	for _, d := range table.Devices() {
		target, ok := d.ProbeTarget()
		if !d.NeedsProbe() || !ok {
			if err := table.SetProbeState(d.Fingerprint(), domain.ProbeFinal); err != nil {
				return err
			}
			continue
		}
		if err := table.SetProbeState(d.Fingerprint(), domain.ProbeProbing); err != nil {
			return err
		}
		targets = append(targets, target)
	}
	if len(targets) == 0 {
		return nil
	}

	e.logger.Debugf("Probing %d devices", len(targets))
	outcomes := make([]probeOutcome, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}
	for i, target := range targets {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, e.timeout)
			defer cancel()
			result, err := e.prober.Probe(pctx, target)
			outcomes[i] = probeOutcome{target: target, result: result, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, o := range outcomes {
		fp := o.target.Fingerprint
		if o.err != nil {
			e.logger.Warnf("Could not probe %s: %v", fp, o.err)
			if err := table.SetProbeState(fp, domain.ProbeFailed); err != nil {
				return err
			}
			continue
		}
		if o.result == nil {
			if err := table.SetProbeState(fp, domain.ProbeFailed); err != nil {
				return err
			}
			continue
		}
		if err := table.Enrich(fp, *o.result); err != nil {
			return err
		}
		e.logger.WithFields(logrus.Fields{
			"fingerprint":  fp,
			"model":        o.result.Model,
			"architecture": o.result.Architecture,
		}).Debug("Probed device")
	}
	return nil
}
