package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"deviceinventory/internal/adapter"
	"deviceinventory/internal/config"
	"deviceinventory/internal/logging"
	"deviceinventory/internal/repository"
	"deviceinventory/internal/repository/sqlite"
	"deviceinventory/internal/service"
)

// environment holds what every command is wired to. It is built once per invocation.
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg       *config.Config
	log       *logging.Handle
	logger    *logrus.Logger
	repo      repository.Repository
	active    *adapter.ActiveStore
	loans     service.LoanService // nil when offline
	finder    *service.Finder
	inventory *service.InventoryService
}

func (e *environment) setup(c *cli.Context) error {
	if c.NArg() == 0 || c.Args().First() == "help" {
		return nil
	}

	cfg, path, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("inventory") {
		cfg.DataDir = c.String("inventory")
	}
	if c.Bool("offline") {
		cfg.Offline = true
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	e.cfg = cfg

	h, err := logging.Open(cfg.Log.Level)
	if err != nil {
		return err
	}
	e.log = h
	e.logger = h.Logger
	if path != "" {
		e.logger.Debugf("Loaded config from %s", path)
	}
	e.logger.Debug(cfg.Summary())

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data dir %s: %w", cfg.DataDir, err)
	}
	repo, err := sqlite.New(cfg.DatabasePath())
	if err != nil {
		return err
	}
	e.repo = repo
	e.active = adapter.NewActiveStore(cfg.ActiveDevicePath())

	lan, err := newDiscoverer(cfg, e.logger)
	if err != nil {
		return err
	}
	sources := service.Sources{
		Active:    e.active,
		Inventory: repo,
		LAN:       lan,
	}
	if !cfg.Offline {
		e.loans = adapter.NewLoanClient(cfg.Loan.BaseURL, repo,
			adapter.WithGateway(cfg.Loan.Gateway),
			adapter.WithLoanTimeout(cfg.Loan.Timeout.Duration()),
			adapter.WithLoanLogger(e.logger),
		)
		sources.Loans = e.loans
	}

	prober := adapter.NewVapixProber(adapter.WithVapixLogger(e.logger))
	enricher := service.NewEnricher(prober, cfg.Probe.Timeout.Duration(), cfg.Probe.Concurrency, e.logger)
	e.finder = service.NewFinder(sources, enricher, e.logger)
	e.inventory = service.NewInventoryService(repo, e.active, e.loans, e.logger)
	return nil
}

func (e *environment) close(cmdErr error) {
	if e.repo != nil {
		if err := e.repo.Close(); err != nil && e.logger != nil {
			e.logger.Warnf("Failed to close database: %v", err)
		}
	}
	if e.log != nil {
		e.log.Close(cmdErr)
	}
}

// interactive reports whether stdin is a terminal
func (e *environment) interactive() bool {
	f, ok := e.stdin.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func newDiscoverer(cfg *config.Config, logger *logrus.Logger) (service.LANDiscoverer, error) {
	timeout := cfg.Discovery.Timeout.Duration()
	if cfg.Discovery.Method == config.DiscoveryNmap {
		opts := []adapter.NmapOption{
			adapter.WithTimeout(timeout),
			adapter.WithVendor("axis"),
			adapter.WithSkipHostDiscovery(cfg.Discovery.SkipHostDiscovery),
			adapter.WithNmapLogger(logger),
		}
		if ports := cfg.Discovery.Ports; ports != "" {
			if _, err := adapter.ParsePortRange(ports); err != nil {
				return nil, fmt.Errorf("discovery ports %q: %w", ports, err)
			}
			opts = append(opts, adapter.WithPortRange(ports))
		}
		return adapter.NewNmapDiscoverer(cfg.Discovery.Targets, opts...), nil
	}
	return adapter.NewMDNSDiscoverer(cfg.Discovery.Services,
		adapter.WithMDNSTimeout(timeout),
		adapter.WithMDNSInterface(cfg.Discovery.Interface),
		adapter.WithMDNSLogger(logger),
	), nil
}
