package main

import (
	"fmt"
	"math"

	"github.com/urfave/cli/v2"

	"deviceinventory/internal/domain"
	"deviceinventory/internal/filter"
	"deviceinventory/internal/service"
)

// filterFlags narrow down devices
func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "alias", Usage: "Alias `GLOB`, case-insensitive"},
		&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "Model `GLOB`, case-insensitive"},
		&cli.StringFlag{Name: "architecture", Aliases: []string{"a"}, Usage: "CPU architecture (aarch64, armv7hf, armv7l, mips)"},
		&cli.StringFlag{Name: "firmware", Usage: "Firmware version `RANGE`, e.g. \">=11.0, <12.0\"; a bare version such as 11.5 means ^11.5"},
		&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Loan service status (connected, on-loan)"},
	}
}

// queryFlags select and filter devices. Every command that picks devices shares them.
func queryFlags() []cli.Flag {
	return append(filterFlags(),
		&cli.StringSliceFlag{Name: "source", Usage: "Read only these sources (active, inventory, loan, discovered, catalog)"},
		&cli.BoolFlag{Name: "probe", Usage: "Ask each reachable device for its model, serial, architecture and firmware"},
	)
}

// buildQuery compiles the query flags. Filter errors are reported before any source is read.
func buildQuery(c *cli.Context, offline bool) (service.Query, error) {
	f, err := filter.Compile(filter.Criteria{
		Alias:        c.String("alias"),
		Model:        c.String("model"),
		Architecture: c.String("architecture"),
		Firmware:     c.String("firmware"),
		Status:       c.String("status"),
	})
	if err != nil {
		return service.Query{}, err
	}

	q := service.Query{Probe: c.Bool("probe"), Filter: f}
	if names := c.StringSlice("source"); len(names) > 0 {
		q.Explicit = true
		for _, name := range names {
			kind, err := domain.ParseSourceKind(name)
			if err != nil {
				return service.Query{}, err
			}
			q.Sources = append(q.Sources, kind)
		}
		return q, nil
	}

	if offline {
		q.Sources = []domain.SourceKind{domain.SourceActive, domain.SourceInventory}
	} else {
		q.Sources = domain.AllSources
	}
	return q, nil
}

// ensureSources are searched by ensure. LAN devices cannot be borrowed or activated without
// credentials, so they are left out.
func ensureSources(offline bool) []domain.SourceKind {
	if offline {
		return []domain.SourceKind{domain.SourceActive, domain.SourceInventory}
	}
	return []domain.SourceKind{domain.SourceActive, domain.SourceInventory, domain.SourceLoan, domain.SourceCatalog}
}

func destinationFlag(c *cli.Context) (string, error) {
	switch d := c.String("destination"); d {
	case "filesystem", "environment":
		return d, nil
	default:
		return "", fmt.Errorf("unknown destination %q (expected filesystem or environment)", d)
	}
}

func portFlag(c *cli.Context, name string) (uint16, error) {
	v := c.Uint(name)
	if v > math.MaxUint16 {
		return 0, fmt.Errorf("--%s: %d is not a port", name, v)
	}
	return uint16(v), nil
}

// hasCredentials accepts devices that can be activated
func hasCredentials(d *domain.Device) bool {
	_, ok := d.ActiveDevice()
	return ok
}

// isLoaned accepts devices on loan to the current user
func isLoaned(d *domain.Device) bool {
	_, ok := d.Loan()
	return ok
}
