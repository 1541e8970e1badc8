package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"deviceinventory/internal/adapter"
	"deviceinventory/internal/codec"
	"deviceinventory/internal/domain"
	"deviceinventory/internal/service"
)

func listCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List devices from every source",
		Flags: append(queryFlags(),
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table", Usage: "Output format (table, json, yaml, ansible-inventory)"},
		),
		Action: func(c *cli.Context) error {
			exporter, err := codec.ExporterFor(c.String("format"), !color.NoColor)
			if err != nil {
				return err
			}
			q, err := buildQuery(c, env.cfg.Offline)
			if err != nil {
				return err
			}
			devices, err := env.finder.Find(c.Context, q)
			if err != nil {
				return err
			}
			return exporter.Export(devices, env.stdout)
		},
	}
}

func addCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a device to the inventory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "alias", Required: true, Usage: "Alias unique within the inventory"},
			&cli.StringFlag{Name: "host", Required: true, Usage: "IP address or hostname of the device"},
			&cli.StringFlag{Name: "user", Usage: "Username of an administrator on the device, or root"},
			&cli.StringFlag{Name: "pass", Usage: "Password of that user", EnvVars: []string{"DEVICE_INVENTORY_PASS"}},
			&cli.UintFlag{Name: "http-port", Usage: "HTTP port, if different from 80"},
			&cli.UintFlag{Name: "https-port", Usage: "HTTPS port, if different from 443"},
			&cli.UintFlag{Name: "ssh-port", Usage: "SSH port, if different from 22"},
			&cli.StringFlag{Name: "model", Usage: "Model to show until the device is probed"},
			&cli.BoolFlag{Name: "force", Usage: "Replace an existing entry with the same alias"},
		},
		Action: func(c *cli.Context) error {
			d := domain.InventoryDevice{
				Host: c.String("host"),
				Credentials: domain.Credentials{
					Username: c.String("user"),
					Password: domain.Password(c.String("pass")),
				},
				Model: c.String("model"),
			}
			var err error
			if d.HTTP, err = portFlag(c, "http-port"); err != nil {
				return err
			}
			if d.HTTPS, err = portFlag(c, "https-port"); err != nil {
				return err
			}
			if d.SSH, err = portFlag(c, "ssh-port"); err != nil {
				return err
			}
			return env.inventory.Add(c.Context, c.String("alias"), d, c.Bool("force"))
		},
	}
}

func removeCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "remove",
		Usage: "Remove devices from the inventory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "alias", Required: true, Usage: "Alias `GLOB` of the devices to remove"},
		},
		Action: func(c *cli.Context) error {
			removed, err := env.inventory.Remove(c.Context, c.String("alias"))
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				env.logger.Warnf("No device matches %q", c.String("alias"))
				return nil
			}
			for _, alias := range removed {
				env.logger.Infof("Removed %s", alias)
			}
			return nil
		},
	}
}

func loginCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Store a loan service session and import loaned devices",
		Action: func(c *cli.Context) error {
			prompt(env, "Paste the session cookie:")
			cookie, err := readAll(env.stdin)
			if err != nil {
				return err
			}
			cookie = strings.TrimSpace(cookie)
			if cookie == "" {
				return errors.New("no session cookie given")
			}
			if err := env.repo.WriteCookie(c.Context, cookie); err != nil {
				return err
			}
			if env.cfg.Offline {
				env.logger.Info("Offline, skipping import")
				return nil
			}
			_, err = env.inventory.Import(c.Context)
			return err
		},
	}
}

func importCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Replace loaned devices in the inventory with the current loans",
		Action: func(c *cli.Context) error {
			devices, err := env.inventory.Import(c.Context)
			if err != nil {
				return err
			}
			var aliases []string
			for alias, d := range devices {
				if d.LoanID != 0 {
					aliases = append(aliases, alias)
				}
			}
			sort.Strings(aliases)
			printLines(env, aliases)
			return nil
		},
	}
}

func activateCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "activate",
		Usage: "Make the preferred matching device the active device",
		Flags: append(queryFlags(),
			&cli.StringFlag{Name: "destination", Value: "filesystem", Usage: "Where to store the active device (filesystem, environment)"},
		),
		Action: func(c *cli.Context) error {
			destination, err := destinationFlag(c)
			if err != nil {
				return err
			}
			q, err := buildQuery(c, env.cfg.Offline)
			if err != nil {
				return err
			}
			d, err := env.finder.FindOne(c.Context, q, hasCredentials)
			if err != nil {
				return err
			}
			if destination == "environment" {
				a, _ := d.ActiveDevice()
				printLines(env, adapter.ExportLines(a))
				return nil
			}
			_, err = env.inventory.Activate(d)
			return err
		},
	}
}

func ensureCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "ensure",
		Usage: "Activate a matching device, borrowing one if none is at hand",
		Flags: append(filterFlags(),
			&cli.StringFlag{Name: "destination", Value: "filesystem", Usage: "Where to store the active device (filesystem, environment)"},
		),
		Action: func(c *cli.Context) error {
			destination, err := destinationFlag(c)
			if err != nil {
				return err
			}
			q, err := buildQuery(c, env.cfg.Offline)
			if err != nil {
				return err
			}
			q.Sources = ensureSources(env.cfg.Offline)

			d, err := env.finder.FindOne(c.Context, q, service.Ensurable)
			if err != nil {
				return err
			}
			a, active, err := env.inventory.Acquire(c.Context, d)
			if err != nil {
				return err
			}
			if active {
				env.logger.Infof("%s is already active", d.Fingerprint())
				return nil
			}
			return activate(env, a, destination)
		},
	}
}

func adoptCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "adopt",
		Usage: "Import loaned devices, then export the preferred matching device",
		Flags: append(filterFlags(),
			&cli.StringFlag{Name: "destination", Value: "environment", Usage: "Where to store the active device (filesystem, environment)"},
		),
		Action: func(c *cli.Context) error {
			destination, err := destinationFlag(c)
			if err != nil {
				return err
			}
			q, err := buildQuery(c, env.cfg.Offline)
			if err != nil {
				return err
			}
			if env.cfg.Offline {
				env.logger.Info("Offline, skipping import")
			} else if _, err := env.inventory.Import(c.Context); err != nil {
				return err
			}
			q.Sources = []domain.SourceKind{domain.SourceInventory}

			d, err := env.finder.FindOne(c.Context, q, hasCredentials)
			if err != nil {
				return err
			}
			a, _ := d.ActiveDevice()
			return activate(env, a, destination)
		},
	}
}

// activate writes a to the active device file or prints the shell lines that export it
func activate(env *environment, a domain.ActiveDevice, destination string) error {
	if destination == "environment" {
		printLines(env, adapter.ExportLines(a))
		return nil
	}
	return env.inventory.Use(a)
}

func deactivateCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "deactivate",
		Usage: "Deactivate any active device; run the printed commands to clear the environment",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Only report what would be cleared"},
		},
		Action: func(c *cli.Context) error {
			envActive, err := env.inventory.Deactivate(c.Bool("dry-run"))
			if err != nil {
				return err
			}
			if envActive {
				printLines(env, adapter.UnsetLines())
			}
			return nil
		},
	}
}

func exportCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Print shell commands that make the preferred matching device active",
		Flags: queryFlags(),
		Action: func(c *cli.Context) error {
			q, err := buildQuery(c, env.cfg.Offline)
			if err != nil {
				return err
			}
			d, err := env.finder.FindOne(c.Context, q, hasCredentials)
			if err != nil {
				return err
			}
			a, _ := d.ActiveDevice()
			printLines(env, adapter.ExportLines(a))
			return nil
		},
	}
}

func returnCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "return",
		Usage: "Cancel the loan of the preferred matching device and forget it",
		Flags: queryFlags(),
		Action: func(c *cli.Context) error {
			if env.loans == nil {
				return service.ErrOffline
			}
			q, err := buildQuery(c, env.cfg.Offline)
			if err != nil {
				return err
			}
			d, err := env.finder.FindOne(c.Context, q, isLoaned)
			if err != nil {
				return err
			}
			envActive, err := env.inventory.Return(c.Context, d)
			if err != nil {
				return err
			}
			if envActive {
				printLines(env, adapter.UnsetLines())
			}
			return nil
		},
	}
}

func forEachCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:      "for-each",
		Usage:     "Run a program once per matching device with AXIS_DEVICE_* set",
		ArgsUsage: "PROGRAM [ARGUMENTS...]",
		Flags:     queryFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("no program given")
			}
			q, err := buildQuery(c, env.cfg.Offline)
			if err != nil {
				return err
			}
			devices, err := env.finder.Find(c.Context, q)
			if err != nil {
				return err
			}

			program, args := c.Args().First(), c.Args().Tail()
			for _, d := range devices {
				a, ok := d.ActiveDevice()
				if !ok {
					env.logger.Debugf("Skipping %s: no credentials", d.Fingerprint())
					continue
				}
				cmd := exec.CommandContext(c.Context, program, args...)
				cmd.Env = append(os.Environ(), adapter.Environ(a)...)
				cmd.Stdin = env.stdin
				cmd.Stdout = env.stdout
				cmd.Stderr = env.stderr
				if err := cmd.Run(); err != nil {
					return fmt.Errorf("%s failed for device %s: %w", program, d.Fingerprint(), err)
				}
			}
			return nil
		},
	}
}

func checkCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Log in to each matching device over SSH",
		Flags: append(queryFlags(),
			&cli.DurationFlag{Name: "timeout", Value: 10 * time.Second, Usage: "Give up on a device after `DURATION`"},
		),
		Action: func(c *cli.Context) error {
			q, err := buildQuery(c, env.cfg.Offline)
			if err != nil {
				return err
			}
			devices, err := env.finder.Find(c.Context, q)
			if err != nil {
				return err
			}

			checker := adapter.NewSSHChecker(
				adapter.WithSSHTimeout(c.Duration("timeout")),
				adapter.WithSSHLogger(env.logger),
			)
			ok, failed := color.New(color.FgGreen), color.New(color.FgRed)
			var failures int
			for _, d := range devices {
				a, contactable := d.ActiveDevice()
				if !contactable {
					continue
				}
				arch, err := checker.Check(c.Context, a)
				if err != nil {
					failures++
					failed.Fprintf(env.stdout, "%s\t%v\n", d.Fingerprint(), err)
					continue
				}
				ok.Fprintf(env.stdout, "%s\t%s\n", d.Fingerprint(), arch)
			}
			if failures > 0 {
				return fmt.Errorf("%d devices failed the SSH check", failures)
			}
			return nil
		},
	}
}

// inventoryExporter writes inventory snapshots
type inventoryExporter interface {
	ExportInventory(devices map[string]domain.InventoryDevice, w io.Writer) error
}

func dumpCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Print the inventory, including passwords",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format (json, yaml)"},
		},
		Action: func(c *cli.Context) error {
			var exporter inventoryExporter
			switch c.String("format") {
			case "json":
				exporter = codec.NewJSONCodec()
			case "yaml":
				exporter = codec.NewYAMLCodec()
			default:
				return fmt.Errorf("unknown inventory format %q (expected json or yaml)", c.String("format"))
			}
			devices, err := env.inventory.Snapshot(c.Context)
			if err != nil {
				return err
			}
			return exporter.ExportInventory(devices, env.stdout)
		},
	}
}

func loadCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "load",
		Usage: "Replace the inventory with a snapshot read from stdin",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Input format (json, yaml, ansible-inventory)"},
		},
		Action: func(c *cli.Context) error {
			importer, err := codec.ImporterFor(c.String("format"))
			if err != nil {
				return err
			}
			prompt(env, "Enter the inventory content, then end input:")
			devices, err := importer.Parse(env.stdin)
			if err != nil {
				return err
			}
			if err := env.inventory.Restore(c.Context, devices); err != nil {
				return err
			}
			env.logger.Infof("Loaded %d devices", len(devices))
			return nil
		},
	}
}

func printLines(env *environment, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(env.stdout, l)
	}
}
