// Command device-inventory locates network cameras across the active device, the local
// alias database, loans, the LAN and the loan service catalog.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

const appVersion = "0.4.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &environment{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	err := newApp(env).RunContext(ctx, os.Args)
	env.close(err)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(env *environment) *cli.App {
	return &cli.App{
		Name:    "device-inventory",
		Usage:   "Find, remember and activate network cameras",
		Version: appVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"DEVICE_INVENTORY_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "inventory",
				Usage:   "Location of the application data",
				EnvVars: []string{"DEVICE_INVENTORY_LOCATION"},
			},
			&cli.BoolFlag{
				Name:    "offline",
				Usage:   "Do not contact the loan service",
				EnvVars: []string{"DEVICE_INVENTORY_OFFLINE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level on stderr (trace, debug, info, warn, error)",
				EnvVars: []string{"DEVICE_INVENTORY_LOG_LEVEL"},
			},
		},
		Before: env.setup,
		Commands: []*cli.Command{
			listCommand(env),
			addCommand(env),
			removeCommand(env),
			loginCommand(env),
			importCommand(env),
			activateCommand(env),
			ensureCommand(env),
			adoptCommand(env),
			deactivateCommand(env),
			exportCommand(env),
			returnCommand(env),
			forEachCommand(env),
			checkCommand(env),
			dumpCommand(env),
			loadCommand(env),
		},
		Reader:    env.stdin,
		Writer:    env.stdout,
		ErrWriter: env.stderr,
	}
}

// prompt prints msg only when a person is typing the input
func prompt(env *environment, msg string) {
	if env.interactive() {
		fmt.Fprintln(env.stdout, msg)
	}
}

func readAll(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	return string(b), nil
}
