package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"deviceinventory/internal/domain"
)

const archCommand = "uname -m"

// SSHChecker verifies that a device accepts its credentials over SSH
type SSHChecker struct {
	timeout time.Duration
	logger  *logrus.Logger
}

// SSHOption is a functional option for configuring SSHChecker
type SSHOption func(*SSHChecker)

// WithSSHTimeout bounds connecting, authenticating and running the check command
func WithSSHTimeout(d time.Duration) SSHOption {
	return func(c *SSHChecker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSSHLogger sets the logger
func WithSSHLogger(l *logrus.Logger) SSHOption {
	return func(c *SSHChecker) {
		c.logger = l
	}
}

// NewSSHChecker creates a checker with a 10 second timeout
func NewSSHChecker(opts ...SSHOption) *SSHChecker {
	c := &SSHChecker{
		timeout: 10 * time.Second,
		logger:  logrus.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check logs in to the device and returns the architecture its kernel reports.
// Host keys are not verified; devices are reinstalled too often for pinning to work.
func (c *SSHChecker) Check(ctx context.Context, d domain.ActiveDevice) (domain.Architecture, error) {
	if d.Username == "" {
		return "", ErrUnauthorized
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client, err := c.connect(ctx, d)
	if err != nil {
		return "", err
	}
	defer client.Close()

	out, err := runCommand(ctx, client, archCommand)
	if err != nil {
		return "", err
	}
	c.logger.Debugf("%s: %s returned %q", d.Host, archCommand, out)
	return parseMachine(out)
}

func (c *SSHChecker) connect(ctx context.Context, d domain.ActiveDevice) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User:            d.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(d.Password.Reveal())},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
		Timeout:         c.timeout,
	}
	addr := net.JoinHostPort(d.Host, strconv.Itoa(int(d.EffectiveSSH())))

	dialer := &net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		if strings.Contains(err.Error(), "unable to authenticate") {
			return nil, fmt.Errorf("%s: %w", addr, ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}

// runCommand executes cmd and returns its standard output
func runCommand(ctx context.Context, client *ssh.Client, cmd string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.Output(cmd)
		done <- result{out, err}
	}()

	select {
	case r := <-done:
		var exitErr *ssh.ExitError
		if errors.As(r.err, &exitErr) {
			return "", fmt.Errorf("%s exited with status %d", cmd, exitErr.ExitStatus())
		}
		if r.err != nil {
			return "", fmt.Errorf("%s failed: %w", cmd, r.err)
		}
		return string(r.out), nil
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("%s: %w", cmd, ctx.Err())
	}
}

// parseMachine maps kernel machine names to device architectures
func parseMachine(out string) (domain.Architecture, error) {
	machine := strings.TrimSpace(out)
	switch {
	case machine == "aarch64", machine == "arm64":
		return domain.ArchAarch64, nil
	case strings.HasPrefix(machine, "armv7"):
		return domain.ArchArmv7l, nil
	case strings.HasPrefix(machine, "mips"):
		return domain.ArchMips, nil
	}
	return "", fmt.Errorf("unknown machine %q", machine)
}
