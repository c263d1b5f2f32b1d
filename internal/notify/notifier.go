// Package notify runs the user-configured side effects: pop-up
// notification commands, opening the hero page in a browser, and the
// session refresh command.
package notify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"godmon/internal/constants"
	"godmon/internal/logger"
	"godmon/pkg/metrics"
)

const commandTimeout = 10 * time.Second

// messagePlaceholder is replaced with the notification text inside the
// configured command line. The text is also exported as GODMON_MESSAGE
// for commands that prefer an environment variable.
const messagePlaceholder = "{message}"

// runner executes one shell command line. Swappable in tests.
type runner func(ctx context.Context, cmdline string, env []string) error

type Notifier struct {
	command        string
	quiet          bool
	browser        string
	refreshCommand string
	heroURL        string
	log            logger.Logger
	run            runner
	popup          func(message string) string
}

func New(command string, quiet bool, browser, refreshCommand, heroURL string, log logger.Logger) *Notifier {
	if browser == "" {
		browser = constants.DefaultBrowser
	}
	return &Notifier{
		command:        command,
		quiet:          quiet,
		browser:        browser,
		refreshCommand: refreshCommand,
		heroURL:        heroURL,
		log:            log,
		run:            runShell,
	}
}

// SetPopupSink routes notifications onto the dashboard's popup stack.
// Set once the screen exists; until then notifications only run the
// external command.
func (n *Notifier) SetPopupSink(popup func(message string) string) {
	n.popup = popup
}

// Notify raises the message as an on-screen popup and executes the
// notification command with the message substituted in. Quiet mode
// suppresses both.
func (n *Notifier) Notify(message string) error {
	if n.quiet {
		n.log.Debugw("notification suppressed", "message", message)
		return nil
	}
	metrics.NotificationsTotal.Inc()
	if n.popup != nil {
		n.popup(message)
	}
	return n.RunCommand(message)
}

// RunCommand executes just the external notification command. With no
// command configured, or in quiet mode, it is a no-op.
func (n *Notifier) RunCommand(message string) error {
	if n.quiet || n.command == "" {
		return nil
	}

	cmdline := strings.ReplaceAll(n.command, messagePlaceholder, message)
	env := append(os.Environ(), "GODMON_MESSAGE="+message)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := n.run(ctx, cmdline, env); err != nil {
		return fmt.Errorf("notification command failed: %w", err)
	}
	return nil
}

// OpenBrowser opens the hero page. The browser is started detached so a
// long-lived GUI process does not block the polling loop.
func (n *Notifier) OpenBrowser() error {
	n.log.Infow("opening browser", "browser", n.browser, "url", n.heroURL)
	cmd := exec.Command(n.browser, n.heroURL)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	go cmd.Wait()
	return nil
}

// RefreshSession runs the configured session refresh command.
func (n *Notifier) RefreshSession() error {
	if n.refreshCommand == "" {
		return fmt.Errorf("no session refresh command configured")
	}
	n.log.Infow("refreshing session", "command", n.refreshCommand)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := n.run(ctx, n.refreshCommand, os.Environ()); err != nil {
		return fmt.Errorf("session refresh failed: %w", err)
	}
	return nil
}

func runShell(ctx context.Context, cmdline string, env []string) error {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", cmdline)
	cmd.Env = env
	return cmd.Run()
}
