package notify

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/julianstephens/sundown/internal/constants"
	"github.com/julianstephens/sundown/internal/errors"
	"github.com/julianstephens/sundown/internal/logger"
)

// Template placeholders substituted per argument after splitting
const (
	PlaceholderTitle     = "{title}"
	PlaceholderMessage   = "{message}"
	PlaceholderTimeoutS  = "{timeout_s}"
	PlaceholderTimeoutMs = "{timeout_ms}"
)

var runCommandFunc = func(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// DefaultCommand returns the popup command template for the current OS
func DefaultCommand() string {
	return defaultCommandFor(runtime.GOOS)
}

func defaultCommandFor(goos string) string {
	switch goos {
	case "darwin":
		return `osascript -e "display dialog \"{message}\" with title \"{title}\" buttons {\"OK\"} giving up after {timeout_s}"`
	case "windows":
		return `msg * /TIME:{timeout_s} "{title}: {message}"`
	default:
		return `notify-send --expire-time={timeout_ms} {title} {message}`
	}
}

// Desktop shows popups by running an external command. Every popup runs on
// its own goroutine and is killed once its timeout plus a grace period
// elapses.
type Desktop struct {
	template []string
}

// NewDesktop parses a command template. An empty template selects the OS
// default.
func NewDesktop(template string) (*Desktop, error) {
	if strings.TrimSpace(template) == "" {
		template = DefaultCommand()
	}
	args, err := shellquote.Split(template)
	if err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "invalid notify command"), "check the quoting in notify_command")
	}
	if len(args) == 0 {
		return nil, errors.New("notify command is empty")
	}
	return &Desktop{template: args}, nil
}

func (d *Desktop) Show(title, message string, timeout time.Duration) {
	args := d.expand(title, message, timeout)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout+constants.NotifyGracePeriod)
		defer cancel()

		if err := runCommandFunc(ctx, args[0], args[1:]...); err != nil && ctx.Err() == nil {
			logger.Warn("Failed to show popup", "command", args[0], "title", title, "error", err)
		}
	}()
}

// Program is the executable each popup runs
func (d *Desktop) Program() string {
	return d.template[0]
}

func (d *Desktop) expand(title, message string, timeout time.Duration) []string {
	replacer := strings.NewReplacer(
		PlaceholderTitle, title,
		PlaceholderMessage, message,
		PlaceholderTimeoutS, strconv.Itoa(int(timeout/time.Second)),
		PlaceholderTimeoutMs, strconv.FormatInt(timeout.Milliseconds(), 10),
	)
	args := make([]string, len(d.template))
	for i, arg := range d.template {
		args[i] = replacer.Replace(arg)
	}
	return args
}
