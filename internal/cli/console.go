package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/logrusorgru/aurora/v3"
	"github.com/spf13/cobra"
)

// console writes check results to the command's output and logs to its error stream.
type console struct {
	out    io.Writer
	au     aurora.Aurora
	logger *slog.Logger
}

func newConsole(cmd *cobra.Command, cfg *Config) *console {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	return &console{
		out:    cmd.OutOrStdout(),
		au:     aurora.NewAurora(cfg.Color),
		logger: slog.New(handler),
	}
}

func (c *console) verdict(pass bool) aurora.Value {
	if pass {
		return c.au.Green("PASS")
	}
	return c.au.Red("FAIL")
}

// report prints one check; detail is shown only for failures.
func (c *console) report(pass bool, subject, detail string) {
	fmt.Fprintf(c.out, "[%s] %s\n", c.verdict(pass), subject)
	if !pass && detail != "" {
		fmt.Fprintf(c.out, "%s\n\n", c.au.Faint(indent(detail, "    ")))
	}
}

func (c *console) summary(passed, total int) {
	verdict := c.verdict(passed == total)
	fmt.Fprintf(c.out, "%s %d of %d checks passed\n", c.au.Bold(verdict), passed, total)
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
