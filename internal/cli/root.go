// Package cli implements the muse terminal front end. Each invocation
// hydrates the studio from storage, applies one command and writes any
// persisted change back.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/muse/internal/app"
	"github.com/MrSnakeDoc/muse/internal/config"
	"github.com/MrSnakeDoc/muse/internal/logger"
	"github.com/MrSnakeDoc/muse/internal/studio"
	"github.com/MrSnakeDoc/muse/internal/version"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// Options controls how the command tree is built.
type Options struct {
	Out io.Writer
	Err io.Writer
	// NewApp builds the application for one invocation. quiet lowers the
	// default log level for interactive commands.
	NewApp func(quiet bool) (*app.App, error)
}

type cli struct {
	opts   Options
	app    *app.App
	format string
}

// NewRootCommand builds the full command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.NewApp == nil {
		opts.NewApp = defaultApp
	}
	c := &cli{opts: opts}

	root := &cobra.Command{
		Use:           "muse",
		Short:         "Creative writing and illustration studio",
		Long:          "Muse writes stories, draws pictures and sparks ideas with generative AI providers, keeping a bounded history and favorites.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.format != formatText && c.format != formatJSON {
				return fmt.Errorf("unknown format %q, use text or json", c.format)
			}
			a, err := c.opts.NewApp(cmd.Name() != "serve")
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	root.PersistentFlags().StringVarP(&c.format, "format", "f", formatText, "Output format: text or json")

	root.AddCommand(
		c.serveCmd(),
		c.writeCmd(),
		c.drawCmd(),
		c.inspireCmd(),
		c.historyCmd(),
		c.favCmd(),
		c.setCmd(),
		c.stateCmd(),
		c.exportCmd(),
		c.doctorCmd(),
	)
	return root
}

func defaultApp(quiet bool) (*app.App, error) {
	cfg := config.Load()
	level := cfg.LogLevel
	if quiet && os.Getenv("MUSE_LOG_LEVEL") == "" {
		level = "warn"
	}
	return app.New(cfg, logger.New(logger.Options{Level: level, Pretty: cfg.PrettyLog}))
}

func (c *cli) studio(cmd *cobra.Command) (*studio.Studio, error) {
	return c.app.Studio(cmd.Context())
}

func (c *cli) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.opts.Out, format, args...)
}
