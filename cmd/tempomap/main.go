// Package main is the entry point for the tempomap command.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dshills/tempomap/internal/config"
	"github.com/dshills/tempomap/internal/engine"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// cli holds state shared by every subcommand.
type cli struct {
	configPath string
	logLevel   string

	// prefsPath is the preferences file actually loaded.
	prefsPath string

	log   *logrus.Logger
	store *config.Store
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	c := &cli{log: logrus.New()}

	root := &cobra.Command{
		Use:   "tempomap",
		Short: "Inspect and edit tempo map projects",
		Long: `tempomap reads tempo map project files, which anchor offsets in an
audio recording to musical positions, and edits or exports them without
opening the editor.`,
		Version:           fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return c.setup() },
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to preferences file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (overrides preferences)")

	root.AddCommand(
		c.infoCommand(),
		c.convertCommand(),
		c.signatureCommand(),
		c.scaleCommand(),
		c.deleteCommand(),
		c.exportMIDICommand(),
		c.configCommand(),
	)
	return root
}

// setup loads preferences and configures logging.
func (c *cli) setup() error {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	settings, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading preferences: %w", err)
	}
	if c.logLevel != "" {
		settings.Logging.Level = c.logLevel
		if err := settings.Validate(); err != nil {
			return err
		}
	}

	c.log.SetOutput(os.Stderr)
	c.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	c.log.SetLevel(settings.LogLevel())
	c.store = config.NewStore(settings, config.WithLogger(c.log))
	c.prefsPath = path

	c.log.WithField("path", path).Debug("preferences loaded")
	return nil
}

// open loads a project. The session reads tolerances and the undo limit
// from the store.
func (c *cli) open(path string) (*engine.Context, error) {
	return engine.Open(path, c.store, engine.WithLogger(c.log))
}
