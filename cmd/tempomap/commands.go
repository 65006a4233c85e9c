package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dshills/tempomap/internal/config"
	"github.com/dshills/tempomap/internal/config/notify"
	"github.com/dshills/tempomap/internal/engine"
	"github.com/dshills/tempomap/internal/engine/point"
)

func (c *cli) infoCommand() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "info <project>",
		Short: "Show the timing points and time signatures of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := c.open(args[0])
			if err != nil {
				return err
			}
			defer ctx.Close()

			out := cmd.OutOrStdout()
			if asYAML {
				return ctx.Document().WriteYAML(out)
			}

			tl := ctx.Timeline()
			fmt.Fprintf(out, "audio: %s\n", ctx.AudioPath())
			if m, err := ctx.LastMeasure(); err == nil {
				fmt.Fprintf(out, "measures: %d\n", m+1)
			}
			for _, seg := range tl.Segments() {
				fmt.Fprintf(out, "signature %s from measure %d\n", seg.TimeSignature, seg.Measure)
			}
			for i, p := range tl.Points() {
				fmt.Fprintf(out, "%3d  %10.4fs  %9.4f  %-5s %8.3f BPM\n",
					i, p.Offset, p.Pos(), p.TimeSignature, p.BPM())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print a YAML document")
	return cmd
}

func (c *cli) convertCommand() *cobra.Command {
	var toPosition bool

	cmd := &cobra.Command{
		Use:   "convert <project> <value>",
		Short: "Convert a music position to seconds, or seconds to a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}
			ctx, err := c.open(args[0])
			if err != nil {
				return err
			}
			defer ctx.Close()

			tl := ctx.Timeline()
			if toPosition {
				fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(tl.TimeToPosition(v), 'f', -1, 64))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(tl.PositionToTime(v), 'f', -1, 64))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&toPosition, "to-position", "p", false, "Treat the value as seconds")
	return cmd
}

func (c *cli) signatureCommand() *cobra.Command {
	var (
		shift       bool
		preserveBPM bool
		output      string
	)

	cmd := &cobra.Command{
		Use:   "signature <project> <measure> <num/denom>",
		Short: "Set the time signature from a measure onward",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			measure, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid measure %q: %w", args[1], err)
			}
			ts, err := parseSignature(args[2])
			if err != nil {
				return err
			}

			next := c.store.Settings()
			if cmd.Flags().Changed("shift") {
				next.Signature.MoveSubsequentPoints = shift
			}
			if cmd.Flags().Changed("preserve-bpm") {
				next.Signature.PreserveBPM = preserveBPM
			}
			if err := c.store.Update(next, "flags"); err != nil {
				return err
			}

			ctx, err := c.open(args[0])
			if err != nil {
				return err
			}
			defer ctx.Close()

			if err := ctx.Timeline().SetTimeSignature(ts, measure); err != nil {
				return err
			}
			return save(ctx, output)
		},
	}
	cmd.Flags().BoolVar(&shift, "shift", false, "Keep later points the same number of beats away")
	cmd.Flags().BoolVar(&preserveBPM, "preserve-bpm", false, "Keep the beat rate of the last point")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of the project")
	return cmd
}

func (c *cli) scaleCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "scale <project> <first> <last> <factor>",
		Short: "Multiply the tempo of a range of timing points",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err1 := strconv.Atoi(args[1])
			last, err2 := strconv.Atoi(args[2])
			factor, err3 := strconv.ParseFloat(args[3], 64)
			if err1 != nil || err2 != nil || err3 != nil {
				return fmt.Errorf("usage: %s", cmd.Use)
			}

			ctx, err := c.open(args[0])
			if err != nil {
				return err
			}
			defer ctx.Close()

			sel := ctx.Selection()
			if !sel.SelectRange(first, last) {
				return fmt.Errorf("no timing points in range %d..%d", first, last)
			}
			if err := sel.ScaleTempo(factor); err != nil {
				return err
			}
			return save(ctx, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of the project")
	return cmd
}

func (c *cli) deleteCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "delete <project> <first> <last>",
		Short: "Remove a range of timing points",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err1 := strconv.Atoi(args[1])
			last, err2 := strconv.Atoi(args[2])
			if err1 != nil || err2 != nil {
				return fmt.Errorf("usage: %s", cmd.Use)
			}

			ctx, err := c.open(args[0])
			if err != nil {
				return err
			}
			defer ctx.Close()

			sel := ctx.Selection()
			if !sel.SelectRange(first, last) {
				return fmt.Errorf("no timing points in range %d..%d", first, last)
			}
			removed, err := sel.Delete()
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("timing points %d..%d were not removed", first, last)
			}
			return save(ctx, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of the project")
	return cmd
}

func (c *cli) exportMIDICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export-midi <project> <file.mid>",
		Short: "Write the tempo map as a Standard MIDI File",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := c.open(args[0])
			if err != nil {
				return err
			}
			defer ctx.Close()

			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if _, err := ctx.ExportMIDI(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			c.log.WithField("path", args[1]).Info("tempo map exported")
			return nil
		},
	}
}

func (c *cli) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize preferences",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := c.store.Settings().Encode()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the default preferences file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Reload preferences as the file changes and print each change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return c.watchPreferences(ctx, cmd.OutOrStdout())
		},
	})
	return cmd
}

// watchPreferences reloads the preferences file into the store until ctx
// is done, printing every changed setting to out.
func (c *cli) watchPreferences(ctx context.Context, out io.Writer) error {
	var mu sync.Mutex
	sub := c.store.Notifier().Subscribe(func(ch notify.Change) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "%s: %v -> %v\n", ch.Path, ch.OldValue, ch.NewValue)
	})
	defer sub.Unsubscribe()

	level := c.store.Notifier().SubscribePath("logging.level", func(notify.Change) {
		c.log.SetLevel(c.store.Settings().LogLevel())
	})
	defer level.Unsubscribe()

	w, err := config.WatchFile(c.store, c.prefsPath)
	if err != nil {
		return fmt.Errorf("watching %s: %w", c.prefsPath, err)
	}
	defer w.Stop()

	c.log.WithField("path", c.prefsPath).Info("watching preferences")
	<-ctx.Done()
	return nil
}

// save writes the project to output, or back to where it was opened from.
func save(ctx *engine.Context, output string) error {
	if output != "" {
		return ctx.SaveAs(output)
	}
	return ctx.SaveFile()
}

// parseSignature parses "num/denom".
func parseSignature(s string) (point.TimeSignature, error) {
	num, denom, ok := strings.Cut(s, "/")
	if !ok {
		return point.TimeSignature{}, fmt.Errorf("invalid time signature %q, want num/denom", s)
	}
	n, err1 := strconv.ParseUint(num, 10, 32)
	d, err2 := strconv.ParseUint(denom, 10, 32)
	if err1 != nil || err2 != nil {
		return point.TimeSignature{}, fmt.Errorf("invalid time signature %q, want num/denom", s)
	}
	ts := point.NewTimeSignature(uint32(n), uint32(d))
	if !ts.IsValid() {
		return point.TimeSignature{}, fmt.Errorf("invalid time signature %q", s)
	}
	return ts, nil
}
