package main

import (
	"fmt"
	"io"

	"github.com/dgnsrekt/bolo/internal/cache"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show synthesized audio cache statistics",
	Long:  paragraph(fmt.Sprintf("\n%s how much synthesized audio is cached on disk.", keyword("Show"))),
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, err := cacheDir()
		if err != nil {
			return err
		}
		c, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close() //nolint:errcheck

		return printCacheStats(cmd.OutOrStdout(), dir, c.Stats())
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached audio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close() //nolint:errcheck

		freed := c.Stats()[cache.LevelDisk].Size
		if err := c.Clear(); err != nil {
			return fmt.Errorf("unable to clear cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s of cached audio\n", humanize.Bytes(uint64(max(freed, 0)))) //nolint:errcheck,gosec
		return nil
	},
}

func printCacheStats(w io.Writer, dir string, stats map[cache.Level]cache.Stats) error {
	if _, err := fmt.Fprintf(w, "%s %s\n", keyword("Directory"), dir); err != nil {
		return fmt.Errorf("unable to write to writer: %w", err)
	}

	for _, level := range []cache.Level{cache.LevelMemory, cache.LevelDisk} {
		s, ok := stats[level]
		if !ok {
			continue
		}
		line := fmt.Sprintf("%-6s %d items, %s of %s",
			level,
			s.Items,
			humanize.Bytes(uint64(max(s.Size, 0))),     //nolint:gosec
			humanize.Bytes(uint64(max(s.Capacity, 0))), //nolint:gosec
		)
		if !s.LastAccess.IsZero() {
			line += faint(", last used " + humanize.Time(s.LastAccess))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("unable to write to writer: %w", err)
		}
	}
	return nil
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}
