package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moveflow/internal/driver"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the disk cache of gathered bodies",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "dir [target]",
		Short: "Print the cache directory used for target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, _, err := cacheFor(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cache.Dir())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clean [target]",
		Short: "Remove every cached payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, s, err := cacheFor(cmd, args)
			if err != nil {
				return err
			}
			n, err := cache.Clear()
			if err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			if !s.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached fixtures from %s\n", n, cache.Dir())
			}
			return nil
		},
	})
	return cmd
}

// cacheFor resolves the cache the way check and gather would for target,
// regardless of [cache] enabled.
func cacheFor(cmd *cobra.Command, args []string) (*driver.DiskCache, *settings, error) {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	s, err := loadSettings(cmd, target, cmd.OutOrStdout())
	if err != nil {
		return nil, nil, err
	}
	cache, err := s.openCache()
	if err != nil {
		return nil, nil, err
	}
	return cache, s, nil
}
