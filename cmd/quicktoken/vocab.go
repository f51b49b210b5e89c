package main

import (
	"context"
	"fmt"

	"github.com/example/quicktoken/internal/encoding"
	"github.com/example/quicktoken/internal/vocab"
	"github.com/spf13/cobra"
)

func newVocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Vocabulary table acquisition and verification commands",
	}

	cmd.AddCommand(newVocabFetchCmd())
	cmd.AddCommand(newVocabVerifyCmd())
	return cmd
}

func newVocabFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [encoding]",
		Short: "Prefetch vocabulary tables into the local cache",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			cacheDir, err := resolveCacheDir(cfg.Cache.Dir)
			if err != nil {
				return err
			}

			sources, err := selectSources(args)
			if err != nil {
				return err
			}

			for _, src := range sources {
				ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Cache.FetchTimeout)
				path, err := vocab.Fetch(ctx, vocab.FetchOptions{
					URL:      src.URL,
					SHA256:   src.SHA256,
					CacheDir: cacheDir,
					Offline:  cfg.Cache.Offline,
				})
				cancel()
				if err != nil {
					return fmt.Errorf("fetch %s: %w", src.Name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cached %s -> %s\n", src.Name, path)
			}
			return nil
		},
	}
}

func newVocabVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [encoding]",
		Short: "Verify cached vocabulary tables against their pinned checksums",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			cacheDir, err := resolveCacheDir(cfg.Cache.Dir)
			if err != nil {
				return err
			}

			sources, err := selectSources(args)
			if err != nil {
				return err
			}

			missing := 0
			for _, src := range sources {
				path, ok := vocab.Cached(cacheDir, src.SHA256)
				if !ok {
					missing++
					fmt.Fprintf(cmd.OutOrStdout(), "MISSING %s (%s)\n", src.Name, path)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK %s (%s)\n", src.Name, path)
			}
			if missing > 0 {
				return fmt.Errorf("%d table(s) missing or failed verification", missing)
			}
			return nil
		},
	}
}

func selectSources(args []string) ([]encoding.Source, error) {
	sources := encoding.Sources()
	if len(args) == 0 {
		return sources, nil
	}
	for _, src := range sources {
		if src.Name == args[0] {
			return []encoding.Source{src}, nil
		}
	}
	return nil, fmt.Errorf("unknown encoding %q (supported: %v)", args[0], encoding.Names())
}

func resolveCacheDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	dir, err := vocab.DefaultCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return dir, nil
}
