package main

import (
	"fmt"

	"github.com/example/quicktoken/internal/doctor"
	"github.com/example/quicktoken/internal/encoding"
	"github.com/example/quicktoken/internal/vocab"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run local cache and vocabulary checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			cacheDir, err := resolveCacheDir(cfg.Cache.Dir)
			if err != nil {
				return err
			}

			tables := make([]doctor.Table, 0, len(encoding.Sources()))
			for _, src := range encoding.Sources() {
				tables = append(tables, doctor.Table{Name: src.Name, SHA256: src.SHA256})
			}

			result := doctor.Run(doctor.Config{
				CacheDir: cacheDir,
				Tables:   tables,
				Cached:   vocab.Cached,
				Offline:  cfg.Cache.Offline,
			}, cmd.OutOrStdout())

			if result.Failed() {
				return fmt.Errorf("doctor found %d problem(s)", len(result.Failures()))
			}
			return nil
		},
	}
}
