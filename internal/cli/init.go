package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/apiconf/internal/paths"
	"github.com/mesh-intelligence/apiconf/internal/sqlite"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize apiconf storage",
		Long:  "Create the configuration and data directories, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.storeConfig()
			if err != nil {
				return err
			}

			backend := sqlite.NewBackend()
			if err := backend.Attach(cfg); err != nil {
				return sysError(fmt.Errorf("initialize storage: %w", err))
			}
			if err := backend.Detach(); err != nil {
				return sysError(fmt.Errorf("finalize storage: %w", err))
			}

			a.logger.Debug("storage initialized", "data_dir", cfg.DataDir)
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized apiconf\nconfig: %s\ndata:   %s\n",
				paths.ConfigFile(a.configDir), cfg.DataDir)
			return nil
		},
	}
}
