package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avolkov/hookgate/internal/config"
	"github.com/avolkov/hookgate/internal/engine"
)

func init() {
	rootCmd.AddCommand(guardsCmd)
}

var guardsCmd = &cobra.Command{
	Use:   "guards",
	Short: "List registered guards and their state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		registry, err := engine.BuildRegistry(cfg)
		if err != nil {
			return err
		}

		fmt.Printf("%-20s %s\n", "GUARD", "STATE")
		for _, name := range registry.Names() {
			state := "enabled"
			if !registry.Enabled(name) {
				state = "disabled"
			}
			fmt.Printf("%-20s %s\n", name, state)
		}
		return nil
	},
}
