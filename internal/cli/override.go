package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/avolkov/hookgate/internal/config"
	"github.com/avolkov/hookgate/internal/override"
)

var (
	ovReason   string
	ovDuration time.Duration
)

func init() {
	rootCmd.AddCommand(overrideCmd)
	overrideCmd.AddCommand(overrideCreateCmd)
	overrideCmd.AddCommand(overrideListCmd)
	overrideCmd.AddCommand(overrideRevokeCmd)
	overrideCmd.AddCommand(overrideCleanupCmd)
	overrideCreateCmd.Flags().StringVar(&ovReason, "reason", "", "Mandatory reason for the override (required)")
	overrideCreateCmd.Flags().DurationVar(&ovDuration, "duration", override.DefaultDuration, "Code validity period (max 1h)")
}

var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Manage single-use override codes",
	Long: "Override codes convert one blocked verdict into an allowed one.\n" +
		"A code is valid only while unexpired, unconsumed, and unrevoked;\n" +
		"consumption is atomic even across concurrent evaluations.",
}

var overrideCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue a new override code",
	RunE:  runOverrideCreate,
}

var overrideListCmd = &cobra.Command{
	Use:   "list",
	Short: "List override codes",
	RunE:  runOverrideList,
}

var overrideRevokeCmd = &cobra.Command{
	Use:   "revoke [code]",
	Short: "Revoke an override code",
	Args:  cobra.ExactArgs(1),
	RunE:  runOverrideRevoke,
}

var overrideCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired and consumed codes",
	RunE:  runOverrideCleanup,
}

func openStore() (*override.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	dir := cfg.OverrideDir
	if dir == "" {
		dir = override.DefaultDir()
	}
	return override.NewStore(dir)
}

func runOverrideCreate(cmd *cobra.Command, args []string) error {
	if ovReason == "" {
		return fmt.Errorf("--reason is required")
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	code, err := store.Create(ovReason, ovDuration)
	if err != nil {
		return err
	}

	fmt.Printf("Override code issued: %s\n", code.ID)
	fmt.Printf("Reason:  %s\n", code.Reason)
	fmt.Printf("Expires: %s\n", code.ExpiresAt.Format(time.RFC3339))
	fmt.Println()
	fmt.Printf("The code covers ONE blocked event, then it is gone.\n")
	fmt.Printf("Use it by exporting %s=%s before the action runs.\n", OverrideEnv, code.ID)
	return nil
}

func runOverrideList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	codes, err := store.List()
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		fmt.Println("No override codes.")
		return nil
	}

	fmt.Printf("%-22s %-8s %-30s %-25s\n", "CODE", "STATUS", "REASON", "EXPIRES")
	for _, c := range codes {
		status := "active"
		switch {
		case c.UsedAt != nil:
			status = "used"
		case c.RevokedAt != nil:
			status = "revoked"
		case !c.Active():
			status = "expired"
		}
		fmt.Printf("%-22s %-8s %-30s %-25s\n",
			c.ID, status, c.Reason, c.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func runOverrideRevoke(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Revoke(args[0]); err != nil {
		return err
	}
	fmt.Printf("Revoked %s\n", args[0])
	return nil
}

func runOverrideCleanup(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	return store.Cleanup()
}
