package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/avolkov/hookgate/internal/config"
	"github.com/avolkov/hookgate/internal/engine"
	"github.com/avolkov/hookgate/internal/event"
	"github.com/avolkov/hookgate/internal/verdict"
)

var (
	checkTool     string
	checkCommand  string
	checkFilePath string
	checkFormat   string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkTool, "tool", "Bash", "Tool name for the simulated event")
	checkCmd.Flags().StringVar(&checkCommand, "command", "", "Command text to evaluate")
	checkCmd.Flags().StringVar(&checkFilePath, "file", "", "File path to evaluate")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Dry-run an event through the guards",
	Long: "Builds an event from flags, evaluates every enabled guard, and prints\n" +
		"the verdict. No audit record is written and no override is consumed.\n" +
		"Exit code 0 if allowed, 2 if it would block.",
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkCommand == "" && checkFilePath == "" {
		return fmt.Errorf("one of --command or --file is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cwd, _ := os.Getwd()
	if cfg.Root == "" {
		cfg.Root = cwd
	}

	registry, err := engine.BuildRegistry(cfg)
	if err != nil {
		return err
	}

	ev := &event.Event{
		ToolName:   checkTool,
		Command:    checkCommand,
		FilePath:   checkFilePath,
		WorkingDir: cwd,
		Timestamp:  time.Now().UTC(),
	}

	v := verdict.Aggregate(registry.Evaluate(ev), false)

	switch checkFormat {
	case "json":
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		if v.Blocked {
			fmt.Println("verdict: BLOCK")
			for _, r := range v.Reasons {
				fmt.Println("  " + r)
			}
		} else {
			fmt.Println("verdict: ALLOW")
		}
	}

	if v.Blocked {
		os.Exit(ExitBlock)
	}
	return nil
}
