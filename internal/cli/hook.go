package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/avolkov/hookgate/internal/config"
	"github.com/avolkov/hookgate/internal/engine"
	"github.com/avolkov/hookgate/internal/event"
)

// Exit codes of the hook command. The triple is load-bearing for the
// host: 1 means "the check itself failed", not "the action is blocked".
const (
	ExitAllow = 0
	ExitError = 1
	ExitBlock = 2
)

// OverrideEnv is the out-of-band channel carrying a candidate override
// code. It is read here, once, and threaded through explicitly; the
// engine never inspects the process environment and never parses codes
// out of the event's own fields.
const OverrideEnv = "HOOKGATE_OVERRIDE"

func init() {
	rootCmd.AddCommand(hookCmd)
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Evaluate one hook payload from stdin (the interception entry point)",
	Long: "Reads a single PreToolUse JSON payload from stdin, runs it through\n" +
		"every enabled guard, records the decision in the audit log, and exits:\n" +
		"  0  allowed\n" +
		"  1  the check itself failed (malformed payload, engine error)\n" +
		"  2  blocked (reasons on stderr)\n" +
		"Wire it as: hookgate hook < payload.json",
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runHook(os.Stdin, os.Stderr, os.Getenv(OverrideEnv)))
	},
}

// runHook is the adapter body, separated from cobra for testability.
// It returns the process exit code.
func runHook(stdin io.Reader, stderr io.Writer, overrideCode string) int {
	ev, err := event.Parse(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "hookgate: %v\n", err)
		return ExitError
	}

	cfg, hash, err := config.LoadWithHash(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "hookgate: %v\n", err)
		return ExitError
	}
	if cfg.Root == "" {
		cfg.Root = ev.WorkingDir
	}

	logger := newLogger()
	defer logger.Sync()

	eng, err := engine.New(engine.Options{
		Config:     cfg,
		ConfigHash: hash,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "hookgate: %v\n", err)
		return ExitError
	}
	defer eng.Close()

	v := eng.Evaluate(ev, overrideCode)

	if v.Blocked {
		for _, reason := range v.Reasons {
			fmt.Fprintf(stderr, "hookgate: BLOCKED: %s\n", reason)
		}
		for _, d := range v.Decisions {
			if d.Blocked && d.Suggestion != "" {
				fmt.Fprintf(stderr, "hookgate: hint: %s\n", d.Suggestion)
			}
		}
		fmt.Fprintf(stderr, "hookgate: to override, set %s to a valid code (hookgate override create)\n", OverrideEnv)
		return ExitBlock
	}

	if v.Overridden {
		fmt.Fprintf(stderr, "hookgate: allowed via override (code consumed)\n")
	}
	return ExitAllow
}
