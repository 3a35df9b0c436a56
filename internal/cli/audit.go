package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avolkov/hookgate/internal/audit"
	"github.com/avolkov/hookgate/internal/config"
)

var (
	tailLines   int
	statsDBPath string
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTailCmd)
	auditCmd.AddCommand(auditStatsCmd)
	auditCmd.AddCommand(auditWatchCmd)
	auditTailCmd.Flags().IntVarP(&tailLines, "lines", "n", 10, "Number of recent records to show")
	auditStatsCmd.Flags().StringVar(&statsDBPath, "db", ":memory:", "SQLite index path (default: in-memory)")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log operations",
	Long:  "Commands for verifying and analyzing the hash-chained audit log.",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Verify hash chain integrity of the audit log",
	Long: "Walks the JSONL audit log and validates that every record's prev_hash\n" +
		"matches the SHA-256 of the previous line. Exits 0 if valid, 1 if tampered.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAuditVerify,
}

var auditTailCmd = &cobra.Command{
	Use:   "tail [path]",
	Short: "Show recent audit records",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuditTail,
}

var auditStatsCmd = &cobra.Command{
	Use:   "stats [path]",
	Short: "Summarize decisions and repeated violations",
	Long: "Loads the audit log into a SQLite index and reports decision totals,\n" +
		"blocks per guard, and tools blocked repeatedly.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAuditStats,
}

var auditWatchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Stream new audit records as they are appended",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuditWatch,
}

// auditLogPath resolves the log path from an optional positional arg,
// falling back to the configured location.
func auditLogPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	if cfg.AuditLog != "" {
		return cfg.AuditLog, nil
	}
	return audit.DefaultPath(), nil
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	path, err := auditLogPath(args)
	if err != nil {
		return err
	}
	result := audit.Verify(path)
	if result.Valid {
		fmt.Printf("OK: %d records verified\n", result.Lines)
		return nil
	}
	fmt.Fprintf(os.Stderr, "FAILED at line %d: %s\n", result.ErrorLine, result.Error)
	os.Exit(1)
	return nil
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	path, err := auditLogPath(args)
	if err != nil {
		return err
	}
	records, err := audit.ReadAll(path)
	if err != nil {
		return err
	}
	if len(records) > tailLines {
		records = records[len(records)-tailLines:]
	}
	for _, rec := range records {
		printRecord(rec)
	}
	return nil
}

func runAuditStats(cmd *cobra.Command, args []string) error {
	path, err := auditLogPath(args)
	if err != nil {
		return err
	}

	ix, err := audit.OpenIndex(statsDBPath)
	if err != nil {
		return err
	}
	defer ix.Close()

	n, err := ix.Load(path)
	if err != nil {
		return err
	}
	stats, err := ix.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Records: %d (allow %d, block %d, override %d)\n",
		n, stats.Allowed, stats.Blocked, stats.Overridden)
	if len(stats.BlocksByGuard) > 0 {
		fmt.Println("Blocks by guard:")
		for _, gc := range stats.BlocksByGuard {
			fmt.Printf("  %-20s %d\n", gc.Guard, gc.Count)
		}
	}
	if len(stats.RepeatTools) > 0 {
		fmt.Println("Repeatedly blocked tools:")
		for _, gc := range stats.RepeatTools {
			fmt.Printf("  %-20s %d\n", gc.Guard, gc.Count)
		}
	}
	return nil
}

func runAuditWatch(cmd *cobra.Command, args []string) error {
	path, err := auditLogPath(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Fprintf(os.Stderr, "watching %s (Ctrl+C to stop)\n", path)
	err = audit.Watch(ctx, path, printRecord)
	if err == context.Canceled {
		return nil
	}
	return err
}

func printRecord(rec audit.Record) {
	detail := rec.Event.Command
	if detail == "" {
		detail = rec.Event.FilePath
	}
	line := fmt.Sprintf("%s  %-8s  %-12s  %s",
		rec.Timestamp, strings.ToUpper(rec.Decision()), rec.Event.Tool, detail)
	if len(rec.Reasons) > 0 {
		line += "  [" + strings.Join(rec.Reasons, "; ") + "]"
	}
	fmt.Println(line)
}
