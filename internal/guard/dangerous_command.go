package guard

import (
	"strings"

	"github.com/avolkov/hookgate/internal/event"
)

// DangerousCommandName is the registry key of the dangerous-command guard.
const DangerousCommandName = "dangerous-command"

// destructiveCommands are substring indicators of commands that destroy
// data outright or touch credential material.
var destructiveCommands = []string{
	"rm -rf /",
	"rm -rf ~",
	"mkfs",
	"dd if=/dev/zero",
	"git push --force origin main",
	"git push --force origin master",
	"> ~/.ssh/authorized_keys",
	"~/.ssh/id_rsa",
	"~/.ssh/id_ed25519",
	"/etc/shadow",
}

// DangerousCommand blocks shell commands that are destructive regardless
// of where they run: recursive force-deletes of root or home, disk
// overwrites, credential file access, and download-pipe-to-shell
// execution.
type DangerousCommand struct{}

// NewDangerousCommand creates the guard.
func NewDangerousCommand() *DangerousCommand { return &DangerousCommand{} }

func (g *DangerousCommand) Name() string { return DangerousCommandName }

func (g *DangerousCommand) Check(ev *event.Event) Decision {
	if ev.Command == "" {
		return allow(DangerousCommandName)
	}
	lower := strings.ToLower(ev.Command)

	for _, pat := range destructiveCommands {
		if strings.Contains(lower, pat) {
			return block(DangerousCommandName,
				"destructive command: matched "+pat, "")
		}
	}

	if isPipeToShell(lower) {
		return block(DangerousCommandName,
			"pipe-to-shell execution detected",
			"download to a file, inspect it, then run it")
	}

	return allow(DangerousCommandName)
}

// isPipeToShell detects "curl ... | sh" style patterns. The shell may
// be wrapped (sudo bash, env bash) or path-qualified (/bin/sh), so
// every token of each pipe segment is checked, not just the head.
func isPipeToShell(cmd string) bool {
	if !strings.Contains(cmd, "|") {
		return false
	}
	hasDownloader := strings.Contains(cmd, "curl") || strings.Contains(cmd, "wget")
	if !hasDownloader {
		return false
	}

	parts := strings.Split(cmd, "|")
	for i := 1; i < len(parts); i++ {
		for _, tok := range strings.Fields(parts[i]) {
			if isShellName(tok) {
				return true
			}
		}
	}
	return false
}

func isShellName(tok string) bool {
	if idx := strings.LastIndexByte(tok, '/'); idx >= 0 {
		tok = tok[idx+1:]
	}
	switch tok {
	case "sh", "bash", "zsh", "fish":
		return true
	}
	return false
}
