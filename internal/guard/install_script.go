package guard

import (
	"path/filepath"
	"strings"

	"github.com/avolkov/hookgate/internal/event"
)

// InstallScriptName is the registry key of the install-script guard.
const InstallScriptName = "install-script"

// InstallScript blocks creation or modification of files that follow the
// installation-script naming convention, except the single designated
// entry point. The convention covers basenames starting with "install"
// and carrying a shell extension: install.sh, install-foo.sh,
// install_db.bash. Names where "install" is not the leading token
// (safe_install.sh) are not installation scripts.
type InstallScript struct {
	entryPoint string
}

// NewInstallScript creates the guard. entryPoint is the one basename
// allowed to exist, typically "install.sh".
func NewInstallScript(entryPoint string) *InstallScript {
	return &InstallScript{entryPoint: entryPoint}
}

func (g *InstallScript) Name() string { return InstallScriptName }

func (g *InstallScript) Check(ev *event.Event) Decision {
	if ev.FilePath == "" || !isWriteTool(ev.ToolName) {
		return allow(InstallScriptName)
	}

	base := filepath.Base(ev.FilePath)
	if !isInstallScriptName(base) {
		return allow(InstallScriptName)
	}
	if g.entryPoint != "" && strings.EqualFold(base, g.entryPoint) {
		return allow(InstallScriptName)
	}

	return block(InstallScriptName,
		"installation scripts other than the designated entry point are not allowed: "+base,
		"fold the change into "+g.entryPoint)
}

func isInstallScriptName(base string) bool {
	lower := strings.ToLower(base)
	if !strings.HasPrefix(lower, "install") {
		return false
	}
	switch filepath.Ext(lower) {
	case ".sh", ".bash", ".zsh":
		return true
	}
	return false
}

func isWriteTool(tool string) bool {
	switch strings.ToLower(tool) {
	case "write", "edit", "multiedit", "notebookedit":
		return true
	}
	return false
}
