package guard

import (
	"path/filepath"
	"strings"

	"github.com/avolkov/hookgate/internal/event"
)

// PathBoundaryName is the registry key of the path-boundary guard.
const PathBoundaryName = "path-boundary"

// PathBoundary blocks directory-changing commands and file operations
// that would leave the project root or its allowlisted directories.
type PathBoundary struct {
	root       string
	allowPaths []string
}

// NewPathBoundary creates the guard. Root is the project root; allow
// lists additional absolute directories the agent may enter.
func NewPathBoundary(root string, allow []string) *PathBoundary {
	cleaned := make([]string, 0, len(allow))
	for _, a := range allow {
		cleaned = append(cleaned, filepath.Clean(a))
	}
	return &PathBoundary{root: filepath.Clean(root), allowPaths: cleaned}
}

func (g *PathBoundary) Name() string { return PathBoundaryName }

// Check inspects cd targets in shell commands and the file_path of file
// tools. Targets are resolved against the event's working directory.
func (g *PathBoundary) Check(ev *event.Event) Decision {
	if ev.Command != "" {
		for _, seg := range splitSegments(ev.Command) {
			toks := fields(seg)
			if len(toks) < 2 || toks[0] != "cd" {
				continue
			}
			target := cdTarget(toks[1:])
			if target == "" {
				continue
			}
			if g.escapes(target, ev.WorkingDir) {
				return block(PathBoundaryName,
					"cd target leaves the project root: "+target,
					"stay inside the project, or add the directory to allow_paths")
			}
		}
	}

	if ev.FilePath != "" && g.escapes(ev.FilePath, ev.WorkingDir) {
		return block(PathBoundaryName,
			"path is outside the project root: "+ev.FilePath,
			"use a path inside the project, or add the directory to allow_paths")
	}

	return allow(PathBoundaryName)
}

// cdTarget picks the directory argument out of cd's tokens, skipping
// option flags like -P or --. A bare "-" is the previous directory,
// not a flag, and is returned as-is.
func cdTarget(toks []string) string {
	for _, tok := range toks {
		t := strings.Trim(tok, `"'`)
		if len(t) > 1 && strings.HasPrefix(t, "-") {
			continue
		}
		return t
	}
	return ""
}

// escapes reports whether target resolves outside the root and every
// allowlisted directory.
func (g *PathBoundary) escapes(target, cwd string) bool {
	if target == "" || target == "-" {
		return false
	}

	resolved := target
	if !filepath.IsAbs(resolved) {
		base := cwd
		if base == "" {
			base = g.root
		}
		resolved = filepath.Join(base, resolved)
	}
	resolved = filepath.Clean(resolved)

	if within(resolved, g.root) {
		return false
	}
	for _, a := range g.allowPaths {
		if within(resolved, a) {
			return false
		}
	}
	return true
}

// within reports whether path is dir or sits under it.
func within(path, dir string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
