package pattern

import "testing"

func TestPathComponentAnchoring(t *testing.T) {
	// Regression: "build" once matched "rebuild/" as a substring and
	// blocked edits in a sibling directory.
	p := Compile("build")

	tests := []struct {
		path string
		want bool
	}{
		{"build/", true},
		{"build", true},
		{"a/build/file", true},
		{"rebuild/file", false},
		{"a/rebuild/file", false},
		{"buildx/file", false},
		{"a/b/c", false},
		{"BUILD/out", true},
	}

	for _, tt := range tests {
		if got := p.MatchesPathComponent(tt.path); got != tt.want {
			t.Errorf("MatchesPathComponent(build, %q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestGlobPatterns(t *testing.T) {
	p := Compile("*_test.go")

	if !p.MatchesPathComponent("internal/foo/bar_test.go") {
		t.Error("glob should match test file segment")
	}
	if p.MatchesPathComponent("internal/foo/bar.go") {
		t.Error("glob should not match non-test file")
	}
	if !p.Matches("bar_test.go") {
		t.Error("glob should match whole text")
	}
}

func TestRegexPatterns(t *testing.T) {
	p := Compile(`/install-\w+\.sh/`)

	if !p.Matches("install-foo.sh") {
		t.Error("regex should match")
	}
	if p.Matches("setup.sh") {
		t.Error("regex should not match")
	}
	if !p.MatchesPathComponent("scripts/install-db.sh") {
		t.Error("regex should match whole segment")
	}
	if p.MatchesPathComponent("scripts/preinstall-db.sh.bak") {
		t.Error("regex segment match must be anchored")
	}
}

func TestLiteralMatchesSubstring(t *testing.T) {
	p := Compile("--no-verify")

	if !p.Matches("git commit --no-verify -m x") {
		t.Error("literal should match substring of free text")
	}
	if p.Matches("git commit -m x") {
		t.Error("literal should not match absent text")
	}
}

func TestInvalidPatternFailsClosed(t *testing.T) {
	// A broken safety pattern must block, not silently pass.
	for _, raw := range []string{`/([unclosed/`, `[bad-glob`} {
		p := Compile(raw)
		if !p.FailClosed() {
			t.Errorf("Compile(%q) should fail closed", raw)
		}
		if !p.Matches("anything at all") {
			t.Errorf("fail-closed pattern %q must match all text", raw)
		}
		if !p.MatchesPathComponent("any/path") {
			t.Errorf("fail-closed pattern %q must match all paths", raw)
		}
	}
}

func TestSetMatchAny(t *testing.T) {
	s := NewSet("--no-verify", "SKIP_TESTS")

	if p := s.MatchAny("SKIP_TESTS=1 make"); p == nil || p.String() != "SKIP_TESTS" {
		t.Errorf("expected SKIP_TESTS match, got %v", p)
	}
	if p := s.MatchAny("make test"); p != nil {
		t.Errorf("expected no match, got %v", p)
	}
}
