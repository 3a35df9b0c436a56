// Package pattern provides the shared matchers used by guards: literal,
// glob, and regex patterns applied to free text and to path components.
//
// A pattern that fails to compile is replaced by an always-match pattern.
// A broken safety pattern must never silently disable a check, so the
// failure mode is a match (which triggers a block), not a pass.
package pattern

import (
	"path"
	"regexp"
	"strings"
)

// Kind classifies how a pattern string is interpreted.
type Kind int

const (
	KindLiteral Kind = iota
	KindGlob
	KindRegex
	// kindFailClosed marks a pattern that failed to compile and
	// therefore matches everything.
	kindFailClosed
)

// Pattern is a compiled matcher.
type Pattern struct {
	raw  string
	kind Kind
	re   *regexp.Regexp
}

// Compile builds a Pattern from its string form.
// Strings wrapped in slashes (/.../) compile as regexes, strings with
// glob metacharacters as globs, everything else as literals.
// Compile never fails: invalid input yields a fail-closed pattern.
func Compile(raw string) *Pattern {
	if len(raw) > 2 && strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/") {
		expr := raw[1 : len(raw)-1]
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return &Pattern{raw: raw, kind: kindFailClosed}
		}
		return &Pattern{raw: raw, kind: KindRegex, re: re}
	}

	if strings.ContainsAny(raw, "*?[") {
		// Validate glob syntax up front so Matches never has to report errors.
		if _, err := path.Match(raw, "probe"); err != nil {
			return &Pattern{raw: raw, kind: kindFailClosed}
		}
		return &Pattern{raw: raw, kind: KindGlob}
	}

	return &Pattern{raw: raw, kind: KindLiteral}
}

// CompileAll compiles each string in raw.
func CompileAll(raw []string) []*Pattern {
	out := make([]*Pattern, 0, len(raw))
	for _, r := range raw {
		out = append(out, Compile(r))
	}
	return out
}

// String returns the original pattern text.
func (p *Pattern) String() string { return p.raw }

// FailClosed reports whether the pattern failed to compile and now
// matches unconditionally.
func (p *Pattern) FailClosed() bool { return p.kind == kindFailClosed }

// Matches reports whether text matches the pattern.
// Literal patterns match case-insensitive substrings, glob patterns match
// the whole text, regex patterns use their compiled expression.
func (p *Pattern) Matches(text string) bool {
	switch p.kind {
	case KindLiteral:
		return strings.Contains(strings.ToLower(text), strings.ToLower(p.raw))
	case KindGlob:
		ok, _ := path.Match(strings.ToLower(p.raw), strings.ToLower(text))
		return ok
	case KindRegex:
		return p.re.MatchString(text)
	default:
		return true
	}
}

// MatchesPathComponent reports whether the pattern matches any whole
// segment of the given slash-separated path. Matching is anchored at
// segment boundaries: "build" matches "build/" and "a/build/file" but
// never "rebuild/file".
func (p *Pattern) MatchesPathComponent(pth string) bool {
	if p.kind == kindFailClosed {
		return true
	}
	for _, seg := range strings.Split(path.Clean(strings.ReplaceAll(pth, "\\", "/")), "/") {
		if seg == "" || seg == "." {
			continue
		}
		if p.matchesSegment(seg) {
			return true
		}
	}
	return false
}

// matchesSegment applies the pattern to exactly one path segment.
// Unlike Matches, literals here require whole-segment equality so that
// a sibling name containing the pattern as a substring cannot match.
func (p *Pattern) matchesSegment(seg string) bool {
	switch p.kind {
	case KindLiteral:
		return strings.EqualFold(seg, p.raw)
	case KindGlob:
		ok, _ := path.Match(strings.ToLower(p.raw), strings.ToLower(seg))
		return ok
	case KindRegex:
		loc := p.re.FindStringIndex(seg)
		return loc != nil && loc[0] == 0 && loc[1] == len(seg)
	default:
		return true
	}
}

// Set is an ordered collection of compiled patterns.
type Set struct {
	patterns []*Pattern
}

// NewSet compiles raw pattern strings into a Set.
func NewSet(raw ...string) *Set {
	return &Set{patterns: CompileAll(raw)}
}

// MatchAny returns the first pattern matching text, or nil.
func (s *Set) MatchAny(text string) *Pattern {
	for _, p := range s.patterns {
		if p.Matches(text) {
			return p
		}
	}
	return nil
}

// MatchAnyPathComponent returns the first pattern matching a whole
// segment of pth, or nil.
func (s *Set) MatchAnyPathComponent(pth string) *Pattern {
	for _, p := range s.patterns {
		if p.MatchesPathComponent(pth) {
			return p
		}
	}
	return nil
}

// Len returns the number of patterns in the set.
func (s *Set) Len() int { return len(s.patterns) }
