package guard

import "strings"

// splitSegments splits a shell command by the separators |, &&, ||, ;
// so each segment can be inspected in command position. Quoted spans
// are kept intact.
func splitSegments(cmd string) []string {
	var segments []string
	var current strings.Builder
	i := 0

	for i < len(cmd) {
		ch := cmd[i]
		switch ch {
		case '|':
			segments = append(segments, current.String())
			current.Reset()
			if i+1 < len(cmd) && cmd[i+1] == '|' {
				i++
			}
		case '&':
			if i+1 < len(cmd) && cmd[i+1] == '&' {
				segments = append(segments, current.String())
				current.Reset()
				i++
			} else {
				current.WriteByte(ch)
			}
		case ';':
			segments = append(segments, current.String())
			current.Reset()
		case '\'', '"':
			quote := ch
			current.WriteByte(ch)
			i++
			for i < len(cmd) && cmd[i] != quote {
				if cmd[i] == '\\' && i+1 < len(cmd) {
					current.WriteByte(cmd[i])
					i++
				}
				if i < len(cmd) {
					current.WriteByte(cmd[i])
					i++
				}
			}
			if i < len(cmd) {
				current.WriteByte(cmd[i])
			}
		default:
			current.WriteByte(ch)
		}
		i++
	}

	if current.Len() > 0 {
		segments = append(segments, current.String())
	}
	return segments
}

// fields returns the whitespace-separated tokens of one segment.
func fields(segment string) []string {
	return strings.Fields(strings.TrimSpace(segment))
}
