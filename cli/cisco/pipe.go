package cisco

import "strings"

// pipeFilter is one `| include|exclude|grep|findstr <pattern>` clause.
type pipeFilter struct {
	exclude bool
	pattern string
}

// splitPipe separates a command line's base command from a trailing
// pipe filter clause, if present.
func splitPipe(line string) (command string, filter pipeFilter, ok bool) {
	idx := strings.Index(line, "|")
	if idx < 0 {
		return line, pipeFilter{}, false
	}
	command = line[:idx]
	rest := strings.Fields(line[idx+1:])
	if len(rest) < 2 {
		return command, pipeFilter{}, false
	}
	verb := strings.ToLower(rest[0])
	pattern := strings.Join(rest[1:], " ")
	switch verb {
	case "include", "grep", "findstr":
		return command, pipeFilter{exclude: false, pattern: pattern}, true
	case "exclude":
		return command, pipeFilter{exclude: true, pattern: pattern}, true
	default:
		return command, pipeFilter{}, false
	}
}

// applyFilter keeps (or, for exclude, drops) every line of out whose
// lowercase form contains the filter's lowercase pattern.
func applyFilter(out string, f pipeFilter) string {
	pattern := strings.ToLower(f.pattern)
	var kept []string
	for _, line := range strings.Split(out, "\n") {
		contains := strings.Contains(strings.ToLower(line), pattern)
		if contains != f.exclude {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
