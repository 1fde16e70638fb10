// Package stacktrace trims goroutine stack dumps to this module's frames.
package stacktrace

import "strings"

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" locations found
// in a raw stack trace such as the output of runtime/debug.Stack.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)

	for _, line := range lines {
		line = strings.TrimSpace(line)

		_, rest, found := strings.Cut(line, "/internal/")
		if !found {
			continue
		}

		idx := strings.Index(rest, ".go:")
		if idx == -1 {
			continue
		}

		loc, _, _ := strings.Cut(rest, " ")
		paths = append(paths, "internal/"+loc)
	}

	return paths
}
