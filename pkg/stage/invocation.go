// Package stage runs one external benchmark stage.
//
// A stage is described by an Invocation: the command to spawn, its ordered
// arguments, an optional file capturing its standard output and an optional
// artifact path that, when already present on disk, makes the stage a no-op.
//
// The skip policy is based on path presence only. Content, timestamps and the
// configuration that produced the artifact are never inspected, so a partial
// artifact left by a failed run suppresses recomputation until it is removed.
package stage

import "strings"

// Invocation describes one external process to run.
type Invocation struct {
	// Name identifies the stage in logs and reports.
	Name    string
	Command string
	Args    []string
	// Capture receives the process standard output, truncated first. Empty means no capture.
	Capture string
	// SkipIfExists skips the stage when this path exists. Empty means always run.
	SkipIfExists string
}

// CommandLine renders the invocation as a shell-like string, for logs and dry runs.
func (inv *Invocation) CommandLine() string {
	parts := append([]string{inv.Command}, inv.Args...)
	line := strings.Join(parts, " ")
	if inv.Capture != "" {
		line += " > " + inv.Capture
	}

	return line
}

// Arg returns the value following the given flag, if any.
func (inv *Invocation) Arg(flag string) (string, bool) {
	for i := 0; i < len(inv.Args)-1; i++ {
		if inv.Args[i] == flag {
			return inv.Args[i+1], true
		}
	}

	return "", false
}
