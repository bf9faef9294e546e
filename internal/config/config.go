// Package config resolves CLI flags plus the two environment
// overrides the toolchain honours, following the teacher's own
// environment-driven build metadata pattern (BuildDate/GitCommit read
// with os.Getenv in its CLI entry point) rather than a flags library.
package config

import (
	"os"
	"strings"
)

// DebugTarget selects which IR --debug/CATASTROPHIC_DEBUG dumps.
type DebugTarget string

const (
	DebugNone DebugTarget = ""
	DebugAST  DebugTarget = "ast"
	DebugHIR  DebugTarget = "hir"
	DebugMIR  DebugTarget = "mir"
)

// Options carries the resolved configuration shared by both driver
// binaries; fields not applicable to a given binary (e.g. OptNone/SkipPass
// for catastrophici) are simply left zero.
type Options struct {
	Input   string
	Output  string
	Debug   DebugTarget
	Pretty  bool
	Profile bool
	NoColor bool

	OptNone  bool
	SkipPass map[string]bool
	ListPass bool
}

// EnvOverrides applies CATASTROPHIC_DEBUG and CATASTROPHIC_NO_COLOR on
// top of flags already parsed into o, without overriding a flag the
// user explicitly set to something other than the zero value.
func (o *Options) EnvOverrides() {
	if o.Debug == DebugNone {
		if v := os.Getenv("CATASTROPHIC_DEBUG"); v != "" {
			o.Debug = DebugTarget(strings.ToLower(v))
		}
	}
	if os.Getenv("CATASTROPHIC_NO_COLOR") != "" {
		o.NoColor = true
	}
}
