package monitor

import (
	"regexp"
	"slices"
)

// ignoredErrorClasses are parser and abort errors raised while users type YAML.
var ignoredErrorClasses = []string{
	"YAMLSemanticError",
	"YAMLSyntaxError",
	"AbortError",
}

// noisyWorkerPattern matches stack traces and messages from the embedded
// editor and its language workers.
var noisyWorkerPattern = regexp.MustCompile(`(?i)(editorsimpleworker|editor\.worker|yaml\.worker|monaco)`)

// ShouldIgnore reports whether ev is a known-noisy event that must not reach
// the monitoring backend.
func ShouldIgnore(ev Event) bool {
	var first *ErrorDetail
	if len(ev.Errors) > 0 {
		first = &ev.Errors[0]
	}

	if first != nil && slices.Contains(ignoredErrorClasses, first.ErrorClass) {
		return true
	}

	if ev.OriginalError != nil && noisyWorkerPattern.MatchString(ev.OriginalError.Stack) {
		return true
	}

	if first != nil && noisyWorkerPattern.MatchString(first.ErrorMessage) {
		return true
	}

	return false
}
