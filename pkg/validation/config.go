package validation

import (
	"fmt"
	"strings"
)

var (
	logLevels  = []string{"debug", "info", "warn", "warning", "error"}
	logFormats = []string{"json", "console"}
)

// ValidateLogging returns warnings for logging settings the logger would
// silently replace with defaults. Empty values are allowed.
func ValidateLogging(level, format string) []string {
	var warnings []string
	if level != "" && !contains(logLevels, strings.ToLower(level)) {
		warnings = append(warnings, fmt.Sprintf("Unknown log level '%s' - defaulting to info", level))
	}
	if format != "" && !contains(logFormats, strings.ToLower(format)) {
		warnings = append(warnings, fmt.Sprintf("Unknown log format '%s' - defaulting to json", format))
	}
	return warnings
}

// ValidateNames flags blank and duplicate names among items of one kind.
func ValidateNames(kind string, names []string) []string {
	var warnings []string
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			warnings = append(warnings, fmt.Sprintf("%s #%d has no name", kind, i+1))
			continue
		}
		if seen[trimmed] {
			warnings = append(warnings, fmt.Sprintf("%s name '%s' is used more than once", kind, trimmed))
		}
		seen[trimmed] = true
	}
	return warnings
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
