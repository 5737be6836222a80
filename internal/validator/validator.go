// Package validator performs structural sanitation of inbound tool-call
// parameters before they reach schema validation: name pattern, payload
// size, nesting depth, and forbidden keys.
package validator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
)

const (
	maxArgumentsSize = 100 * 1024 // 100KB
	maxNestDepth     = 10
	maxToolNameLen   = 100
)

var (
	toolNamePattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)
	forbiddenKeys   = []string{"__proto__", "constructor", "prototype"}
)

// ValidateToolName checks that name is non-empty, bounded, and matches the
// allowed character set.
func ValidateToolName(name string) error {
	if name == "" {
		return fmt.Errorf("tool name is required")
	}
	if len(name) > maxToolNameLen {
		return fmt.Errorf("tool name exceeds maximum length (%d characters)", maxToolNameLen)
	}
	if !toolNamePattern.MatchString(name) {
		return fmt.Errorf("tool name contains invalid characters")
	}
	return nil
}

// SanitizeArguments rejects argument objects that are oversized, nested too
// deeply, or carry prototype-pollution key names. A nil map is valid: tools
// with no required inputs are invoked with empty arguments.
func SanitizeArguments(args map[string]any) error {
	if args == nil {
		return nil
	}

	if containsForbiddenKeys(args) {
		return fmt.Errorf("arguments contain forbidden keys")
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if len(raw) > maxArgumentsSize {
		return fmt.Errorf("arguments exceed maximum size (%d bytes)", maxArgumentsSize)
	}

	if depth := objectDepth(args, 1); depth > maxNestDepth {
		return fmt.Errorf("argument nesting exceeds maximum depth (%d)", maxNestDepth)
	}

	return nil
}

func containsForbiddenKeys(obj any) bool {
	switch v := obj.(type) {
	case map[string]any:
		for key, val := range v {
			if slices.Contains(forbiddenKeys, key) {
				return true
			}
			if containsForbiddenKeys(val) {
				return true
			}
		}
	case []any:
		if slices.ContainsFunc(v, containsForbiddenKeys) {
			return true
		}
	}
	return false
}

func objectDepth(obj any, currentDepth int) int {
	if currentDepth > maxNestDepth {
		return currentDepth
	}

	switch v := obj.(type) {
	case map[string]any:
		maxDepth := currentDepth
		for _, val := range v {
			if depth := objectDepth(val, currentDepth+1); depth > maxDepth {
				maxDepth = depth
			}
		}
		return maxDepth
	case []any:
		maxDepth := currentDepth
		for _, val := range v {
			if depth := objectDepth(val, currentDepth+1); depth > maxDepth {
				maxDepth = depth
			}
		}
		return maxDepth
	default:
		return currentDepth
	}
}
