package validator

import (
	"strconv"
	"strings"
	"testing"
)

func generateDeepNestedObject(depth int) map[string]any {
	if depth <= 0 {
		return map[string]any{"value": "leaf"}
	}
	return map[string]any{"nested": generateDeepNestedObject(depth - 1)}
}

func generateLargeObject(targetSizeBytes int) map[string]any {
	obj := make(map[string]any)
	estimatedKeys := targetSizeBytes / 20
	for i := range estimatedKeys {
		key := "key_" + strconv.Itoa(i)
		obj[key] = "value"
	}
	return obj
}

func TestValidateToolName(t *testing.T) {
	tests := []struct {
		name      string
		inputName string
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "valid name with hyphen",
			inputName: "bmi-health-calculator",
			wantErr:   false,
		},
		{
			name:      "valid name with underscore",
			inputName: "valid_name",
			wantErr:   false,
		},
		{
			name:      "valid name with mixed alphanumeric",
			inputName: "ValidName123",
			wantErr:   false,
		},
		{
			name:      "single character name",
			inputName: "a",
			wantErr:   false,
		},
		{
			name:      "empty name",
			inputName: "",
			wantErr:   true,
			errMsg:    "tool name is required",
		},
		{
			name:      "name exceeds maximum length",
			inputName: strings.Repeat("a", maxToolNameLen+1),
			wantErr:   true,
			errMsg:    "exceeds maximum length",
		},
		{
			name:      "name at maximum length",
			inputName: strings.Repeat("a", maxToolNameLen),
			wantErr:   false,
		},
		{
			name:      "name with spaces",
			inputName: "invalid name",
			wantErr:   true,
			errMsg:    "invalid characters",
		},
		{
			name:      "name with slash",
			inputName: "tools/call",
			wantErr:   true,
			errMsg:    "invalid characters",
		},
		{
			name:      "name with dot",
			inputName: "tool.name",
			wantErr:   true,
			errMsg:    "invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateToolName(tt.inputName)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSanitizeArguments(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid flat arguments",
			args: map[string]any{"height_cm": 180.0, "weight_kg": 75.0},
		},
		{
			name: "nil arguments",
			args: nil,
		},
		{
			name: "empty arguments",
			args: map[string]any{},
		},
		{
			name:    "proto key at top level",
			args:    map[string]any{"__proto__": map[string]any{"polluted": true}},
			wantErr: true,
			errMsg:  "forbidden keys",
		},
		{
			name:    "constructor key nested",
			args:    map[string]any{"profile": map[string]any{"constructor": "x"}},
			wantErr: true,
			errMsg:  "forbidden keys",
		},
		{
			name:    "prototype key inside array element",
			args:    map[string]any{"items": []any{map[string]any{"prototype": 1}}},
			wantErr: true,
			errMsg:  "forbidden keys",
		},
		{
			name:    "nesting beyond maximum depth",
			args:    map[string]any{"deep": generateDeepNestedObject(maxNestDepth + 1)},
			wantErr: true,
			errMsg:  "maximum depth",
		},
		{
			name: "nesting at maximum depth",
			args: generateDeepNestedObject(maxNestDepth - 2),
		},
		{
			name:    "oversized arguments",
			args:    generateLargeObject(maxArgumentsSize + 4096),
			wantErr: true,
			errMsg:  "maximum size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SanitizeArguments(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
