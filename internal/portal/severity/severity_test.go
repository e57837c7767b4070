package severity_test

import (
	"testing"

	"github.com/codearena/portal/internal/portal/severity"
	"github.com/codearena/portal/internal/portal/types"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name    string
		typ     types.ViolationType
		details map[string]any
		want    types.Severity
	}{
		{"paste long", types.ViolationPaste, map[string]any{"length": 150}, types.SeverityHigh},
		{"paste medium", types.ViolationPaste, map[string]any{"length": 50}, types.SeverityWarning},
		{"paste boundary 100", types.ViolationPaste, map[string]any{"length": 100}, types.SeverityWarning},
		{"paste short", types.ViolationPaste, map[string]any{"length": 10}, types.SeverityInfo},
		{"paste boundary 20", types.ViolationPaste, map[string]any{"length": 20}, types.SeverityInfo},
		{"paste no details", types.ViolationPaste, nil, types.SeverityInfo},
		{"copy long", types.ViolationCopy, map[string]any{"length": 300}, types.SeverityWarning},
		{"copy short", types.ViolationCopy, map[string]any{"length": 200}, types.SeverityInfo},
		{"cut", types.ViolationCut, nil, types.SeverityWarning},
		{"tab switch", types.ViolationTabSwitch, nil, types.SeverityWarning},
		{"window blur", types.ViolationWindowBlur, nil, types.SeverityInfo},
		{"printscreen", types.ViolationShortcut, map[string]any{"key": "PrintScreen"}, types.SeverityHigh},
		{"printscreen lowercase", types.ViolationShortcut, map[string]any{"key": "printscreen"}, types.SeverityHigh},
		{"other shortcut", types.ViolationShortcut, map[string]any{"key": "c"}, types.SeverityWarning},
		{"unknown type", types.ViolationType("mystery"), nil, types.SeverityInfo},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := severity.Resolve(tc.typ, tc.details)
			if got != tc.want {
				t.Errorf("Resolve(%q, %v) = %q, want %q", tc.typ, tc.details, got, tc.want)
			}
		})
	}
}

// JSON-decoded request bodies carry numbers as float64; the table must not
// care about the concrete numeric type.
func TestResolve_Float64Details(t *testing.T) {
	got := severity.Resolve(types.ViolationPaste, map[string]any{"length": float64(250)})
	if got != types.SeverityHigh {
		t.Errorf("expected high for float64 length 250, got %q", got)
	}
}
