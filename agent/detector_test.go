package agent

import (
	"testing"

	"github.com/codearena/portal/internal/portal/types"
)

func TestDetect_SignalMapping(t *testing.T) {
	cases := []struct {
		name     string
		sig      Signal
		wantType types.ViolationType
	}{
		{"visibility hidden", VisibilityHidden{}, types.ViolationTabSwitch},
		{"window blur", WindowBlur{}, types.ViolationWindowBlur},
		{"context menu", ContextMenu{}, types.ViolationRightClick},
		{"copy", Clipboard{Op: OpCopy, Length: 42}, types.ViolationCopy},
		{"cut", Clipboard{Op: OpCut}, types.ViolationCut},
		{"paste", Clipboard{Op: OpPaste, Length: 250}, types.ViolationPaste},
		{"printscreen", KeyPress{Key: "PrintScreen"}, types.ViolationShortcut},
		{"ctrl+c", KeyPress{Key: "c", Ctrl: true}, types.ViolationShortcut},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := detect(tc.sig)
			if !ok {
				t.Fatalf("detect(%v): not recognized", tc.sig)
			}
			if c.Type != tc.wantType {
				t.Errorf("detect(%v) type = %q, want %q", tc.sig, c.Type, tc.wantType)
			}
		})
	}
}

func TestDetect_ClipboardCarriesLength(t *testing.T) {
	c, ok := detect(Clipboard{Op: OpPaste, Length: 250})
	if !ok {
		t.Fatal("paste not recognized")
	}
	if got := c.Details["length"]; got != 250 {
		t.Errorf("details.length = %v, want 250", got)
	}
	if c.Severity != types.SeverityHigh {
		t.Errorf("estimated severity = %q, want high", c.Severity)
	}
}

func TestDetect_KeyCombos(t *testing.T) {
	// Plain letters without Ctrl are not reportable.
	if _, ok := detect(KeyPress{Key: "c"}); ok {
		t.Error("plain 'c' should not be a candidate")
	}
	if _, ok := detect(KeyPress{Key: "x", Ctrl: true}); ok {
		t.Error("ctrl+x should not be a candidate")
	}

	c, ok := detect(KeyPress{Key: "PrintScreen"})
	if !ok {
		t.Fatal("PrintScreen should be a candidate")
	}
	if got := c.Details["key"]; got != "PrintScreen" {
		t.Errorf("details.key = %v, want PrintScreen", got)
	}
	if c.Severity != types.SeverityHigh {
		t.Errorf("estimated severity = %q, want high", c.Severity)
	}

	for _, key := range []string{"v", "i", "j", "C"} {
		if _, ok := detect(KeyPress{Key: key, Ctrl: true}); !ok {
			t.Errorf("ctrl+%s should be a candidate", key)
		}
	}
}
