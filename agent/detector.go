package agent

import (
	"strings"

	"github.com/codearena/portal/internal/portal/severity"
	"github.com/codearena/portal/internal/portal/types"
)

// detect maps a raw signal to a typed candidate.  Returns false for signals
// that are observed but not reportable (e.g. a key press that is not a
// capture combination).  The severity set here is the client-side estimate;
// the server re-derives it at ingestion.
func detect(sig Signal) (types.Candidate, bool) {
	var c types.Candidate

	switch s := sig.(type) {
	case VisibilityHidden:
		c.Type = types.ViolationTabSwitch
	case WindowBlur:
		c.Type = types.ViolationWindowBlur
	case ContextMenu:
		c.Type = types.ViolationRightClick
	case Clipboard:
		switch s.Op {
		case OpCopy:
			c.Type = types.ViolationCopy
		case OpCut:
			c.Type = types.ViolationCut
		case OpPaste:
			c.Type = types.ViolationPaste
		default:
			return types.Candidate{}, false
		}
		c.Details = map[string]any{"length": s.Length}
	case KeyPress:
		if !isCaptureCombo(s) {
			return types.Candidate{}, false
		}
		c.Type = types.ViolationShortcut
		c.Details = map[string]any{"key": s.Key}
	default:
		return types.Candidate{}, false
	}

	c.Severity = severity.Resolve(c.Type, c.Details)
	return c, true
}

// isCaptureCombo reports whether a key press is a screenshot or devtools
// attempt: PrintScreen, or Ctrl combined with c, v, i or j.
func isCaptureCombo(k KeyPress) bool {
	if strings.Contains(strings.ToLower(k.Key), "printscreen") {
		return true
	}
	if !k.Ctrl {
		return false
	}
	switch strings.ToLower(k.Key) {
	case "c", "v", "i", "j":
		return true
	}
	return false
}
