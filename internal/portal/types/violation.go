package types

import "time"

// ViolationType classifies the browser-level signal that produced a
// violation.  The set is closed; anything else is rejected at ingestion.
type ViolationType string

const (
	ViolationTabSwitch  ViolationType = "tab_switch"
	ViolationWindowBlur ViolationType = "window_blur"
	ViolationRightClick ViolationType = "right_click"
	ViolationCopy       ViolationType = "copy"
	ViolationCut        ViolationType = "cut"
	ViolationPaste      ViolationType = "paste"
	ViolationShortcut   ViolationType = "shortcut_attempt"
)

func (t ViolationType) Valid() bool {
	switch t {
	case ViolationTabSwitch, ViolationWindowBlur, ViolationRightClick,
		ViolationCopy, ViolationCut, ViolationPaste, ViolationShortcut:
		return true
	}
	return false
}

// Severity is the three-level classification of a violation.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityHigh    Severity = "high"
)

// Candidate is an unconfirmed, client-reported detection.  Severity is a
// client-side estimate and carried for display only; the server derives the
// authoritative severity from Type and Details.
type Candidate struct {
	Type     ViolationType  `json:"type"`
	Details  map[string]any `json:"details,omitempty"`
	Severity Severity       `json:"severity,omitempty"`
}

// Violation is a confirmed, logged security event.  Records are immutable
// once written; username and teamName are snapshotted at ingestion time so
// the record stays attributable after the user is changed or deleted.
type Violation struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Username  string        `json:"username"`
	TeamName  string        `json:"teamName"`
	Type      ViolationType `json:"type"`
	Severity  Severity      `json:"severity"`
	Details   string        `json:"details"` // JSON-serialized attribute bag, "{}" when absent
	Timestamp time.Time     `json:"timestamp"`
}
