// Package agent is the participant-side reporting client.  The embedding UI
// feeds it raw signals (visibility changes, focus loss, clipboard use, key
// combinations); the agent classifies them, suppresses duplicates, batches
// them and ships them to the portal's ingestion endpoint.
//
// Reporting is fire-and-forget: failures are retried quietly and never
// surfaced to the participant.
package agent

// Signal is a raw UI-level event observed by the embedding application.
type Signal interface {
	isSignal()
}

// VisibilityHidden fires when the page/document becomes hidden.
type VisibilityHidden struct{}

// WindowBlur fires when the application window loses focus.
type WindowBlur struct{}

// ContextMenu fires when a context menu is requested.
type ContextMenu struct{}

// ClipboardOp distinguishes the three clipboard signals.
type ClipboardOp string

const (
	OpCopy  ClipboardOp = "copy"
	OpCut   ClipboardOp = "cut"
	OpPaste ClipboardOp = "paste"
)

// Clipboard fires on a copy, cut or paste.  Length is the character length
// of the affected text, 0 when unavailable.
type Clipboard struct {
	Op     ClipboardOp
	Length int
}

// KeyPress fires on a key combination the UI chose to report.
type KeyPress struct {
	Key  string
	Ctrl bool
}

func (VisibilityHidden) isSignal() {}
func (WindowBlur) isSignal()       {}
func (ContextMenu) isSignal()      {}
func (Clipboard) isSignal()        {}
func (KeyPress) isSignal()         {}
