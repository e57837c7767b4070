// Package severity derives a violation's severity from its type and details.
//
// The same table runs on both sides: the agent uses it to estimate a
// candidate's severity for local display, and the server re-runs it at
// ingestion so a manipulated client cannot under-report itself.
package severity

import (
	"strings"

	"github.com/codearena/portal/internal/portal/types"
)

// Resolve returns the severity for a candidate of the given type.  Unknown
// types resolve to info.
func Resolve(t types.ViolationType, details map[string]any) types.Severity {
	switch t {
	case types.ViolationPaste:
		l := detailInt(details, "length")
		switch {
		case l > 100:
			return types.SeverityHigh
		case l > 20:
			return types.SeverityWarning
		default:
			return types.SeverityInfo
		}
	case types.ViolationCopy:
		if detailInt(details, "length") > 200 {
			return types.SeverityWarning
		}
		return types.SeverityInfo
	case types.ViolationCut, types.ViolationTabSwitch:
		return types.SeverityWarning
	case types.ViolationWindowBlur:
		return types.SeverityInfo
	case types.ViolationShortcut:
		key := detailString(details, "key")
		if strings.Contains(strings.ToLower(key), "printscreen") {
			return types.SeverityHigh
		}
		return types.SeverityWarning
	default:
		return types.SeverityInfo
	}
}

// detailInt reads a numeric detail.  JSON decoding produces float64 for all
// numbers, so both int and float64 are accepted.
func detailInt(details map[string]any, key string) int {
	if details == nil {
		return 0
	}
	switch v := details[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func detailString(details map[string]any, key string) string {
	if details == nil {
		return ""
	}
	s, _ := details[key].(string)
	return s
}
