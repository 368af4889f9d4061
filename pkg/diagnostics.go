package trials

import "fmt"

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is a message produced while tokenizing a block. The core never
// logs; callers decide what to do with the collected diagnostics.
type Diagnostic struct {
	Severity  Severity
	Component string
	Message   string
}

type Diagnostics []Diagnostic

func (d *Diagnostics) add(severity Severity, component string, format string, args ...any) {
	if d == nil {
		return
	}
	*d = append(*d, Diagnostic{
		Severity:  severity,
		Component: component,
		Message:   fmt.Sprintf(format, args...),
	})
}

func (d *Diagnostics) Debugf(component string, format string, args ...any) {
	d.add(SeverityDebug, component, format, args...)
}

func (d *Diagnostics) Infof(component string, format string, args ...any) {
	d.add(SeverityInfo, component, format, args...)
}

func (d *Diagnostics) Warnf(component string, format string, args ...any) {
	d.add(SeverityWarning, component, format, args...)
}

// Warnings returns only the warning-level diagnostics.
func (d Diagnostics) Warnings() Diagnostics {
	warnings := make(Diagnostics, 0)
	for _, diag := range d {
		if diag.Severity == SeverityWarning {
			warnings = append(warnings, diag)
		}
	}
	return warnings
}
