package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning never halts compilation.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Heading is the first word of the rendered diagnostic.
func (s Severity) Heading() string {
	switch s {
	case SevWarning:
		return "Warning"
	case SevInfo:
		return "Note"
	default:
		return "Semantic error"
	}
}
