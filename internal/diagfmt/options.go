package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAsGiven prints the path the file was registered with.
	PathModeAsGiven PathMode = iota
	PathModeBasename
	// PathModeNone omits the path prefix.
	PathModeNone
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	// Context enables the source line with a caret under the primary span.
	Context   bool
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
	Indent       bool
}
