package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindMark
)

var kindNames = [...]string{KindBegin: "begin", KindEnd: "end", KindMark: "mark"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // CLI and session
	ScopePass                    // forward pass, body pass, copier table, layout
	ScopeDecl                    // one top-level declaration
	ScopeNode                    // instantiations, copier lookups, captures
)

var scopeNames = [...]string{ScopeDriver: "driver", ScopePass: "pass", ScopeDecl: "decl", ScopeNode: "node"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record. Seq is stamped by the sink that stores it.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string
	Detail   string
	// Elapsed is set on KindEnd only.
	Elapsed time.Duration
	Extra   map[string]string
}
