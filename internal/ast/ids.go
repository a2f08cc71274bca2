package ast

type (
	FileID     uint32
	ItemID     uint32
	StmtID     uint32
	ExprID     uint32
	TypeExprID uint32
	PayloadID  uint32
)

const (
	NoFileID     FileID     = 0
	NoItemID     ItemID     = 0
	NoStmtID     StmtID     = 0
	NoExprID     ExprID     = 0
	NoTypeExprID TypeExprID = 0
	NoPayloadID  PayloadID  = 0
)

func (id FileID) IsValid() bool     { return id != NoFileID }
func (id ItemID) IsValid() bool     { return id != NoItemID }
func (id StmtID) IsValid() bool     { return id != NoStmtID }
func (id ExprID) IsValid() bool     { return id != NoExprID }
func (id TypeExprID) IsValid() bool { return id != NoTypeExprID }

// Generation numbers a tree lifetime. Reset bumps it, which invalidates
// every Ref taken before.
type Generation uint32

type RefKind uint8

const (
	RefNone RefKind = iota
	RefItem
	RefStmt
	RefExpr
)

// Ref is a weak back-reference from a symbol to the node that introduced it.
type Ref struct {
	Kind RefKind
	ID   uint32
	Gen  Generation
}

func (r Ref) IsZero() bool { return r.Kind == RefNone }
