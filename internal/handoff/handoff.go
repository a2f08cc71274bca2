// Package handoff exports the resolved tables of a session to the code
// generator: the typed tree, the instantiation, copier and capture tables,
// the type table and the value shapes.
package handoff

import (
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/rhysd/Dachs-sub001/internal/capture"
	"github.com/rhysd/Dachs-sub001/internal/observ"
	"github.com/rhysd/Dachs-sub001/internal/session"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
	"github.com/rhysd/Dachs-sub001/internal/version"
)

// SchemaVersion is bumped whenever Document changes shape.
const SchemaVersion uint16 = 1

// Header identifies the producer of a document.
type Header struct {
	Schema   uint16 `msgpack:"schema"`
	Session  string `msgpack:"session"`
	Unit     string `msgpack:"unit"`
	Producer string `msgpack:"producer"`
}

// SessionID parses the session identity.
func (h Header) SessionID() (uuid.UUID, error) {
	return uuid.Parse(h.Session)
}

// Document is everything code generation needs from semantic analysis.
type Document struct {
	Header    Header        `msgpack:"header"`
	UnitType  uint32        `msgpack:"unit_type"`
	Types     []TypeRow     `msgpack:"types"`
	Exprs     []ExprRow     `msgpack:"exprs"`
	Calls     []CallRow     `msgpack:"calls"`
	Instances []InstanceRow `msgpack:"instances"`
	Copiers   []CopierRow   `msgpack:"copiers"`
	Captures  []CaptureRow  `msgpack:"captures"`
	Shapes    []ShapeRow    `msgpack:"shapes"`
	// Timings of the session phases, for build profiling.
	Timings observ.Report `msgpack:"timings"`
}

type TypeRow struct {
	ID    uint32 `msgpack:"id"`
	Kind  string `msgpack:"kind"`
	Label string `msgpack:"label"`
}

// ExprRow is the filled type slot of one expression.
type ExprRow struct {
	ID   uint32 `msgpack:"id"`
	Type uint32 `msgpack:"type"`
	File uint32 `msgpack:"file"`
	Line uint32 `msgpack:"line"`
	Col  uint32 `msgpack:"col"`
}

// CallRow binds a call expression to its concrete callee.
type CallRow struct {
	Expr   uint32 `msgpack:"expr"`
	Callee uint32 `msgpack:"callee"`
	Name   string `msgpack:"name"`
}

type InstanceRow struct {
	Kind     string   `msgpack:"kind"`
	Generic  string   `msgpack:"generic"`
	Args     []uint32 `msgpack:"args"`
	Instance uint32   `msgpack:"instance,omitempty"`
	Type     uint32   `msgpack:"type,omitempty"`
}

type CopierRow struct {
	Type   uint32 `msgpack:"type"`
	Copier uint32 `msgpack:"copier"`
	Name   string `msgpack:"name"`
}

// CaptureRow is the environment of one lambda. Fields are in offset order.
type CaptureRow struct {
	Lambda uint32       `msgpack:"lambda"`
	Env    uint32       `msgpack:"env"`
	Fields []string     `msgpack:"fields"`
	Refs   []CaptureRef `msgpack:"refs"`
}

type CaptureRef struct {
	Expr   uint32 `msgpack:"expr"`
	Offset uint32 `msgpack:"offset"`
}

type ShapeRow struct {
	Type      uint32 `msgpack:"type"`
	Repr      string `msgpack:"repr"`
	Size      int    `msgpack:"size"`
	Align     int    `msgpack:"align"`
	ValueSize int    `msgpack:"value_size"`
	Offsets   []int  `msgpack:"offsets"`
	Strategy  string `msgpack:"strategy"`
	Copier    uint32 `msgpack:"copier,omitempty"`
}

// Build collects the document of an analysed session.
func Build(s *session.Session, res *session.Result) *Document {
	doc := &Document{
		Header: Header{
			Schema:   SchemaVersion,
			Session:  s.ID.String(),
			Unit:     res.Unit,
			Producer: version.String(),
		},
		UnitType: uint32(s.Types.Builtins().Unit),
		Timings:  s.Timer.Report(),
	}
	for id := 1; id < s.Types.Len(); id++ {
		t := types.TypeID(id)
		doc.Types = append(doc.Types, TypeRow{ID: uint32(t), Kind: s.Types.Kind(t).String(), Label: types.Label(s.Types, s.Strings, t)})
	}
	for id, x := range s.Tree.Exprs.Arena.All() {
		if x.Type == types.NoTypeID {
			continue
		}
		doc.Exprs = append(doc.Exprs, ExprRow{ID: id, Type: uint32(x.Type), File: uint32(x.Span.File), Line: x.Span.Line, Col: x.Span.Col})
	}

	table := res.Sema.Table
	for _, e := range slices.Sorted(maps.Keys(res.Sema.Calls)) {
		callee := res.Sema.Calls[e]
		doc.Calls = append(doc.Calls, CallRow{Expr: uint32(e), Callee: uint32(callee), Name: table.Name(callee)})
	}
	for _, e := range res.Sema.Instances.Entries() {
		doc.Instances = append(doc.Instances, InstanceRow{
			Kind:     e.Kind.String(),
			Generic:  table.Name(e.Generic),
			Args:     typeIDs(e.Args),
			Instance: uint32(e.Instance),
			Type:     uint32(e.Type),
		})
	}
	for _, row := range res.Sema.Copiers.Table() {
		doc.Copiers = append(doc.Copiers, CopierRow{Type: uint32(row.Type), Copier: uint32(row.Copier), Name: table.Name(row.Copier)})
	}
	for _, m := range res.Sema.Captures.All() {
		doc.Captures = append(doc.Captures, captureRow(table, m))
	}
	for _, sh := range res.Shapes {
		doc.Shapes = append(doc.Shapes, ShapeRow{
			Type:      uint32(sh.Type),
			Repr:      sh.Layout.Repr.String(),
			Size:      sh.Layout.Size,
			Align:     sh.Layout.Align,
			ValueSize: sh.Layout.ValueSize,
			Offsets:   sh.Layout.FieldOffsets,
			Strategy:  sh.Plan.Strategy.String(),
			Copier:    uint32(sh.Plan.Copier),
		})
	}
	return doc
}

func captureRow(table *symbols.Table, m *capture.Map) CaptureRow {
	row := CaptureRow{Lambda: uint32(m.Lambda), Env: uint32(m.Env)}
	for _, f := range m.Fields {
		row.Fields = append(row.Fields, table.Name(f))
	}
	for _, e := range m.Entries {
		row.Refs = append(row.Refs, CaptureRef{Expr: uint32(e.Ref), Offset: e.Offset})
	}
	return row
}

func typeIDs(ids []types.TypeID) []uint32 {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}
