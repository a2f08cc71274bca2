package sema

import (
	"errors"

	"github.com/rhysd/Dachs-sub001/internal/copysem"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/mono"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// requestCopier resolves the copiers a value of type t needs at a copy site:
// initialisation, assignment, argument passing, returning and capture.
func (tc *typeChecker) requestCopier(t types.TypeID, sp source.Span) {
	if t == types.NoTypeID || !tc.types.IsAggregate(t) || tc.types.ContainsPlaceholder(t) {
		return
	}
	_, _, err := tc.copiers.CopierOf(tc.ctx, t, tc.scope)
	if err == nil || tc.fatal != nil {
		return
	}
	var amb *copysem.AmbiguousCopierError
	var priv *copysem.PrivateCopierError
	var rec *mono.RecursiveError
	switch {
	case errors.As(err, &amb):
		tc.reportWith(diag.SemaInvalidCopier, sp, amb.Error(), tc.candidateNotes(amb.Candidates))
	case errors.As(err, &priv):
		tc.reportWith(diag.SemaPrivateCopier, sp, priv.Error(), tc.candidateNotes([]symbols.SymbolID{priv.Copier}))
	case errors.As(err, &rec):
		tc.report(diag.SemaRecursiveInstantiation, sp, "%s", rec.Error())
		tc.fatal = rec
	default:
		tc.report(diag.SemaInvalidCopier, sp, "%s", err.Error())
	}
}
