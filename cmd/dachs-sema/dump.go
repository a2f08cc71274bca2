package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rhysd/Dachs-sub001/internal/session"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

var dumpTables = []string{"instances", "copiers", "captures", "shapes", "all"}

func validDump(s string) bool { return slices.Contains(dumpTables, s) }

// writeDump prints the resolved tables of an error-free unit.
func writeDump(w io.Writer, sess *session.Session, res *session.Result, which string) error {
	var sb strings.Builder
	label := func(t types.TypeID) string { return types.Label(sess.Types, sess.Strings, t) }
	table := res.Sema.Table
	all := which == "all"

	if all || which == "instances" {
		sb.WriteString("instances:\n")
		for _, e := range res.Sema.Instances.Entries() {
			args := make([]string, len(e.Args))
			for i, a := range e.Args {
				args[i] = label(a)
			}
			fmt.Fprintf(&sb, "  %-5s %s(%s)", e.Kind, table.Name(e.Generic), strings.Join(args, ", "))
			if e.Type != types.NoTypeID {
				fmt.Fprintf(&sb, " => %s", label(e.Type))
			}
			sb.WriteString("\n")
		}
	}
	if all || which == "copiers" {
		sb.WriteString("copiers:\n")
		for _, row := range res.Sema.Copiers.Table() {
			fmt.Fprintf(&sb, "  %-24s %s\n", label(row.Type), table.Name(row.Copier))
		}
	}
	if all || which == "captures" {
		sb.WriteString("captures:\n")
		for _, m := range res.Sema.Captures.All() {
			fields := make([]string, len(m.Fields))
			for i, f := range m.Fields {
				fields[i] = table.Name(f)
			}
			fmt.Fprintf(&sb, "  lambda#%d env=%s [%s]\n", m.Lambda, label(m.Env), strings.Join(fields, ", "))
		}
	}
	if all || which == "shapes" {
		sb.WriteString("shapes:\n")
		for _, sh := range res.Shapes {
			fmt.Fprintf(&sb, "  %-24s %-9s size=%d align=%d copy=%s\n",
				sh.Label, sh.Layout.Repr, sh.Layout.Size, sh.Layout.Align, sh.Plan.Strategy)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
