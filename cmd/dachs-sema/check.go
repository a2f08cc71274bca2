package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rhysd/Dachs-sub001/internal/diagfmt"
	"github.com/rhysd/Dachs-sub001/internal/handoff"
	"github.com/rhysd/Dachs-sub001/internal/session"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <tree.yaml>...",
	Short: "Analyze Dachs syntax trees as one unit",
	Long:  `Type check the given syntax tree documents together, report diagnostics and optionally write the handoff document for code generation`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "diagnostic output format (pretty|json)")
	checkCmd.Flags().String("unit", "", "unit name (default: base name of the first file)")
	checkCmd.Flags().String("emit", "", "write the msgpack handoff document to this path")
	checkCmd.Flags().String("dump", "", "print resolved tables (instances|copiers|captures|shapes|all)")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Int("pointer-size", 8, "target pointer size in bytes (4|8)")
	checkCmd.Flags().Int("max-depth", 64, "max template instantiation depth")
	checkCmd.Flags().Int("jobs", 0, "max parallel readers (0=auto)")
	checkCmd.Flags().String("trace", "", "write trace events to this file (- for stderr)")
	checkCmd.Flags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	checkCmd.Flags().String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
}

type loaded struct {
	path string
	data []byte
}

// readFixtures reads every document concurrently, keeping argument order.
func readFixtures(ctx context.Context, paths []string, jobs int) ([]loaded, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	out := make([]loaded, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// #nosec G304 -- path is provided by the user
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			out[i] = loaded{path: path, data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func unitName(flag string, paths []string) string {
	if flag != "" {
		return flag
	}
	base := filepath.Base(paths[0])
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// runCheck analyses all arguments as one unit. It returns an error, and so
// exits with status 1, when the unit has errors.
func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	dump, err := cmd.Flags().GetString("dump")
	if err != nil {
		return fmt.Errorf("failed to get dump flag: %w", err)
	}
	if dump != "" && !validDump(dump) {
		return fmt.Errorf("invalid --dump value %q (expected %s)", dump, strings.Join(dumpTables, "|"))
	}
	emit, err := cmd.Flags().GetString("emit")
	if err != nil {
		return fmt.Errorf("failed to get emit flag: %w", err)
	}
	name, err := cmd.Flags().GetString("unit")
	if err != nil {
		return fmt.Errorf("failed to get unit flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	useColor, err := readColor(cmd, os.Stdout)
	if err != nil {
		return err
	}

	opts := session.Options{}
	if cfg.Trace.Output == "-" {
		cfg.Trace.Output = ""
		opts.TraceOutput = os.Stderr
	}
	sess, err := session.New(cfg, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "failed to close trace: %v\n", cerr)
		}
	}()

	docs, err := readFixtures(cmd.Context(), args, jobs)
	if err != nil {
		return err
	}
	unit := session.Unit{Name: unitName(name, args)}
	for _, doc := range docs {
		path := doc.path
		if fullPath {
			if abs, aerr := filepath.Abs(path); aerr == nil {
				path = abs
			}
		}
		// malformed documents are reported through the bag
		fid, ferr := sess.AddFixture(path, doc.data)
		if ferr == nil {
			unit.Files = append(unit.Files, fid)
		}
	}

	var res *session.Result
	if !sess.Bag.HasErrors() {
		res, err = sess.Analyze(cmd.Context(), unit)
		if err != nil {
			return err
		}
	}
	diagnostics := sess.Bag.Items()

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		err = diagfmt.JSON(out, diagnostics, sess.Files, diagfmt.JSONOpts{
			PathMode:     diagfmt.PathModeAsGiven,
			IncludeNotes: withNotes,
			Indent:       true,
		})
	default:
		err = diagfmt.Pretty(out, diagnostics, sess.Files, diagfmt.PrettyOpts{
			Color:     useColor,
			PathMode:  diagfmt.PathModeAsGiven,
			Context:   true,
			ShowNotes: withNotes,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to format diagnostics: %w", err)
	}

	if res != nil && res.OK() {
		if dump != "" {
			if err := writeDump(out, sess, res, dump); err != nil {
				return err
			}
		}
		if emit != "" {
			if err := handoff.Write(emit, handoff.Build(sess, res)); err != nil {
				return fmt.Errorf("failed to write handoff: %w", err)
			}
		}
	}
	if showTimings {
		writeTimings(cmd.ErrOrStderr(), sess)
	}

	if sess.Bag.HasErrors() {
		cmd.SilenceErrors = true
		return errUnitHasErrors
	}
	return nil
}

func writeTimings(w io.Writer, sess *session.Session) {
	fmt.Fprint(w, sess.Timer.Summary())
}

var errUnitHasErrors = errors.New("unit has errors")
