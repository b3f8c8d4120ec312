package source

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"unicode"
)

// DefaultSuffix is the file name suffix of planner logs in problem directories.
const DefaultSuffix = "vhpop-log.bz2"

// DefaultSkip lists name tokens of auxiliary files (timing, stderr) that
// share the log suffix but are not traces, e.g. prob01.time.vhpop-log.bz2.
var DefaultSkip = []string{"time", "err"}

// Options controls Discover.
type Options struct {
	// Suffix selects trace files inside problem directories. Empty means
	// DefaultSuffix. Matching is case-insensitive.
	Suffix string

	// Skip excludes files whose name has one of these as a whole token.
	// Tokens are the runs of letters and digits, compared case-insensitively,
	// so "err" skips run_err.log but not ferry-p01.log. Nil means DefaultSkip.
	Skip []string
}

func (o Options) suffix() string {
	if o.Suffix == "" {
		return DefaultSuffix
	}
	return strings.ToLower(o.Suffix)
}

func (o Options) skip() []string {
	if o.Skip == nil {
		return DefaultSkip
	}
	return o.Skip
}

// Discover finds the traces under dir.
//
// Each subdirectory is one problem: its first file (by name) ending in the
// suffix and not carrying a skip token becomes the trace, with the
// directory name as id. Top-level .bz2, .zip and .vhpop-log files are traces
// too. Every skipped file and trace-less directory is logged at Warn.
//
// Results are sorted by id. Two traces with the same id fail with
// ErrCodeDuplicateID.
func Discover(dir string, opts Options) ([]Trace, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &Error{Code: ErrCodeNotFound, Message: "data directory not found", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &Error{Code: ErrCodeNotFound, Message: "not a directory", Path: dir}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &Error{Code: ErrCodeScanFailed, Message: "cannot list directory", Path: dir, Err: err}
	}

	var out []Trace
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())

		if e.IsDir() {
			t, ok, err := problemTrace(p, opts)
			if err != nil {
				return nil, err
			}
			if !ok {
				slog.Warn("no trace in problem directory", "dir", p)
				continue
			}
			out = append(out, t)
			continue
		}

		if !e.Type().IsRegular() {
			continue
		}
		if tok, ok := skipToken(e.Name(), opts.skip()); ok {
			slog.Warn("skipping auxiliary file", "path", p, "token", tok)
			continue
		}

		lower := strings.ToLower(e.Name())
		switch {
		case strings.HasSuffix(lower, ".zip"):
			members, err := OpenZip(p)
			if err != nil {
				// A corrupt archive is reported and skipped, never fatal.
				slog.Warn("skipping archive", "path", p, "error", err)
				continue
			}
			out = append(out, members...)
		case strings.HasSuffix(lower, ".bz2"), strings.HasSuffix(lower, ".vhpop-log"):
			t, err := Open(p)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	for i := 1; i < len(out); i++ {
		if out[i].ID == out[i-1].ID {
			return nil, &Error{
				Code:    ErrCodeDuplicateID,
				Message: fmt.Sprintf("problem id %q also used by %s", out[i].ID, out[i-1].Label()),
				Path:    out[i].Label(),
			}
		}
	}
	return out, nil
}

func problemTrace(dir string, opts Options) (Trace, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Trace{}, false, &Error{Code: ErrCodeScanFailed, Message: "cannot list problem directory", Path: dir, Err: err}
	}

	problem := filepath.Base(dir)
	suffix := opts.suffix()

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		lower := strings.ToLower(e.Name())
		if !strings.HasSuffix(lower, suffix) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if tok, ok := skipToken(e.Name(), opts.skip()); ok {
			slog.Warn("skipping auxiliary file", "path", p, "token", tok)
			continue
		}
		kind := KindPlain
		if strings.HasSuffix(lower, ".bz2") {
			kind = KindBzip2
		}
		return Trace{ID: ProblemID(problem), Path: p, Kind: kind}, true, nil
	}
	return Trace{}, false, nil
}

// skipToken returns the first token of name found in skip.
func skipToken(name string, skip []string) (string, bool) {
	tokens := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, s := range skip {
		if s == "" {
			continue
		}
		if s = strings.ToLower(s); slices.Contains(tokens, s) {
			return s, true
		}
	}
	return "", false
}
