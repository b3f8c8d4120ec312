package source

import (
	"archive/zip"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind is the on-disk encoding of a trace.
type Kind int

const (
	// KindPlain is an uncompressed log file.
	KindPlain Kind = iota
	// KindBzip2 is a bzip2-compressed log file.
	KindBzip2
	// KindZipMember is one regular file inside a zip archive.
	KindZipMember
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindBzip2:
		return "bz2"
	case KindZipMember:
		return "zip"
	default:
		return "unknown"
	}
}

// Trace is one openable planner log.
type Trace struct {
	// ID is the problem identifier used as CSV key and database key.
	ID string

	// Path is the file on disk (the archive for zip members).
	Path string

	// Member is the archive member name; empty unless Kind is KindZipMember.
	Member string

	// Kind selects how Open decodes the file.
	Kind Kind
}

// Error is a source error carrying a code and the offending path.
type Error struct {
	Code    string
	Message string
	Path    string
	Err     error
}

// Error codes.
const (
	ErrCodeNotFound    = "S001" // path missing or not the expected type
	ErrCodeScanFailed  = "S002" // directory listing failed
	ErrCodeOpenFailed  = "S003" // file or archive could not be opened
	ErrCodeBadArchive  = "S004" // corrupt or unreadable zip archive
	ErrCodeNoSuchEntry = "S005" // zip member vanished between discovery and open
	ErrCodeDuplicateID = "S006" // two traces resolve to the same problem id
)

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Open returns a Trace for a single log file. The kind is chosen from the
// file extension.
func Open(p string) (Trace, error) {
	info, err := os.Stat(p)
	if err != nil {
		return Trace{}, &Error{Code: ErrCodeNotFound, Message: "cannot stat trace", Path: p, Err: err}
	}
	if info.IsDir() {
		return Trace{}, &Error{Code: ErrCodeNotFound, Message: "is a directory", Path: p}
	}
	kind := KindPlain
	if strings.EqualFold(filepath.Ext(p), ".bz2") {
		kind = KindBzip2
	}
	return Trace{ID: ProblemID(filepath.Base(p)), Path: p, Kind: kind}, nil
}

// OpenZip lists every regular member of a zip archive as a Trace.
//
// A single-member archive uses the archive stem as id; otherwise each id is
// the archive stem joined with the member's base name. Members are returned
// sorted by name.
func OpenZip(p string) ([]Trace, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, &Error{Code: ErrCodeBadArchive, Message: "cannot read zip archive", Path: p, Err: err}
	}
	defer zr.Close()

	var members []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !f.Mode().IsRegular() {
			continue
		}
		members = append(members, f.Name)
	}
	sort.Strings(members)

	stem := ProblemID(filepath.Base(p))
	out := make([]Trace, 0, len(members))
	for _, m := range members {
		id := stem
		if len(members) > 1 {
			id = stem + "/" + ProblemID(path.Base(m))
		}
		out = append(out, Trace{ID: id, Path: p, Member: m, Kind: KindZipMember})
	}
	return out, nil
}

// Open returns the decoded line stream of the trace. The caller must close it.
func (t Trace) Open() (io.ReadCloser, error) {
	switch t.Kind {
	case KindZipMember:
		return t.openMember()
	case KindBzip2:
		f, err := os.Open(t.Path)
		if err != nil {
			return nil, &Error{Code: ErrCodeOpenFailed, Message: "cannot open trace", Path: t.Path, Err: err}
		}
		return readCloser{Reader: bzip2.NewReader(f), close: f.Close}, nil
	default:
		f, err := os.Open(t.Path)
		if err != nil {
			return nil, &Error{Code: ErrCodeOpenFailed, Message: "cannot open trace", Path: t.Path, Err: err}
		}
		return f, nil
	}
}

func (t Trace) openMember() (io.ReadCloser, error) {
	zr, err := zip.OpenReader(t.Path)
	if err != nil {
		return nil, &Error{Code: ErrCodeBadArchive, Message: "cannot read zip archive", Path: t.Path, Err: err}
	}
	for _, f := range zr.File {
		if f.Name != t.Member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			zr.Close()
			return nil, &Error{Code: ErrCodeBadArchive, Message: "cannot open member " + t.Member, Path: t.Path, Err: err}
		}
		var r io.Reader = rc
		if strings.EqualFold(path.Ext(t.Member), ".bz2") {
			r = bzip2.NewReader(rc)
		}
		return readCloser{Reader: r, close: func() error {
			return errors.Join(rc.Close(), zr.Close())
		}}, nil
	}
	zr.Close()
	return nil, &Error{Code: ErrCodeNoSuchEntry, Message: "no member " + t.Member, Path: t.Path}
}

// Label returns a human-readable location for logs.
func (t Trace) Label() string {
	if t.Member != "" {
		return t.Path + "!" + t.Member
	}
	return t.Path
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error {
	return r.close()
}

// traceSuffixes are stripped from file names, in order, to form problem ids.
var traceSuffixes = []string{".bz2", ".zip", ".log", ".vhpop-log"}

// ProblemID derives a problem identifier from a file or directory name.
//
// The name is NFC-normalized and known trace extensions are removed, so
// "prob01.vhpop-log.bz2" and "prob01" yield the same id.
func ProblemID(name string) string {
	id := norm.NFC.String(name)
	for _, suf := range traceSuffixes {
		if len(id) > len(suf) && strings.EqualFold(id[len(id)-len(suf):], suf) {
			id = id[:len(id)-len(suf)]
		}
	}
	return id
}
