package source

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureBz2 = "testdata/prob01.vhpop-log.bz2"

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func copyFixture(t *testing.T, dst string) {
	t.Helper()
	data, err := os.ReadFile(fixtureBz2)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}

func writeZip(t *testing.T, p string, members map[string]string) {
	t.Helper()
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func readAll(t *testing.T, tr Trace) string {
	t.Helper()
	rc, err := tr.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestProblemID(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"prob01", "prob01"},
		{"prob01.vhpop-log.bz2", "prob01"},
		{"prob01_UCPOP_neutral.vhpop-log", "prob01_UCPOP_neutral"},
		{"logistics-4.zip", "logistics-4"},
		{"run.LOG", "run"},
		{".bz2", ".bz2"},
		// NFD "é" normalizes to NFC.
		{"cafe\u0301", "caf\u00e9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProblemID(tt.name))
		})
	}
}

func TestOpen_Bzip2(t *testing.T) {
	tr, err := Open(fixtureBz2)
	require.NoError(t, err)

	assert.Equal(t, "prob01", tr.ID)
	assert.Equal(t, KindBzip2, tr.Kind)
	assert.Contains(t, readAll(t, tr), "Plans generated: 10\n")
}

func TestOpen_Plain(t *testing.T) {
	p := filepath.Join(t.TempDir(), "prob02.vhpop-log")
	writeFile(t, p, "Plans generated: 3\n")

	tr, err := Open(p)
	require.NoError(t, err)
	assert.Equal(t, KindPlain, tr.Kind)
	assert.Equal(t, "prob02", tr.ID)
	assert.Equal(t, "Plans generated: 3\n", readAll(t, tr))
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.bz2"))
	require.Error(t, err)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeNotFound, se.Code)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenZip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "logistics.zip")
	writeZip(t, p, map[string]string{
		"b/prob02.vhpop-log": "Plans generated: 2\n",
		"a/prob01.vhpop-log": "Plans generated: 1\n",
	})

	traces, err := OpenZip(p)
	require.NoError(t, err)
	require.Len(t, traces, 2)

	assert.Equal(t, "logistics/prob01", traces[0].ID)
	assert.Equal(t, "a/prob01.vhpop-log", traces[0].Member)
	assert.Equal(t, KindZipMember, traces[0].Kind)
	assert.Equal(t, p+"!a/prob01.vhpop-log", traces[0].Label())
	assert.Equal(t, "Plans generated: 2\n", readAll(t, traces[1]))
}

func TestOpenZip_SingleMemberUsesStem(t *testing.T) {
	p := filepath.Join(t.TempDir(), "prob07.zip")
	writeZip(t, p, map[string]string{"trace.txt": "x\n"})

	traces, err := OpenZip(p)
	require.NoError(t, err)
	require.Len(t, traces, 1)
	assert.Equal(t, "prob07", traces[0].ID)
}

func TestOpenZip_Corrupt(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.zip")
	writeFile(t, p, "not a zip")

	_, err := OpenZip(p)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeBadArchive, se.Code)
}

func TestTrace_OpenMissingMember(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.zip")
	writeZip(t, p, map[string]string{"x": "1"})

	_, err := Trace{Path: p, Member: "y", Kind: KindZipMember}.Open()
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeNoSuchEntry, se.Code)
}

func TestDiscover_ProblemDirectories(t *testing.T) {
	dir := t.TempDir()
	copyFixture(t, filepath.Join(dir, "prob02", "prob02.vhpop-log.bz2"))
	copyFixture(t, filepath.Join(dir, "prob01", "prob01.vhpop-log.bz2"))
	// Auxiliary files sharing the suffix are skipped.
	writeFile(t, filepath.Join(dir, "prob01", "a-time.vhpop-log.bz2"), "")
	writeFile(t, filepath.Join(dir, "prob01", "a-err.vhpop-log.bz2"), "")
	// Directory without a log.
	writeFile(t, filepath.Join(dir, "empty", "notes.txt"), "")

	traces, err := Discover(dir, Options{})
	require.NoError(t, err)
	require.Len(t, traces, 2)

	assert.Equal(t, "prob01", traces[0].ID)
	assert.Equal(t, filepath.Join(dir, "prob01", "prob01.vhpop-log.bz2"), traces[0].Path)
	assert.Equal(t, "prob02", traces[1].ID)
}

func TestDiscover_SkipIgnoresProblemName(t *testing.T) {
	// "terrain" contains "err" but not as a whole token.
	dir := t.TempDir()
	copyFixture(t, filepath.Join(dir, "terrain-3", "terrain-3.vhpop-log.bz2"))

	traces, err := Discover(dir, Options{})
	require.NoError(t, err)
	require.Len(t, traces, 1)
	assert.Equal(t, "terrain-3", traces[0].ID)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestDiscover_SkipMatchesWholeTokens(t *testing.T) {
	logs := captureLogs(t)
	dir := t.TempDir()
	copyFixture(t, filepath.Join(dir, "ferry-p01.vhpop-log.bz2"))
	copyFixture(t, filepath.Join(dir, "timetable-1.vhpop-log.bz2"))
	copyFixture(t, filepath.Join(dir, "ferry-p02_UCPOP_neutral", "ferry-p02_UCPOP.vhpop-log.bz2"))
	writeFile(t, filepath.Join(dir, "ferry-p02_UCPOP_neutral", "ferry-p02_UCPOP-time.vhpop-log.bz2"), "")
	writeFile(t, filepath.Join(dir, "prob09.err.vhpop-log.bz2"), "")

	traces, err := Discover(dir, Options{})
	require.NoError(t, err)

	var ids []string
	for _, tr := range traces {
		ids = append(ids, tr.ID)
	}
	assert.Equal(t, []string{"ferry-p01", "ferry-p02_UCPOP_neutral", "timetable-1"}, ids)
	assert.Equal(t, filepath.Join(dir, "ferry-p02_UCPOP_neutral", "ferry-p02_UCPOP.vhpop-log.bz2"), traces[1].Path)

	out := logs.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "prob09.err.vhpop-log.bz2")
	assert.Contains(t, out, "ferry-p02_UCPOP-time.vhpop-log.bz2")
	assert.NotContains(t, out, "ferry-p01")
}

func TestDiscover_WarnsOnEmptyProblemDirectory(t *testing.T) {
	logs := captureLogs(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "prob07", "notes.txt"), "")

	traces, err := Discover(dir, Options{})
	require.NoError(t, err)
	assert.Empty(t, traces)
	assert.Contains(t, logs.String(), "no trace in problem directory")
}

func TestDiscover_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	copyFixture(t, filepath.Join(dir, "prob01", "prob01.vhpop-log.bz2"))
	copyFixture(t, filepath.Join(dir, "prob01.vhpop-log.bz2"))

	_, err := Discover(dir, Options{})
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeDuplicateID, se.Code)
	assert.Contains(t, se.Message, `"prob01"`)
}

func TestSkipToken(t *testing.T) {
	tests := []struct {
		name string
		skip []string
		want string
		ok   bool
	}{
		{"ferry-p01.vhpop-log.bz2", DefaultSkip, "", false},
		{"timetable.vhpop-log.bz2", DefaultSkip, "", false},
		{"prob01.time.vhpop-log.bz2", DefaultSkip, "time", true},
		{"prob01_ERR.vhpop-log.bz2", DefaultSkip, "err", true},
		{"prob01.vhpop-log.bz2", []string{"", "LOG"}, "log", true},
		{"prob01.vhpop-log.bz2", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := skipToken(tt.name, tt.skip)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiscover_FlatLayout(t *testing.T) {
	dir := t.TempDir()
	copyFixture(t, filepath.Join(dir, "prob03.vhpop-log.bz2"))
	writeFile(t, filepath.Join(dir, "prob04.vhpop-log"), "Plans generated: 1\n")
	writeZip(t, filepath.Join(dir, "prob05.zip"), map[string]string{"log": "x\n"})
	writeFile(t, filepath.Join(dir, "broken.zip"), "garbage")
	writeFile(t, filepath.Join(dir, "README.md"), "")

	traces, err := Discover(dir, Options{})
	require.NoError(t, err)

	var ids []string
	for _, tr := range traces {
		ids = append(ids, tr.ID)
	}
	assert.Equal(t, []string{"prob03", "prob04", "prob05"}, ids)
}

func TestDiscover_CustomOptions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "p1", "run.txt"), "a\n")
	writeFile(t, filepath.Join(dir, "p1", "run-time.txt"), "b\n")

	traces, err := Discover(dir, Options{Suffix: ".TXT", Skip: []string{}})
	require.NoError(t, err)
	require.Len(t, traces, 1)
	assert.Equal(t, filepath.Join(dir, "p1", "run-time.txt"), traces[0].Path, "first by name with no skip list")
	assert.Equal(t, KindPlain, traces[0].Kind)
}

func TestDiscover_NotADirectory(t *testing.T) {
	_, err := Discover(fixtureBz2, Options{})
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeNotFound, se.Code)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "plain", KindPlain.String())
	assert.Equal(t, "bz2", KindBzip2.String())
	assert.Equal(t, "zip", KindZipMember.String())
	assert.Equal(t, "unknown", Kind(7).String())
}
