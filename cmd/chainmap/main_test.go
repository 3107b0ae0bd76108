package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/llxisdsh/chainmap"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := newApp(strings.NewReader(stdin), &out, &errOut)
	cmd := a.rootCmd()
	cmd.SetArgs(append([]string{"--log-handler=text"}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestDump_Text(t *testing.T) {
	in := `
# single letters hash to their byte under poly
a 1
d 4
f six and more
a ignored
`
	out, logs, err := run(t, in, "dump", "--buckets=5", "--hash=poly")
	require.NoError(t, err)
	require.Equal(t, "0: (d, 4) \n"+
		"1: \n"+
		"2: (f, six and more) (a, 1) \n"+
		"3: \n"+
		"4: \n", out)
	require.Contains(t, logs, "duplicate key ignored")
	require.Contains(t, logs, "key=a")
}

func TestDump_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- key: a
  value: x
- key: d
  value: 7
`), 0o644))

	out, _, err := run(t, "", "dump", "--buckets=3", "--hash=poly", "--input", path)
	require.NoError(t, err)
	require.Equal(t, "0: \n1: (d, 7) (a, x) \n2: \n", out)
}

func TestDump_EmptyInput(t *testing.T) {
	out, _, err := run(t, "", "dump", "--buckets=0", "--format=yaml")
	require.NoError(t, err)
	require.Equal(t, "0: \n1: \n", out)
}

func TestStats(t *testing.T) {
	out, _, err := run(t, "a 1\nb 2\nc 3\n", "stats", "--buckets=7", "--hash=poly")
	require.NoError(t, err)
	require.Contains(t, out, "BucketCount:  7\n")
	require.Contains(t, out, "Size:         3\n")
	require.Contains(t, out, "arena: ")
}

func TestHash(t *testing.T) {
	out, _, err := run(t, "", "hash", "--hash=poly", "--buckets=5", "a", "ab")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], `"a"`))
	require.True(t, strings.HasSuffix(lines[0], "bucket=2"))
	require.True(t, strings.HasSuffix(lines[1], "bucket=4"))

	// --buckets=0 rounds up to the smallest prime, 2.
	out, _, err = run(t, "", "hash", "--hash=xxhash", "--buckets=0", "a")
	require.NoError(t, err)
	h := chainmap.XXHash("a")
	require.Equal(t, fmt.Sprintf("%q\thash=%#016x\tbucket=%d\n", "a", h, h%2), out)
}

func TestErrors(t *testing.T) {
	_, _, err := run(t, "", "hash", "--hash=md5", "x")
	require.ErrorIs(t, err, ErrUnknownHash)

	_, _, err = run(t, "", "dump", "--format=csv")
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, _, err = run(t, "", "dump", "--input", filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = run(t, "- value: 1\n", "dump", "--format=yaml")
	require.ErrorIs(t, err, ErrEmptyKey)

	_, _, err = run(t, "", "dump", "--log-level=loud")
	require.Error(t, err)

	var out, errOut bytes.Buffer
	a := newApp(strings.NewReader(""), &out, &errOut)
	cmd := a.rootCmd()
	cmd.SetArgs([]string{"--log-handler=xml", "dump"})
	require.ErrorIs(t, cmd.Execute(), ErrUnknownLogHandler)
}

func TestInputFormat(t *testing.T) {
	cases := []struct {
		path, format, want string
	}{
		{"-", "", formatText},
		{"pairs.txt", "", formatText},
		{"pairs.YAML", "", formatYAML},
		{"pairs.yml", "", formatYAML},
		{"pairs.yml", "text", formatText},
		{"-", "yml", formatYAML},
	}
	for _, tc := range cases {
		got, err := inputFormat(tc.path, tc.format)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "inputFormat(%q, %q)", tc.path, tc.format)
	}
}

func TestReadTextPairs(t *testing.T) {
	pairs, err := readTextPairs(strings.NewReader("  k1   v 1  \n\n# c\nk2\n"))
	require.NoError(t, err)
	require.Equal(t, []pair{{Key: "k1", Value: "v 1"}, {Key: "k2", Value: ""}}, pairs)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, "debug", "json")
	require.NoError(t, err)
	log.Debug("hello", "k", 1)
	require.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	log, err = newLogger(&buf, "warn", "dev")
	require.NoError(t, err)
	log.Info("hidden")
	require.Empty(t, buf.String())
}
