package templating_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/tcframework/templating"
	"github.com/byte4ever/tcframework/tctemplate"
)

// helper creates a temporary file with content and
// returns its path.
func writeTemp(
	tb testing.TB,
	dir string,
	name string,
	content string,
) string {
	tb.Helper()

	pa := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(pa, []byte(content), 0o600))

	return pa
}

func readOut(tb testing.TB, pa string) string {
	tb.Helper()

	got, err := os.ReadFile(pa) //nolint:gosec // test file
	require.NoError(tb, err)

	return string(got)
}

func TestExpand_variable_substitution(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tplPath := writeTemp(
		t, dir, "tpl.txt", "Hello [=/name]!",
	)

	outPath := filepath.Join(dir, "out.txt")

	en := templating.Engine{}

	err := en.Expand(
		tplPath, outPath,
		[]string{"name=World"},
		nil,
		false,
	)
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", readOut(t, outPath))
}

func TestExpand_stamp_file_substitution(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	stampPath := writeTemp(
		t, dir, "stamp.txt",
		"BUILD_USER alice\nBUILD_HOST ci-01\n",
	)

	tplPath := writeTemp(
		t, dir, "tpl.txt",
		"Built by [=/stamps/BUILD_USER] on [=/stamps/BUILD_HOST]",
	)

	outPath := filepath.Join(dir, "out.txt")

	en := templating.Engine{
		StampInfoFiles: []string{stampPath},
	}

	err := en.Expand(
		tplPath, outPath, nil, nil, false,
	)
	require.NoError(t, err)
	assert.Equal(
		t,
		"Built by alice on ci-01",
		readOut(t, outPath),
	)
}

func TestExpand_missing_template_file(t *testing.T) {
	t.Parallel()

	en := templating.Engine{}

	err := en.Expand(
		"/nonexistent/tpl.txt",
		"",
		nil,
		nil,
		false,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expanding template")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExpand_locals_files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	base := writeTemp(
		t, dir, "base.yaml",
		"app:\n  name: shop\n  debug: false\nitems: [a, b]\n",
	)
	override := writeTemp(
		t, dir, "override.json",
		`{"app": {"debug": true}}`,
	)

	tplPath := writeTemp(
		t, dir, "tpl.txt",
		"[=/app/name][if /app/debug] (debug)[/if]:"+
			"[for /it in /items] [=/it][/for]",
	)

	outPath := filepath.Join(dir, "out.txt")

	en := templating.Engine{
		LocalsFiles: []string{base, override},
	}

	err := en.Expand(
		tplPath, outPath, nil, nil, false,
	)
	require.NoError(t, err)
	assert.Equal(t, "shop (debug): a b", readOut(t, outPath))
}

func TestExpand_variables_override_locals(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	localsPath := writeTemp(
		t, dir, "locals.json", `{"version": "1.0.0"}`,
	)

	tplPath := writeTemp(
		t, dir, "tpl.txt", "version=[=/version]",
	)

	outPath := filepath.Join(dir, "out.txt")

	en := templating.Engine{
		LocalsFiles: []string{localsPath},
	}

	err := en.Expand(
		tplPath, outPath,
		[]string{"/version=2.0.0"},
		nil,
		false,
	)
	require.NoError(t, err)
	assert.Equal(t, "version=2.0.0", readOut(t, outPath))
}

func TestExpand_stamp_substitution_in_variable_values(
	t *testing.T,
) {
	t.Parallel()

	dir := t.TempDir()

	stampPath := writeTemp(
		t, dir, "stamp.txt", "BUILD_USER alice\n",
	)

	tplPath := writeTemp(
		t, dir, "tpl.txt", "author=[=/AUTHOR]",
	)

	outPath := filepath.Join(dir, "out.txt")

	en := templating.Engine{
		StampInfoFiles: []string{stampPath},
	}

	err := en.Expand(
		tplPath, outPath,
		[]string{"AUTHOR={BUILD_USER}"},
		nil,
		false,
	)
	require.NoError(t, err)
	assert.Equal(t, "author=alice", readOut(t, outPath))
}

func TestExpand_variables_prefix(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tplPath := writeTemp(
		t, dir, "tpl.txt",
		"[=/variables/APP]-[=/APP]",
	)

	outPath := filepath.Join(dir, "out.txt")

	en := templating.Engine{}

	err := en.Expand(
		tplPath, outPath,
		[]string{"APP=myapp"},
		nil,
		false,
	)
	require.NoError(t, err)
	assert.Equal(t, "myapp-myapp", readOut(t, outPath))
}

func TestExpand_typed_variable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tplPath := writeTemp(
		t, dir, "tpl.txt",
		"[if /on]on[/if][for /n in /nums]<[=/n]>[/for]",
	)

	outPath := filepath.Join(dir, "out.txt")

	en := templating.Engine{}

	err := en.Expand(
		tplPath, outPath,
		[]string{"/on:=true", "/nums:=[1,2.5]"},
		nil,
		false,
	)
	require.NoError(t, err)
	assert.Equal(t, "on<1><2.5>", readOut(t, outPath))
}

func TestExpand_imports(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	partial := writeTemp(
		t, dir, "partial.txt", "Hello [=/NAME]!",
	)

	tplPath := writeTemp(
		t, dir, "tpl.txt", "result=[-/imports/greeting]",
	)

	outPath := filepath.Join(dir, "out.txt")

	en := templating.Engine{}

	err := en.Expand(
		tplPath, outPath,
		[]string{"NAME=World"},
		[]string{"greeting=" + partial},
		false,
	)
	require.NoError(t, err)
	assert.Equal(t, "result=Hello World!", readOut(t, outPath))
}

func TestExpand_imports_with_stamps(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	stampPath := writeTemp(
		t, dir, "stamp.txt", "BUILD_NUM 42\n",
	)

	partial := writeTemp(
		t, dir, "partial.txt", "build {BUILD_NUM}",
	)

	tplPath := writeTemp(
		t, dir, "tpl.txt", "info=[=/imports/info]",
	)

	outPath := filepath.Join(dir, "out.txt")

	en := templating.Engine{
		StampInfoFiles: []string{stampPath},
	}

	err := en.Expand(
		tplPath, outPath,
		nil,
		[]string{"info=" + partial},
		false,
	)
	require.NoError(t, err)
	assert.Equal(t, "info=build 42", readOut(t, outPath))
}

func TestExpand_import_escaped_in_escaped_tag(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	partial := writeTemp(
		t, dir, "partial.html", "<b>bold</b>",
	)

	tplPath := writeTemp(
		t, dir, "tpl.html",
		"[=/imports/frag]|[-/imports/frag]",
	)

	outPath := filepath.Join(dir, "out.html")

	en := templating.Engine{}

	err := en.Expand(
		tplPath, outPath,
		nil,
		[]string{"frag=" + partial},
		false,
	)
	require.NoError(t, err)
	assert.Equal(
		t,
		"&#60;b&#62;bold&#60;/b&#62;|<b>bold</b>",
		readOut(t, outPath),
	)
}

func TestExpand_executable_output(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tplPath := writeTemp(
		t, dir, "tpl.sh", "#!/bin/sh\necho hi",
	)

	outPath := filepath.Join(dir, "out.sh")

	en := templating.Engine{}

	err := en.Expand(
		tplPath, outPath, nil, nil, true,
	)
	require.NoError(t, err)

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestExpand_overwrites_existing_output(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tplPath := writeTemp(t, dir, "tpl.txt", "new")
	outPath := writeTemp(t, dir, "out.txt", "old content")

	en := templating.Engine{}

	require.NoError(t, en.Expand(tplPath, outPath, nil, nil, false))
	assert.Equal(t, "new", readOut(t, outPath))

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	assert.ElementsMatch(t, []string{"tpl.txt", "out.txt"}, names)
}

func TestExpand_output_directory_missing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tplPath := writeTemp(t, dir, "tpl.txt", "x")

	en := templating.Engine{}

	err := en.Expand(
		tplPath, filepath.Join(dir, "missing", "out.txt"),
		nil, nil, false,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing output")
	assert.NoDirExists(t, filepath.Join(dir, "missing"))
}

func TestExpand_unknown_paths_render_empty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tplPath := writeTemp(
		t, dir, "tpl.txt",
		"[=/known] and [=/unknown]",
	)

	outPath := filepath.Join(dir, "out.txt")

	en := templating.Engine{}

	err := en.Expand(
		tplPath, outPath,
		[]string{"known=yes"},
		nil,
		false,
	)
	require.NoError(t, err)
	assert.Equal(t, "yes and ", readOut(t, outPath))
}

func TestExpand_stdin_to_stdout(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	en := templating.Engine{
		In:  strings.NewReader("[for /x in /xs][=/x];[/for]"),
		Out: &out,
	}

	err := en.Expand(
		"", "",
		[]string{`/xs:=["a","<b>"]`},
		nil,
		false,
	)
	require.NoError(t, err)
	assert.Equal(t, "a;&#60;b&#62;;", out.String())
}

func TestExpand_template_errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		source string
		want   error
	}{
		"unclosed":     {source: "[if /x]body", want: tctemplate.ErrUnclosedTags},
		"unbalanced":   {source: "[/for]", want: tctemplate.ErrUnbalancedTags},
		"unrecognized": {source: "[bogus]", want: tctemplate.ErrUnrecognizedTag},
		"not iterable": {source: "[for /x in /s][/for]", want: tctemplate.ErrNotIterable},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			tplPath := writeTemp(t, dir, "tpl.txt", tc.source)
			outPath := filepath.Join(dir, "out.txt")

			en := templating.Engine{}

			err := en.Expand(
				tplPath, outPath,
				[]string{"s=scalar"},
				nil,
				false,
			)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), err.Error())
			assert.Contains(t, err.Error(), tplPath)
			assert.NoFileExists(t, outPath)
		})
	}
}

func TestExpand_bad_variable_format(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tplPath := writeTemp(t, dir, "tpl.txt", "hi")

	en := templating.Engine{}

	err := en.Expand(
		tplPath, "",
		[]string{"NOEQUALS"},
		nil,
		false,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PATH=value")
}

func TestExpand_bad_import_format(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tplPath := writeTemp(t, dir, "tpl.txt", "hi")

	en := templating.Engine{}

	err := en.Expand(
		tplPath, "",
		nil,
		[]string{"NOEQUALS"},
		false,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NAME=filename")
}

func TestExpand_multiple_stamp_files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	sf1 := writeTemp(
		t, dir, "s1.txt", "K1 v1\n",
	)
	sf2 := writeTemp(
		t, dir, "s2.txt", "K2 v2\n",
	)

	tplPath := writeTemp(
		t, dir, "tpl.txt", "[=/stamps/K1]-[=/stamps/K2]",
	)

	outPath := filepath.Join(dir, "out.txt")

	en := templating.Engine{
		StampInfoFiles: []string{sf1, sf2},
	}

	err := en.Expand(
		tplPath, outPath, nil, nil, false,
	)
	require.NoError(t, err)
	assert.Equal(t, "v1-v2", readOut(t, outPath))
}

func TestExpand_missing_stamp_file(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tplPath := writeTemp(t, dir, "tpl.txt", "hi")

	en := templating.Engine{
		StampInfoFiles: []string{"/nonexistent/stamp.txt"},
	}

	err := en.Expand(
		tplPath, "", nil, nil, false,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expanding template")
}

func TestContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	stampPath := writeTemp(t, dir, "stamp.txt", "REV abc\n")
	partial := writeTemp(t, dir, "p.txt", "rev {REV}")

	en := templating.Engine{
		StampInfoFiles: []string{stampPath},
	}

	ctx, err := en.Context(
		[]string{"/a/b=c"},
		[]string{"p=" + partial},
	)
	require.NoError(t, err)
	assert.Equal(
		t,
		map[string]any{
			"stamps":  map[string]any{"REV": "abc"},
			"a":       map[string]any{"b": "c"},
			"imports": map[string]any{"p": "rev abc"},
		},
		ctx,
	)
}

func FuzzExpand(f *testing.F) {
	f.Add("Hello [=/name]!", "name", "World")
	f.Add("[=/a][-/b]", "a", "x")
	f.Add("no tags here", "key", "val")
	f.Add("[", "k", "v")
	f.Add("]", "k", "v")
	f.Add("[if /key]y[/if]", "key", "")
	f.Add("", "key", "val")

	f.Fuzz(func(
		t *testing.T,
		tpl string,
		key string,
		val string,
	) {
		if key == "" {
			return
		}

		dir := t.TempDir()
		tplPath := filepath.Join(dir, "tpl.txt")
		outPath := filepath.Join(dir, "out.txt")

		err := os.WriteFile(
			tplPath, []byte(tpl), 0o600,
		)
		if err != nil {
			return
		}

		en := templating.Engine{}

		// We only verify it does not panic.
		_ = en.Expand( //nolint:errcheck // fuzz: error irrelevant
			tplPath,
			outPath,
			[]string{key + "=" + val},
			nil,
			false,
		)
	})
}
