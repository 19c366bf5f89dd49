package main

// Notes:
// - runMain: we test command routing and exit codes end to end, with files
//   in t.TempDir() and an injected environment. Conversion output itself is
//   covered by the library tests; here we only check it reached the file.
// - main(): not tested (calls os.Exit and maxprocs).
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(stdin string, vars map[string]string) *testEnv {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	var environ []string
	for k, v := range vars {
		environ = append(environ, k+"="+v)
	}
	return &testEnv{
		Environment: &Environment{
			Stdin:   strings.NewReader(stdin),
			Stdout:  stdout,
			Stderr:  stderr,
			Getenv:  mapGetenv(vars),
			Environ: func() []string { return environ },
		},
		stdout: stdout,
		stderr: stderr,
	}
}

func run(env *testEnv, args ...string) int {
	return runMain(context.Background(), append([]string{"tml2html"}, args...), env.Environment)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// ---------------------------------------------------------------------------
// TestRunMain_Commands - Routing and exit codes
// ---------------------------------------------------------------------------

func TestRunMain_Commands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no command", nil, ExitUsage, "", "Usage: tml2html"},
		{"version", []string{"version"}, ExitSuccess, "tml2html dev", ""},
		{"help", []string{"help"}, ExitSuccess, "Commands:", ""},
		{"help convert", []string{"help", "convert"}, ExitSuccess, "--url-base", ""},
		{"unknown command", []string{"render"}, ExitUsage, "", "unknown command: render"},
		{"bad flag", []string{"convert", "--no-such-flag", "x.txt"}, ExitUsage, "", "invalid usage"},
		{"missing input", []string{"convert"}, ExitIO, "", "no input specified"},
		{"too many workers", []string{"convert", "-w", "99", "x.txt"}, ExitUsage, "", "invalid worker count"},
		{"missing file", []string{"convert", "/nonexistent/Topic.txt"}, ExitIO, "", "error:"},
		{"unknown style", []string{"convert", "--preview", "--style", "nosuchstyle", "-"}, ExitUsage, "", "hint: available:"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv("", nil)
			if code := run(env, tt.args...); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, env.stderr)
			}
			if !strings.Contains(env.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", env.stdout, tt.wantStdout)
			}
			if !strings.Contains(env.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", env.stderr, tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Convert - End-to-end conversion
// ---------------------------------------------------------------------------

func TestRunMain_ConvertFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "WebHome.txt")
	writeTopic(t, input, "---+ Welcome\n*bold* WikiWord")

	env := newTestEnv("", nil)
	code := run(env, "convert", "--web", "Main", "--url-base", "/bin/view", input)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
	}

	out := readFile(t, filepath.Join(dir, "WebHome.html"))
	for _, want := range []string{"<h1>Welcome</h1>", "<b>bold</b>", `href="/bin/view/Main/WikiWord"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(env.stdout.String(), "Created") {
		t.Errorf("stdout = %q, want a Created line", env.stdout)
	}
}

func TestRunMain_ConvertDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTopic(t, filepath.Join(dir, "Main", "WebHome.txt"), "_one_")
	writeTopic(t, filepath.Join(dir, "Main", "Other.txt"), "_two_")
	out := filepath.Join(t.TempDir(), "out")

	env := newTestEnv("", nil)
	if code := run(env, "convert", "-w", "2", "-o", out, dir); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
	}

	if got := readFile(t, filepath.Join(out, "Main", "WebHome.html")); !strings.Contains(got, "<i>one</i>") {
		t.Errorf("WebHome.html = %q", got)
	}
	if got := readFile(t, filepath.Join(out, "Main", "Other.html")); !strings.Contains(got, "<i>two</i>") {
		t.Errorf("Other.html = %q", got)
	}
	if !strings.Contains(env.stdout.String(), "2 succeeded, 0 failed") {
		t.Errorf("stdout = %q, want summary line", env.stdout)
	}
}

func TestRunMain_ConvertEmptyDirectory(t *testing.T) {
	t.Parallel()

	env := newTestEnv("", nil)
	if code := run(env, "convert", t.TempDir()); code != ExitIO {
		t.Errorf("exit code = %d, want %d", code, ExitIO)
	}
}

func TestRunMain_ConvertStdin(t *testing.T) {
	t.Parallel()

	env := newTestEnv("   * item", nil)
	if code := run(env, "convert", "-"); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
	}
	if !strings.Contains(env.stdout.String(), "<li>item") {
		t.Errorf("stdout = %q, want a list item", env.stdout)
	}
}

func TestRunMain_ConvertPreview(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "Code.txt")
	writeTopic(t, input, "<verbatim class=\"go\">\npackage main\n</verbatim>")

	env := newTestEnv("", nil)
	if code := run(env, "convert", "--preview", "--web", "Sandbox", input); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
	}

	out := readFile(t, filepath.Join(dir, "Code.html"))
	for _, want := range []string{"<!DOCTYPE html>", "<title>Sandbox.Code</title>", "chroma"} {
		if !strings.Contains(out, want) {
			t.Errorf("preview missing %q:\n%s", want, out)
		}
	}
}

func TestRunMain_QuietSuppressesOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "T.txt")
	writeTopic(t, input, "x")

	env := newTestEnv("", nil)
	if code := run(env, "convert", "-q", input); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
	}
	if env.stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing with --quiet", env.stdout)
	}
}

func TestRunMain_EnvironmentOverrides(t *testing.T) {
	t.Parallel()

	env := newTestEnv("See WikiWord", map[string]string{
		"TML2HTML_URL_BASE": "/view",
		"TML2HTML_WEB":      "Env",
		"TML2HTML_BOGUS":    "1",
	})
	if code := run(env, "convert", "-"); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
	}
	if !strings.Contains(env.stdout.String(), `href="/view/Env/WikiWord"`) {
		t.Errorf("stdout = %q, want link expanded from environment", env.stdout)
	}
	if !strings.Contains(env.stderr.String(), "TML2HTML_BOGUS") {
		t.Errorf("stderr = %q, want unknown variable warning", env.stderr)
	}
}
