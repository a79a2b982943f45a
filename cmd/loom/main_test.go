package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRun_Version(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if code := run([]string{"-version"}, &out); code != 0 {
		t.Fatalf("run(-version) = %d; want 0", code)
	}
	if !strings.Contains(out.String(), "loom version") {
		t.Fatalf("output = %q; want version string", out.String())
	}
}

func TestRun_VersionCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if code := run([]string{"version"}, &out); code != 0 {
		t.Fatalf("run(version) = %d; want 0", code)
	}
	if !strings.Contains(out.String(), "loom version") {
		t.Fatalf("output = %q; want version string", out.String())
	}
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if code := run([]string{"-help"}, &out); code != 0 {
		t.Fatalf("run(-help) = %d; want 0", code)
	}
	for _, want := range []string{"Usage:", "serve", "version"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("help output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if code := run([]string{"conjure"}, &out); code != 2 {
		t.Fatalf("run(conjure) = %d; want 2", code)
	}
	if !strings.Contains(out.String(), "unknown command: conjure") {
		t.Fatalf("output = %q; want unknown command message", out.String())
	}
}

func TestRun_BadFlag(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if code := run([]string{"-no-such-flag"}, &out); code != 2 {
		t.Fatalf("run(-no-such-flag) = %d; want 2", code)
	}
}
