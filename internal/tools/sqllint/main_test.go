package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGo(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestRunAcceptsMarkedQueries(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "q.go", "package q\n\nconst QOne = `--sql 0f2c5286-9859-468d-aae1-7f3a940e4822\nselect 1;\n`\n\nconst Label = \"selection full\"\n")

	var stderr bytes.Buffer
	if code := run([]string{dir}, &stderr); code != 0 {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}
}

func TestRunReportsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "a.go", "package q\n\nconst QA = `--sql 0f2c5286-9859-468d-aae1-7f3a940e4822\nselect 1;\n`\n")
	writeGo(t, dir, "b.go", "package q\n\nconst QB = `--sql 0f2c5286-9859-468d-aae1-7f3a940e4822\nselect 2;\n`\n\nconst QC = `update api_keys set enabled = false;`\n")

	var stderr bytes.Buffer
	if code := run([]string{dir}, &stderr); code != 1 {
		t.Fatalf("run() = %d, want 1", code)
	}
	out := stderr.String()
	if !strings.Contains(out, "marker already used by QA") {
		t.Fatalf("duplicate not reported: %s", out)
	}
	if !strings.Contains(out, "missing or invalid --sql <uuid> marker (QC)") {
		t.Fatalf("missing marker not reported: %s", out)
	}
}
