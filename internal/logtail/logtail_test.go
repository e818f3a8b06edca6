package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "zero", maxLines: 0, expected: nil},
		{name: "negative", maxLines: -1, expected: nil},
		{name: "partial", maxLines: 5, expected: expectedAll[5:]},
		{name: "exact", maxLines: 10, expected: expectedAll},
		{name: "more than file", maxLines: 50, expected: expectedAll},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Read(logPath, tc.maxLines)
			if err != nil {
				t.Fatalf("Read returned error: %v", err)
			}
			if len(got) == 0 && len(tc.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Fatalf("Read = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("Read = %v, want nil", got)
	}
}

func TestParse_JSONLine(t *testing.T) {
	line := `{"level":"warn","ts":"2026-03-01T10:11:12.000Z","msg":"operation failed","resource":"sales","op":"add","pid":1}`
	e := Parse(line)
	if e.Level != "WARN" || e.Message != "operation failed" {
		t.Fatalf("Parse = %#v", e)
	}
	if e.Time.IsZero() {
		t.Fatalf("timestamp not parsed")
	}
	if _, ok := e.Fields["pid"]; ok {
		t.Fatalf("pid should be dropped from fields")
	}
	got := e.Format()
	if !strings.Contains(got, "WARN  operation failed op=add resource=sales") {
		t.Fatalf("Format = %q", got)
	}
}

func TestParse_PlainLine(t *testing.T) {
	e := Parse("not json")
	if e.Message != "not json" || e.Level != "" {
		t.Fatalf("Parse = %#v", e)
	}
	if e.Format() != "not json" {
		t.Fatalf("Format = %q", e.Format())
	}
}

func TestReadEntries_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	data := "{\"level\":\"info\",\"msg\":\"a\"}\n\n{\"level\":\"debug\",\"msg\":\"b\"}\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	entries, err := ReadEntries(path, 10)
	if err != nil {
		t.Fatalf("ReadEntries returned error: %v", err)
	}
	if len(entries) != 2 || entries[0].Message != "a" || entries[1].Level != "DEBUG" {
		t.Fatalf("ReadEntries = %#v", entries)
	}
}
