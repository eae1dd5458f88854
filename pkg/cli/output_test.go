package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type summary struct {
	RunID      string `json:"run_id"`
	Violations int    `json:"violations"`
}

func (s summary) String() string {
	return "run " + s.RunID
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOutputFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOutputFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextFormatter_Table(t *testing.T) {
	table := &Table{Headers: []string{"tag", "name_pattern"}}
	table.AddRow("email", `\bemail\b`)
	table.AddRow("national_id", "ssn")

	var buf bytes.Buffer
	if err := NewFormatter(FormatText).FormatTo(&buf, table); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "TAG") || !strings.Contains(lines[0], "NAME_PATTERN") {
		t.Errorf("header = %q", lines[0])
	}
	// Columns are aligned: the second column starts at the same offset.
	if strings.Index(lines[1], `\bemail`) != strings.Index(lines[2], "ssn") {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

func TestTextFormatter_Values(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"stringer", summary{RunID: "abc"}, "run abc\n"},
		{"plain", 42, "42\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&TextFormatter{}).FormatTo(&buf, tt.data); err != nil {
				t.Fatalf("FormatTo() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("FormatTo() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).FormatTo(&buf, summary{RunID: "abc", Violations: 2}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var got summary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.RunID != "abc" || got.Violations != 2 {
		t.Errorf("decoded = %+v", got)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented output")
	}
}

func TestJSONFormatter_Table(t *testing.T) {
	table := &Table{Headers: []string{"policy_id", "violations"}}
	table.AddRow("no_email", "3")

	var buf bytes.Buffer
	if err := (&JSONFormatter{}).FormatTo(&buf, table); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var got []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != 1 || got[0]["policy_id"] != "no_email" || got[0]["violations"] != "3" {
		t.Errorf("decoded = %v", got)
	}
}
