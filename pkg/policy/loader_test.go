package policy

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"mercator-hq/piiaudit/pkg/pii"
)

func TestParse(t *testing.T) {
	doc := `
policies:
  - id: no_ssn
    forbidden_tags: [national_id]
  - id: users_only
    forbidden_tags: [email, " phone "]
    applies_to_tables: [users]
    table_name_prefix: us
  - id: tagged
    require_tag_for_detected: true
`
	rules, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []Rule{
		{ID: "no_ssn", ForbiddenTags: []pii.Tag{pii.TagNationalID}},
		{
			ID:            "users_only",
			ForbiddenTags: []pii.Tag{pii.TagEmail, pii.TagPhone},
			Scope:         Scope{Tables: []string{"users"}, NamePrefix: "us"},
		},
		{ID: "tagged", RequireTagForDetected: true},
	}
	if !reflect.DeepEqual(rules, want) {
		t.Errorf("Parse() = %+v, want %+v", rules, want)
	}
}

func TestParse_JSON(t *testing.T) {
	rules, err := Parse([]byte(`{"policies": [{"id": "j", "forbidden_tags": ["email"]}]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rules) != 1 || rules[0].ID != "j" {
		t.Errorf("Parse() = %+v", rules)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, doc := range []string{"", "policies: []", "other: 1"} {
		rules, err := Parse([]byte(doc))
		if err != nil {
			t.Errorf("Parse(%q) error = %v", doc, err)
		}
		if len(rules) != 0 {
			t.Errorf("Parse(%q) = %+v, want none", doc, rules)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{
			name:      "missing id",
			doc:       "policies:\n  - forbidden_tags: [email]\n",
			wantField: "policies[0].id",
		},
		{
			name:      "blank id",
			doc:       "policies:\n  - id: ok\n  - id: '  '\n",
			wantField: "policies[1].id",
		},
		{
			name:      "duplicate id",
			doc:       "policies:\n  - id: a\n  - id: b\n  - id: a\n",
			wantField: "policies[2].id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Parse() error = %v, want *ValidationError", err)
			}
			if verr.Errors[0].Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Errors[0].Field, tt.wantField)
			}
		})
	}

	if _, err := Parse([]byte("policies: [")); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Parse() malformed error = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policies.yaml")
	if err := os.WriteFile(path, []byte("policies:\n  - id: a\n    forbidden_tags: [email]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(rules) != 1 {
		t.Errorf("LoadFile() = %+v", rules)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile() on a missing file should fail")
	}
}

func TestLint(t *testing.T) {
	rules := []Rule{
		{ID: "noop"},
		{ID: "unknown", ForbiddenTags: []pii.Tag{"iban"}},
		{ID: "empty_scope", ForbiddenTags: []pii.Tag{pii.TagEmail}, Scope: Scope{Tables: []string{"users"}, NamePrefix: "crm_"}},
		{ID: "fine", ForbiddenTags: []pii.Tag{pii.TagEmail}},
	}

	warnings := Lint(rules, pii.DefaultCatalog())

	var fields []string
	for _, w := range warnings {
		fields = append(fields, w.Field)
	}
	want := []string{"policies[0]", "policies[1].forbidden_tags", "policies[2].table_name_prefix"}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("Lint() fields = %v, want %v", fields, want)
	}
	if len(warnings) > 1 && !strings.Contains(warnings[1].Message, "known tags: dob,email,ip,name,national_id,phone") {
		t.Errorf("unknown tag warning = %q, want the catalog tags listed", warnings[1].Message)
	}
}
