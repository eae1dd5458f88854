package pii

import (
	"reflect"
	"testing"
)

func TestSortTags(t *testing.T) {
	got := SortTags([]Tag{TagPhone, TagEmail, "", TagPhone, TagNationalID})
	want := []Tag{TagEmail, TagNationalID, TagPhone}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortTags() = %v, want %v", got, want)
	}
}

func TestJoinAndSplitTags(t *testing.T) {
	if got := JoinTags([]Tag{TagName, TagEmail}); got != "email,name" {
		t.Errorf("JoinTags() = %q", got)
	}
	if got := SplitTags(" name, email ,,"); !reflect.DeepEqual(got, []Tag{TagEmail, TagName}) {
		t.Errorf("SplitTags() = %v", got)
	}
	if got := SplitTags(""); len(got) != 0 {
		t.Errorf("SplitTags(\"\") = %v, want empty", got)
	}
}

func TestColumnClassification_ReasonString(t *testing.T) {
	c := ColumnClassification{Reason: []string{"name:name", "value:email"}}
	if got := c.ReasonString(); got != "name:name,value:email" {
		t.Errorf("ReasonString() = %q", got)
	}
	if got := (ColumnClassification{}).ReasonString(); got != NoReason {
		t.Errorf("ReasonString() = %q, want %q", got, NoReason)
	}
}

func TestRegistryFromRows(t *testing.T) {
	rows := []RegistryRow{
		{Table: "users", Column: "contact", PIITags: "name,email", Reason: "name:name,value:email"},
		{Table: "logs", Column: "blob", PIITags: "", Reason: ""},
	}

	reg := RegistryFromRows(rows)
	if reg.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", reg.Len())
	}
	if !reflect.DeepEqual(reg.Rows[0].Tags, []Tag{TagEmail, TagName}) {
		t.Errorf("tags = %v", reg.Rows[0].Tags)
	}
	if len(reg.Rows[1].Tags) != 0 {
		t.Errorf("empty pii_tags should give no tags, got %v", reg.Rows[1].Tags)
	}

	back := reg.ToRows()
	if back[0].PIITags != "email,name" || back[0].Reason != "name:name,value:email" {
		t.Errorf("round trip row = %+v", back[0])
	}
}

func TestRegistry_TagCounts(t *testing.T) {
	reg := Registry{Rows: []ColumnClassification{
		{Tags: []Tag{TagEmail}},
		{Tags: []Tag{TagEmail, TagName}},
	}}
	counts := reg.TagCounts()
	if counts[TagEmail] != 2 || counts[TagName] != 1 {
		t.Errorf("TagCounts() = %v", counts)
	}
}
