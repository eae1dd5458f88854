package policy

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"mercator-hq/piiaudit/pkg/pii"
)

func row(table, column string, tags ...pii.Tag) pii.ColumnClassification {
	return pii.ColumnClassification{Table: table, Column: column, Tags: tags}
}

func mustEvaluator(t *testing.T, rules []Rule, opts ...Option) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(rules, opts...)
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}
	return e
}

func TestEvaluator_ForbiddenTags(t *testing.T) {
	e := mustEvaluator(t, []Rule{
		{ID: "no_ssn", ForbiddenTags: []pii.Tag{pii.TagNationalID}},
	})
	reg := pii.Registry{Rows: []pii.ColumnClassification{
		row("logs", "ssn", pii.TagNationalID),
	}}

	got, err := e.Evaluate(context.Background(), reg)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	want := []Violation{{
		PolicyID: "no_ssn",
		Table:    "logs",
		Column:   "ssn",
		Tags:     []pii.Tag{pii.TagNationalID},
		Reason:   "forbidden tags present: national_id",
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Evaluate() = %+v, want %+v", got, want)
	}
}

func TestEvaluator_ForbiddenIntersectionIsSorted(t *testing.T) {
	e := mustEvaluator(t, []Rule{
		{ID: "contact", ForbiddenTags: []pii.Tag{pii.TagPhone, pii.TagEmail}},
	})
	reg := pii.Registry{Rows: []pii.ColumnClassification{
		row("crm", "contact", pii.TagPhone, pii.TagName, pii.TagEmail),
	}}

	got, err := e.Evaluate(context.Background(), reg)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Evaluate() returned %d violations, want 1", len(got))
	}
	if got[0].Reason != "forbidden tags present: email,phone" {
		t.Errorf("Reason = %q", got[0].Reason)
	}
	if row := got[0].Row(); row.PIITags != "email,name,phone" {
		t.Errorf("PIITags = %q", row.PIITags)
	}
}

func TestEvaluator_Scope(t *testing.T) {
	reg := pii.Registry{Rows: []pii.ColumnClassification{
		row("logs", "email", pii.TagEmail),
		row("users", "email", pii.TagEmail),
		row("users_archive", "email", pii.TagEmail),
		row("crm_users", "email", pii.TagEmail),
	}}

	tests := []struct {
		name  string
		scope Scope
		want  []string
	}{
		{
			name:  "explicit tables",
			scope: Scope{Tables: []string{"users"}},
			want:  []string{"users"},
		},
		{
			name:  "prefix",
			scope: Scope{NamePrefix: "users"},
			want:  []string{"users", "users_archive"},
		},
		{
			name:  "tables and prefix combine with AND",
			scope: Scope{Tables: []string{"users", "crm_users"}, NamePrefix: "crm_"},
			want:  []string{"crm_users"},
		},
		{
			name:  "no scope",
			scope: Scope{},
			want:  []string{"logs", "users", "users_archive", "crm_users"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustEvaluator(t, []Rule{{ID: "r", ForbiddenTags: []pii.Tag{pii.TagEmail}, Scope: tt.scope}})
			got, err := e.Evaluate(context.Background(), reg)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			var tables []string
			for _, v := range got {
				tables = append(tables, v.Table)
			}
			if !reflect.DeepEqual(tables, tt.want) {
				t.Errorf("violating tables = %v, want %v", tables, tt.want)
			}
		})
	}
}

func TestEvaluator_ScopeExcludesOtherTables(t *testing.T) {
	e := mustEvaluator(t, []Rule{
		{ID: "users_only", ForbiddenTags: []pii.Tag{pii.TagEmail}, Scope: Scope{Tables: []string{"users"}}},
	})
	reg := pii.Registry{Rows: []pii.ColumnClassification{row("logs", "email", pii.TagEmail)}}

	got, err := e.Evaluate(context.Background(), reg)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Evaluate() = %+v, want none", got)
	}
}

func TestEvaluator_MissingTag(t *testing.T) {
	e := mustEvaluator(t, []Rule{{ID: "tagged", RequireTagForDetected: true}})
	reg := pii.Registry{Rows: []pii.ColumnClassification{
		row("logs", "blob"),
		row("logs", "email", pii.TagEmail),
	}}

	got, err := e.Evaluate(context.Background(), reg)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	want := []Violation{{
		PolicyID: "tagged",
		Table:    "logs",
		Column:   "blob",
		Tags:     []pii.Tag{},
		Reason:   "detected PII missing tag",
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Evaluate() = %+v, want %+v", got, want)
	}
}

func TestEvaluator_MissingTagUnreachableFromScanner(t *testing.T) {
	tables := []pii.Table{{
		Name: "logs",
		Columns: []pii.Column{
			{Name: "email", Values: []any{"a@b.com"}},
			{Name: "note", Values: []any{"hello"}},
		},
	}}
	reg, err := pii.NewScanner(pii.NewClassifier(nil)).Scan(context.Background(), tables)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	e := mustEvaluator(t, []Rule{{ID: "tagged", RequireTagForDetected: true}})
	got, err := e.Evaluate(context.Background(), reg)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Evaluate() = %+v, want none", got)
	}
}

func TestEvaluator_ChecksAreIndependent(t *testing.T) {
	e := mustEvaluator(t, []Rule{
		{ID: "both", ForbiddenTags: []pii.Tag{pii.TagEmail}, RequireTagForDetected: true},
	})
	reg := pii.Registry{Rows: []pii.ColumnClassification{
		row("t", "a", pii.TagEmail),
		row("t", "b"),
		row("t", "c", pii.TagPhone),
	}}

	got, err := e.Evaluate(context.Background(), reg)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	var cols []string
	for _, v := range got {
		cols = append(cols, v.Column+":"+v.Reason)
	}
	want := []string{
		"a:forbidden tags present: email",
		"b:detected PII missing tag",
	}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("violations = %v, want %v", cols, want)
	}
}

func TestEvaluator_Ordering(t *testing.T) {
	rules := []Rule{
		{ID: "p1", ForbiddenTags: []pii.Tag{pii.TagPhone}},
		{ID: "p2", ForbiddenTags: []pii.Tag{pii.TagEmail, pii.TagPhone}},
		{ID: "p3", ForbiddenTags: []pii.Tag{pii.TagEmail}},
	}
	reg := pii.Registry{Rows: []pii.ColumnClassification{
		row("a", "email", pii.TagEmail),
		row("a", "phone", pii.TagPhone),
		row("b", "email", pii.TagEmail),
	}}

	want := []string{
		"p1 a.phone",
		"p2 a.email", "p2 a.phone", "p2 b.email",
		"p3 a.email", "p3 b.email",
	}

	for _, workers := range []int{1, 2, 8} {
		e := mustEvaluator(t, rules, WithConcurrency(workers))
		for i := 0; i < 5; i++ {
			got, err := e.Evaluate(context.Background(), reg)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			var keys []string
			for _, v := range got {
				keys = append(keys, v.PolicyID+" "+v.Table+"."+v.Column)
			}
			if !reflect.DeepEqual(keys, want) {
				t.Fatalf("workers=%d run=%d: order = %v, want %v", workers, i, keys, want)
			}
		}
	}
}

func TestNewEvaluator_RejectsInvalidRules(t *testing.T) {
	_, err := NewEvaluator([]Rule{
		{ID: "ok"},
		{ID: ""},
		{ID: "ok"},
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("NewEvaluator() error = %v, want *ValidationError", err)
	}
	if len(verr.Errors) != 2 {
		t.Fatalf("got %d field errors, want 2: %v", len(verr.Errors), verr)
	}
	if verr.Errors[0].Field != "policies[1].id" || verr.Errors[1].Field != "policies[2].id" {
		t.Errorf("fields = %q, %q", verr.Errors[0].Field, verr.Errors[1].Field)
	}
}

func TestEvaluator_Cancelled(t *testing.T) {
	e := mustEvaluator(t, []Rule{{ID: "r", ForbiddenTags: []pii.Tag{pii.TagEmail}}}, WithConcurrency(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Evaluate(ctx, pii.Registry{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Evaluate() error = %v, want context.Canceled", err)
	}
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeRecorder) RecordRuleEvaluation(ruleID string, violations int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ruleID] = violations
}

func TestEvaluator_Recorder(t *testing.T) {
	rec := &fakeRecorder{calls: map[string]int{}}
	e := mustEvaluator(t, []Rule{
		{ID: "hit", ForbiddenTags: []pii.Tag{pii.TagEmail}},
		{ID: "miss", ForbiddenTags: []pii.Tag{pii.TagPhone}},
	}, WithRecorder(rec))

	reg := pii.Registry{Rows: []pii.ColumnClassification{row("t", "email", pii.TagEmail)}}
	if _, err := e.Evaluate(context.Background(), reg); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if rec.calls["hit"] != 1 || rec.calls["miss"] != 0 || len(rec.calls) != 2 {
		t.Errorf("recorded = %v", rec.calls)
	}
}
