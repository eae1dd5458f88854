package pii

import (
	"math"
	"reflect"
	"testing"
)

func strs(values ...string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func repeat(v any, n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestClassifier_DetectByName(t *testing.T) {
	c := NewClassifier(DefaultCatalog())

	tests := []struct {
		column string
		want   Tag
		wantOK bool
	}{
		{"email", TagEmail, true},
		{"user_email", TagEmail, true},
		{"e_mail", TagEmail, true},
		{"contact_email", TagEmail, true},
		{"UserEmail", TagEmail, true},
		{"phone", TagPhone, true},
		{"mobile", TagPhone, true},
		{"contact_number", TagPhone, true},
		{"PHONE", TagPhone, true},
		{"ip", TagIP, true},
		{"ip_address", TagIP, true},
		{"ip-address", TagIP, true},
		{"IpAddress", TagIP, true},
		{"dob", TagDOB, true},
		{"date_of_birth", TagDOB, true},
		{"birth_date", TagDOB, true},
		{"name", TagName, true},
		{"full_name", TagName, true},
		{"first_name", TagName, true},
		{"last_name", TagName, true},
		{"ssn", TagNationalID, true},
		{"passport", TagNationalID, true},
		{"national_id", TagNationalID, true},
		{"username", "", false},
		{"user_id", "", false},
		{"amount", "", false},
		{"created_at", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, ok := c.DetectByName(tt.column)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("DetectByName(%q) = (%q, %v), want (%q, %v)", tt.column, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestClassifier_DetectByName_Deterministic(t *testing.T) {
	c := NewClassifier(DefaultCatalog())

	for _, column := range []string{"User_Email", "user_email", "USER_EMAIL"} {
		for i := 0; i < 3; i++ {
			got, ok := c.DetectByName(column)
			if !ok || got != TagEmail {
				t.Fatalf("DetectByName(%q) = (%q, %v) on attempt %d", column, got, ok, i)
			}
		}
	}
}

func TestClassifier_DetectByValues(t *testing.T) {
	c := NewClassifier(DefaultCatalog())

	tests := []struct {
		name   string
		sample []string
		want   Tag
		wantOK bool
	}{
		{
			name:   "emails",
			sample: []string{"test@example.com", "user@domain.com", "another@test.co"},
			want:   TagEmail,
			wantOK: true,
		},
		{
			name:   "phones",
			sample: []string{"+1-555-123-4567", "555-111-2222", "555.867.5309"},
			want:   TagPhone,
			wantOK: true,
		},
		{
			name:   "short ipv4 addresses",
			sample: []string{"8.8.8.8", "1.1.1.1", "9.9.9.9"},
			want:   TagIP,
			wantOK: true,
		},
		{
			name:   "slash dates",
			sample: []string{"01/02/1990", "12/31/1985", "06/15/2000"},
			want:   TagDOB,
			wantOK: true,
		},
		{
			// phone precedes national_id in the catalog and also matches
			// SSN-shaped values, so it wins.
			name:   "ssn shaped values match phone first",
			sample: []string{"123-45-6789", "987-65-4321", "456-78-9012"},
			want:   TagPhone,
			wantOK: true,
		},
		{
			name:   "no pii",
			sample: []string{"apple", "banana", "orange"},
			wantOK: false,
		},
		{
			name:   "two matches is not enough",
			sample: []string{"a@b.com", "c@d.com", "nope", "still nope"},
			wantOK: false,
		},
		{
			name:   "empty sample",
			sample: nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.DetectByValues(tt.sample)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("DetectByValues() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestClassifier_DetectByValues_CatalogOrder(t *testing.T) {
	catalog, err := NewCatalog([]CatalogEntrySpec{
		{Tag: "national_id", ValuePattern: `\d{3}-?\d{2}-?\d{4}`},
		{Tag: "phone", ValuePattern: `\+?\d[\d\s().-]{7,}`},
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	got, ok := NewClassifier(catalog).DetectByValues([]string{"123-45-6789", "987-65-4321", "456-78-9012"})
	if !ok || got != TagNationalID {
		t.Errorf("DetectByValues() = (%q, %v), want national_id", got, ok)
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(DefaultCatalog())

	tests := []struct {
		name       string
		column     string
		values     []any
		wantOK     bool
		wantTags   []Tag
		wantReason []string
	}{
		{
			name:       "name match without matching values",
			column:     "user_email",
			values:     strs("x", "y", "z"),
			wantOK:     true,
			wantTags:   []Tag{TagEmail},
			wantReason: []string{"name:email"},
		},
		{
			name:       "value match on neutral name",
			column:     "contact_field",
			values:     strs("a@b.com", "c@d.com", "e@f.com", "hello"),
			wantOK:     true,
			wantTags:   []Tag{TagEmail},
			wantReason: []string{"value:email"},
		},
		{
			name:       "same tag from name and values is recorded once",
			column:     "email",
			values:     strs("a@b.com", "c@d.com", "e@f.com"),
			wantOK:     true,
			wantTags:   []Tag{TagEmail},
			wantReason: []string{"name:email"},
		},
		{
			name:       "different name and value tags are both kept",
			column:     "full_name",
			values:     strs("a@b.com", "c@d.com", "e@f.com"),
			wantOK:     true,
			wantTags:   []Tag{TagEmail, TagName},
			wantReason: []string{"name:name", "value:email"},
		},
		{
			name:       "whitespace fallback",
			column:     "customer",
			values:     strs("Ada Lovelace", "Alan Turing", "Grace Hopper", "Edsger Dijkstra", "Barbara Liskov"),
			wantOK:     true,
			wantTags:   []Tag{TagName},
			wantReason: []string{HeuristicReason},
		},
		{
			name:   "fallback needs five values with whitespace",
			column: "customer",
			values: strs("Ada Lovelace", "Alan Turing", "Grace Hopper", "Edsger Dijkstra", "Liskov"),
			wantOK: false,
		},
		{
			name:   "fallback skipped for non-textual columns",
			column: "amount",
			values: []any{1, 2, 3, 4, 5, 6},
			wantOK: false,
		},
		{
			name:       "all null column tagged by name",
			column:     "ssn",
			values:     []any{nil, nil, math.NaN()},
			wantOK:     true,
			wantTags:   []Tag{TagNationalID},
			wantReason: []string{"name:national_id"},
		},
		{
			name:       "zero rows tagged by name",
			column:     "phone",
			values:     nil,
			wantOK:     true,
			wantTags:   []Tag{TagPhone},
			wantReason: []string{"name:phone"},
		},
		{
			name:   "nothing detected",
			column: "status",
			values: strs("active", "inactive", "active"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Classify("users", tt.column, tt.values)
			if ok != tt.wantOK {
				t.Fatalf("Classify() ok = %v, want %v (got %+v)", ok, tt.wantOK, got)
			}
			if !ok {
				return
			}
			if got.Table != "users" || got.Column != tt.column {
				t.Errorf("Classify() location = %s.%s", got.Table, got.Column)
			}
			if !reflect.DeepEqual(got.Tags, tt.wantTags) {
				t.Errorf("Classify() tags = %v, want %v", got.Tags, tt.wantTags)
			}
			if !reflect.DeepEqual(got.Reason, tt.wantReason) {
				t.Errorf("Classify() reason = %v, want %v", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestClassifier_Classify_SampleWindow(t *testing.T) {
	c := NewClassifier(DefaultCatalog())
	emails := strs("a@b.com", "c@d.com", "e@f.com")

	t.Run("matches beyond the first 50 values are ignored", func(t *testing.T) {
		values := append(repeat("plain", ValueSampleSize), emails...)
		if got, ok := c.Classify("t", "field", values); ok {
			t.Errorf("Classify() = %+v, want no classification", got)
		}
	})

	t.Run("nulls do not consume the window", func(t *testing.T) {
		values := append(repeat(nil, 2*ValueSampleSize), emails...)
		got, ok := c.Classify("t", "field", values)
		if !ok || !got.HasTag(TagEmail) {
			t.Errorf("Classify() = (%+v, %v), want email", got, ok)
		}
	})

	t.Run("uncoercible values do not consume the window", func(t *testing.T) {
		values := append(repeat(struct{}{}, 2*ValueSampleSize), emails...)
		got, ok := c.Classify("t", "field", values)
		if !ok || !got.HasTag(TagEmail) {
			t.Errorf("Classify() = (%+v, %v), want email", got, ok)
		}
	})

	t.Run("fallback only looks at the first 20 values", func(t *testing.T) {
		values := append(repeat("x", HeuristicSampleSize), strs("a b", "c d", "e f", "g h", "i j")...)
		if got, ok := c.Classify("t", "field", values); ok {
			t.Errorf("Classify() = %+v, want no classification", got)
		}
	})
}

func TestSampleValues_StopsAtWindow(t *testing.T) {
	numbers := make([]any, ValueSampleSize)
	for i := range numbers {
		numbers[i] = i
	}

	tests := []struct {
		name        string
		values      []any
		wantLen     int
		wantTextual bool
	}{
		{
			name:        "strings after a full numeric window are not read",
			values:      append(numbers, strs("Alice Smith", "Bob Jones")...),
			wantLen:     ValueSampleSize,
			wantTextual: false,
		},
		{
			name:        "string inside the window",
			values:      append(strs("Alice Smith"), numbers[:10]...),
			wantLen:     11,
			wantTextual: true,
		},
		{
			name:        "nulls are skipped",
			values:      []any{nil, 1, nil, "x"},
			wantLen:     2,
			wantTextual: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, textual := sampleValues(tt.values, ValueSampleSize)
			if len(sample) != tt.wantLen || textual != tt.wantTextual {
				t.Errorf("sampleValues() = (%d values, textual %v), want (%d, %v)",
					len(sample), textual, tt.wantLen, tt.wantTextual)
			}
		})
	}

	c := NewClassifier(DefaultCatalog())
	values := append(numbers, strs("Alice Smith", "Bob Jones", "Carol King", "Dan Brown", "Eve Adams")...)
	if got, ok := c.Classify("t", "field", values); ok {
		t.Errorf("Classify() = %+v, want no classification", got)
	}
}

func TestCoerceText(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   string
		wantOK bool
	}{
		{"string", "abc", "abc", true},
		{"bytes", []byte("abc"), "abc", true},
		{"int", 42, "42", true},
		{"bool", true, "true", true},
		{"nil", nil, "", false},
		{"nan", math.NaN(), "", false},
		{"struct", struct{}{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceText(tt.value)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CoerceText(%v) = (%q, %v), want (%q, %v)", tt.value, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
