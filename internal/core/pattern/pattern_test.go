package pattern

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func textsOf(rs []Rewrite) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Text)
	}
	return out
}

func TestTransform_Table(t *testing.T) {
	tr := New(nil)
	tests := []struct {
		name     string
		in       string
		category string
		want     []string
		rule     string
	}{
		{
			name:     "modal with colon",
			in:       "The following requirements must be met:",
			category: CategoryPassive,
			want:     []string{"You must meet the following requirements:"},
			rule:     "modal_passive",
		},
		{
			name:     "modal with agent",
			in:       "The form must be signed by the manager.",
			category: CategoryModal,
			want:     []string{"The manager must sign the form."},
			rule:     "modal_passive",
		},
		{
			name:     "navigation uses synonym pool",
			in:       "You will be redirected to the home page.",
			category: CategoryPassive,
			want: []string{
				"The system redirects you to the home page.",
				"The system navigates you to the home page.",
				"The system directs you to the home page.",
			},
			rule: "navigation",
		},
		{
			name:     "it is used when",
			in:       "It is used when you need to export data.",
			category: "",
			want:     []string{"Use it when you need to export data."},
			rule:     "it_is_when",
		},
		{
			name:     "needs to be",
			in:       "The certificate needs to be renewed every year.",
			category: CategoryVerbForm,
			want:     []string{"You need to renew the certificate every year."},
			rule:     "needs_to_be",
		},
		{
			name:     "generic with agent and tail",
			in:       "The report is generated by the scheduler every night.",
			category: CategoryPassive,
			want:     []string{"The scheduler generates the report every night."},
			rule:     "generic_passive",
		},
		{
			name:     "generic past tense",
			in:       "The file was deleted.",
			category: CategoryPassive,
			want:     []string{"The system deleted the file."},
			rule:     "generic_passive",
		},
		{
			name:     "irregular past with agent",
			in:       "The message was sent by the server.",
			category: CategoryPassive,
			want:     []string{"The server sent the message."},
			rule:     "generic_passive",
		},
		{
			name:     "plural agent",
			in:       "The files are reviewed by the editors.",
			category: CategoryPassive,
			want:     []string{"The editors review the files."},
			rule:     "generic_passive",
		},
		{
			name:     "negation",
			in:       "Passwords are not stored.",
			category: CategoryPassive,
			want:     []string{"The system does not store passwords."},
			rule:     "generic_passive",
		},
		{
			name:     "adverb stays before verb",
			in:       "Passwords are never stored in plain text.",
			category: CategoryPassive,
			want:     []string{"The system never stores passwords in plain text."},
			rule:     "generic_passive",
		},
		{
			name:     "leading adverbial kept",
			in:       "After login, the dashboard is displayed.",
			category: CategoryPassive,
			want:     []string{"After login, the system displays the dashboard."},
			rule:     "generic_passive",
		},
		{
			name:     "sentence-initial noun lowered in object position",
			in:       "Data is stored in the cloud.",
			category: CategoryPassive,
			want:     []string{"The system stores data in the cloud."},
			rule:     "generic_passive",
		},
		{
			name:     "acronym subject keeps case",
			in:       "SQL is generated by the tool.",
			category: CategoryPassive,
			want:     []string{"The tool generates SQL."},
			rule:     "generic_passive",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tr.Transform(tc.in, tc.category)
			if diff := cmp.Diff(tc.want, textsOf(got)); diff != "" {
				t.Fatalf("Transform(%q) mismatch (-want +got):\n%s", tc.in, diff)
			}
			for _, r := range got {
				if r.Rule != tc.rule {
					t.Fatalf("rule = %q, want %q", r.Rule, tc.rule)
				}
			}
		})
	}
}

func TestTransform_RelativeClause(t *testing.T) {
	in := "Configured data sources- displays the number of data sources that are configured to OPC UA Connector."
	got := New(nil).Transform(in, CategoryPassive)
	if len(got) != 1 {
		t.Fatalf("want one rewrite, got %v", got)
	}
	s := got[0].Text
	if !strings.Contains(s, "the system configures") {
		t.Fatalf("rewrite %q should name the system as actor", s)
	}
	if !strings.Contains(s, "OPC UA Connector") {
		t.Fatalf("rewrite %q lost acronyms or proper noun casing", s)
	}
	if !strings.HasPrefix(s, "Configured data sources- displays") {
		t.Fatalf("rewrite %q changed the untouched prefix", s)
	}
}

func TestTransform_Declines(t *testing.T) {
	tr := New(nil)
	tests := []struct {
		name     string
		in       string
		category string
	}{
		{"two passives", "The file is saved and the report is generated.", CategoryPassive},
		{"semicolon", "The file is saved; the app closes.", CategoryPassive},
		{"unbalanced parens", "The file (cache is saved.", CategoryPassive},
		{"already active", "The system saves the file.", CategoryPassive},
		{"modal with you subject", "You must be logged in to continue.", CategoryModal},
		{"expletive it", "It is recommended that you restart.", CategoryPassive},
		{"modal with expletive it", "It must be noted that the value changes.", CategoryPassive},
		{"needs to be with expletive it", "It needs to be noted that the value changes.", CategoryVerbForm},
		{"adjectival participle", "The system is designed to scale.", CategoryPassive},
		{"based on", "The price is based on usage.", CategoryPassive},
		{"long sentence not handled", "The file is saved.", CategoryLong},
		{"unknown category", "The file is saved.", "tone"},
		{"empty", "   ", CategoryPassive},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tr.Transform(tc.in, tc.category); got != nil {
				t.Fatalf("Transform(%q) = %v, want nil", tc.in, got)
			}
		})
	}
}

func TestTransform_OutputsAreActiveAndStable(t *testing.T) {
	tr := New(nil)
	inputs := []string{
		"The following requirements must be met:",
		"You will be redirected to the home page.",
		"The report is generated every night.",
		"The certificate needs to be renewed every year.",
		"Configured data sources- displays the number of data sources that are configured to OPC UA Connector.",
	}
	for _, in := range inputs {
		out := tr.Transform(in, "")
		if len(out) == 0 {
			t.Fatalf("Transform(%q) returned nothing", in)
		}
		if len(out) > MaxRewrites {
			t.Fatalf("Transform(%q) returned %d rewrites", in, len(out))
		}
		for _, r := range out {
			if MatchesDetector(r.Text) || LooksPassive(r.Text) {
				t.Fatalf("rewrite %q still reads passive", r.Text)
			}
			if again := tr.Transform(r.Text, ""); again != nil {
				t.Fatalf("rewrite %q transformed again into %v", r.Text, again)
			}
		}
		if diff := cmp.Diff(out, tr.Transform(in, "")); diff != "" {
			t.Fatalf("Transform is not deterministic (-first +second):\n%s", diff)
		}
	}
}

func TestHandlesAndRules(t *testing.T) {
	tr := New(nil)
	want := []string{"modal_passive", "navigation", "it_is_when", "needs_to_be", "generic_passive"}
	if diff := cmp.Diff(want, tr.Rules()); diff != "" {
		t.Fatalf("Rules mismatch (-want +got):\n%s", diff)
	}
	for _, c := range []string{CategoryPassive, CategoryModal, CategoryVerbForm, CategoryOther, ""} {
		if !tr.Handles(c) {
			t.Fatalf("Handles(%q) = false", c)
		}
	}
	if tr.Handles(CategoryLong) {
		t.Fatalf("long sentences have no deterministic rule")
	}
}

func TestLooksPassive(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"The file is saved.", true},
		{"The text is written by hand.", true},
		{"The data was not fully processed.", true},
		{"The service is running.", false},
		{"The system saves the file.", false},
		{"The room is large.", false},
	}
	for _, tc := range tests {
		if got := LooksPassive(tc.in); got != tc.want {
			t.Fatalf("LooksPassive(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if MatchesDetector("The text is written by hand.") {
		t.Fatalf("detector regex only covers -ed participles")
	}
}
