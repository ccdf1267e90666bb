package help

import (
	"strings"
	"testing"
)

func TestQUICKREFNonEmpty(t *testing.T) {
	if len(QUICKREF) == 0 {
		t.Fatal("QUICKREF is empty")
	}
}

func TestQUICKREFContainsVersion(t *testing.T) {
	if !strings.Contains(QUICKREF, Version) {
		t.Errorf("QUICKREF does not contain version string %s", Version)
	}
}

func TestQUICKREFListsTopics(t *testing.T) {
	for _, topic := range TopicList {
		if !strings.Contains(QUICKREF, topic) {
			t.Errorf("QUICKREF does not mention topic %q", topic)
		}
	}
}

func TestTopicListMatchesTopics(t *testing.T) {
	for _, name := range TopicList {
		if _, ok := Topics[name]; !ok {
			t.Errorf("TopicList entry %q not in Topics map", name)
		}
	}
	if len(Topics) != len(TopicList) {
		t.Errorf("expected %d topics, got %d", len(TopicList), len(Topics))
	}
}

func TestTopicsNonEmpty(t *testing.T) {
	for name, content := range Topics {
		if len(content) == 0 {
			t.Errorf("topic %q has empty content", name)
		}
	}
}

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"syntax", "syntax"},
		{"diag", "diagnostics"},
		{"ex", "examples"},
		{"  Natives ", "natives"},
		{"f", "functions"},
	}
	for _, tt := range tests {
		name, content, err := MatchTopic(tt.query)
		if err != nil {
			t.Errorf("MatchTopic(%q): %v", tt.query, err)
			continue
		}
		if name != tt.want {
			t.Errorf("MatchTopic(%q) = %q, want %q", tt.query, name, tt.want)
		}
		if content == "" {
			t.Errorf("MatchTopic(%q) returned empty content", tt.query)
		}
	}
}

func TestMatchTopicErrors(t *testing.T) {
	for _, query := range []string{"nonexistent", "", "s"} {
		if _, _, err := MatchTopic(query); err == nil {
			t.Errorf("MatchTopic(%q): expected error", query)
		}
	}
	_, _, err := MatchTopic("s")
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguity error for 's', got %v", err)
	}
}

func TestNativesIndex(t *testing.T) {
	idx := NativesIndex()
	for _, want := range []string{"clock()", "max(a, b)", "typeof(a)", "Total: 6 functions"} {
		if !strings.Contains(idx, want) {
			t.Errorf("NativesIndex missing %q:\n%s", want, idx)
		}
	}
	if !strings.Contains(Topics["natives"], idx) {
		t.Error("natives topic should embed the index")
	}
}
