package toolrunner

import (
	"testing"

	"github.com/aa-workflow/slopscan/pkg/models"
)

func TestParseRadonSeverityMapping(t *testing.T) {
	input := `{"cache.py": [
		{"name": "fn_a", "complexity": 2, "rank": "A", "lineno": 1},
		{"name": "fn_c", "complexity": 12, "rank": "C", "lineno": 10},
		{"name": "fn_f", "complexity": 40, "rank": "F", "lineno": 20}
	]}`
	findings := parseRadon([]byte(input))
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings (A-rank skipped), got %d", len(findings))
	}
	if findings[0].Severity != models.SeverityMedium && findings[1].Severity != models.SeverityMedium {
		t.Errorf("expected a medium-severity (C rank) finding")
	}
	if findings[0].Severity != models.SeverityCritical && findings[1].Severity != models.SeverityCritical {
		t.Errorf("expected a critical-severity (F rank) finding")
	}
}

func TestParseVultureConfidenceMapping(t *testing.T) {
	input := "foo.py:10: unused variable 'x' (95% confidence)\n" +
		"foo.py:20: unused function 'bar' (75% confidence)\n" +
		"foo.py:30: unused import 'os' (50% confidence)\n"
	findings := parseVulture([]byte(input))
	if len(findings) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(findings))
	}
	want := []models.Severity{models.SeverityHigh, models.SeverityMedium, models.SeverityLow}
	for i, f := range findings {
		if f.Severity != want[i] {
			t.Errorf("finding %d severity = %s, want %s", i, f.Severity, want[i])
		}
	}
}

func TestParseBanditSeverityMapping(t *testing.T) {
	input := `{"results": [
		{"filename": "a.py", "line_number": 5, "issue_text": "hardcoded password", "issue_severity": "HIGH", "test_id": "B105", "more_info": "https://example.test"}
	]}`
	findings := parseBandit([]byte(input))
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Severity != models.SeverityCritical {
		t.Errorf("bandit HIGH should map to critical, got %s", findings[0].Severity)
	}
	if findings[0].Description != "hardcoded password [B105]" {
		t.Errorf("unexpected description: %s", findings[0].Description)
	}
}

func TestParseRuffCodePrefixMapping(t *testing.T) {
	input := `[
		{"filename": "a.py", "code": "E501", "message": "line too long", "location": {"row": 1}},
		{"filename": "a.py", "code": "F401", "message": "unused import", "location": {"row": 2}},
		{"filename": "a.py", "code": "W605", "message": "invalid escape", "location": {"row": 3}}
	]`
	findings := parseRuff([]byte(input))
	if len(findings) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(findings))
	}
	if findings[0].Severity != models.SeverityHigh || findings[1].Severity != models.SeverityHigh {
		t.Errorf("E* and F* codes should map to high severity")
	}
	if findings[2].Severity != models.SeverityMedium {
		t.Errorf("W* codes should map to medium severity")
	}
}

func TestParseToolsToleratesMalformedInput(t *testing.T) {
	for name, p := range parsers {
		if findings := p([]byte("not json at all")); findings != nil {
			t.Errorf("parser %s should return nil on malformed input, got %v", name, findings)
		}
	}
}

func TestParseKarpeslopSkipsLeadingNoise(t *testing.T) {
	input := "npm warn deprecated\n" + `{"issues": [{"pattern": "vibe_coding", "severity": "medium", "file": "x.ts", "line": 3, "message": "m", "fix": "f"}]}`
	findings := parseKarpeslop([]byte(input))
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Category != models.CategoryVibeCoding {
		t.Errorf("category = %s, want vibe_coding", findings[0].Category)
	}
}
