package toolrunner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aa-workflow/slopscan/pkg/models"
)

// parser converts one tool's raw stdout into normalized findings. A parser
// must never propagate a parse error past this boundary: malformed or
// unexpected output yields an empty slice, not an error.
type parser func(stdout []byte) []models.Finding

var parsers = map[string]parser{
	"radon":         parseRadon,
	"vulture":       parseVulture,
	"bandit":        parseBandit,
	"ruff":          parseRuff,
	"mypy":          parseMypy,
	"jscpd":         parseJSCPD,
	"slop-detector": parseSlopDetector,
	"karpeslop":     parseKarpeslop,
}

// --- radon: cyclomatic complexity, JSON keyed by file -> []block ---

type radonBlock struct {
	Name       string `json:"name"`
	Complexity int    `json:"complexity"`
	Rank       string `json:"rank"`
	Lineno     int    `json:"lineno"`
}

func radonSeverity(rank string) (models.Severity, bool) {
	switch rank {
	case "A", "B":
		return "", false
	case "C":
		return models.SeverityMedium, true
	case "D":
		return models.SeverityHigh, true
	case "E", "F":
		return models.SeverityCritical, true
	default:
		return "", false
	}
}

func parseRadon(stdout []byte) []models.Finding {
	var byFile map[string][]radonBlock
	if err := json.Unmarshal(stdout, &byFile); err != nil {
		return nil
	}
	var findings []models.Finding
	for file, blocks := range byFile {
		for _, b := range blocks {
			sev, ok := radonSeverity(b.Rank)
			if !ok {
				continue
			}
			findings = append(findings, models.Finding{
				File:        file,
				Line:        b.Lineno,
				Category:    models.CategoryComplexity,
				Severity:    sev,
				Description: fmt.Sprintf("Function '%s' has complexity grade %s (CC=%d)", b.Name, b.Rank, b.Complexity),
			})
		}
	}
	return findings
}

// --- vulture: dead code, line-oriented text output ---

var vultureLine = regexp.MustCompile(`^(.+?):(\d+): (.+?) \((\d+)% confidence\)`)

func vultureSeverity(confidence int) models.Severity {
	switch {
	case confidence >= 90:
		return models.SeverityHigh
	case confidence >= 70:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func parseVulture(stdout []byte) []models.Finding {
	var findings []models.Finding
	for _, line := range strings.Split(string(stdout), "\n") {
		m := vultureLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		confidence, _ := strconv.Atoi(m[4])
		findings = append(findings, models.Finding{
			File:        m[1],
			Line:        lineNo,
			Category:    models.CategoryDeadCode,
			Severity:    vultureSeverity(confidence),
			Description: m[3],
		})
	}
	return findings
}

// --- bandit: security, JSON {results: [...]} ---

type banditResult struct {
	Filename   string `json:"filename"`
	LineNumber int    `json:"line_number"`
	IssueText  string `json:"issue_text"`
	IssueSeverity string `json:"issue_severity"`
	TestID     string `json:"test_id"`
	MoreInfo   string `json:"more_info"`
}

type banditOutput struct {
	Results []banditResult `json:"results"`
}

func banditSeverity(s string) models.Severity {
	switch strings.ToLower(s) {
	case "high":
		return models.SeverityCritical
	case "medium":
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}

func parseBandit(stdout []byte) []models.Finding {
	var out banditOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil
	}
	findings := make([]models.Finding, 0, len(out.Results))
	for _, r := range out.Results {
		findings = append(findings, models.Finding{
			File:        r.Filename,
			Line:        r.LineNumber,
			Category:    models.CategorySecurity,
			Severity:    banditSeverity(r.IssueSeverity),
			Description: fmt.Sprintf("%s [%s]", r.IssueText, r.TestID),
			Suggestion:  r.MoreInfo,
		})
	}
	return findings
}

// --- ruff: lint, JSON array ---

type ruffIssue struct {
	Filename string `json:"filename"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Location struct {
		Row int `json:"row"`
	} `json:"location"`
}

func ruffSeverity(code string) models.Severity {
	switch {
	case strings.HasPrefix(code, "E"), strings.HasPrefix(code, "F"):
		return models.SeverityHigh
	case strings.HasPrefix(code, "W"):
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func parseRuff(stdout []byte) []models.Finding {
	var issues []ruffIssue
	if err := json.Unmarshal(stdout, &issues); err != nil {
		return nil
	}
	findings := make([]models.Finding, 0, len(issues))
	for _, i := range issues {
		findings = append(findings, models.Finding{
			File:        i.Filename,
			Line:        i.Location.Row,
			Category:    models.CategoryStyleIssues,
			Severity:    ruffSeverity(i.Code),
			Description: fmt.Sprintf("[%s] %s", i.Code, i.Message),
		})
	}
	return findings
}

// --- mypy: type checker, line-oriented text output ---

var mypyLine = regexp.MustCompile(`^(.+?):(\d+):(\d+): (error|warning|note): (.+)`)

func mypySeverity(kind string) models.Severity {
	switch kind {
	case "error":
		return models.SeverityHigh
	case "warning":
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func parseMypy(stdout []byte) []models.Finding {
	var findings []models.Finding
	for _, line := range strings.Split(string(stdout), "\n") {
		m := mypyLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		findings = append(findings, models.Finding{
			File:        m[1],
			Line:        lineNo,
			Category:    models.CategoryTypeIssues,
			Severity:    mypySeverity(m[4]),
			Description: m[5],
		})
	}
	return findings
}

// --- jscpd: duplication, JSON {duplicates: [...]} ---

type jscpdFragment struct {
	FirstFile struct {
		Name       string `json:"name"`
		StartLoc   struct{ Line int `json:"line"` } `json:"startLoc"`
	} `json:"firstFile"`
	SecondFile struct {
		Name     string `json:"name"`
		StartLoc struct{ Line int `json:"line"` } `json:"startLoc"`
	} `json:"secondFile"`
	Lines int `json:"lines"`
}

type jscpdOutput struct {
	Duplicates []jscpdFragment `json:"duplicates"`
}

func jscpdSeverity(lines int) models.Severity {
	switch {
	case lines >= 50:
		return models.SeverityCritical
	case lines >= 20:
		return models.SeverityHigh
	case lines >= 10:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func parseJSCPD(stdout []byte) []models.Finding {
	var out jscpdOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil
	}
	findings := make([]models.Finding, 0, len(out.Duplicates))
	for _, d := range out.Duplicates {
		findings = append(findings, models.Finding{
			File:     d.FirstFile.Name,
			Line:     d.FirstFile.StartLoc.Line,
			Category: models.CategoryCodeDuplication,
			Severity: jscpdSeverity(d.Lines),
			Description: fmt.Sprintf("%d duplicate lines shared with %s:%d",
				d.Lines, d.SecondFile.Name, d.SecondFile.StartLoc.Line),
		})
	}
	return findings
}

// --- slop-detector: dedicated tier-1 detector, JSON {issues: [...]} ---
// Pass-through: the tool already emits category/severity/description in the
// shape the store expects.

type slopDetectorIssue struct {
	File        string `json:"file"`
	Line        int    `json:"line"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
}

type slopDetectorOutput struct {
	Issues []slopDetectorIssue `json:"issues"`
}

func parseSlopDetector(stdout []byte) []models.Finding {
	var out slopDetectorOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil
	}
	findings := make([]models.Finding, 0, len(out.Issues))
	for _, issue := range out.Issues {
		findings = append(findings, models.Finding{
			File:        issue.File,
			Line:        issue.Line,
			Category:    models.Category(issue.Category),
			Severity:    models.Severity(issue.Severity),
			Description: issue.Description,
			Suggestion:  issue.Suggestion,
		})
	}
	return findings
}

// --- karpeslop: tier-1 TS/JS detector, JSON embedded in free-form stdout ---

type karpeslopIssue struct {
	Pattern  string `json:"pattern"`
	Severity string `json:"severity"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
	Fix      string `json:"fix"`
}

type karpeslopOutput struct {
	Issues []karpeslopIssue `json:"issues"`
}

func parseKarpeslop(stdout []byte) []models.Finding {
	start := strings.IndexByte(string(stdout), '{')
	if start < 0 {
		return nil
	}
	var out karpeslopOutput
	if err := json.Unmarshal(stdout[start:], &out); err != nil {
		return nil
	}
	findings := make([]models.Finding, 0, len(out.Issues))
	for _, issue := range out.Issues {
		findings = append(findings, models.Finding{
			File:        issue.File,
			Line:        issue.Line,
			Category:    models.Category(issue.Pattern),
			Severity:    models.Severity(issue.Severity),
			Description: issue.Message,
			Suggestion:  issue.Fix,
		})
	}
	return findings
}
