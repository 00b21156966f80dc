package detector

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codesage/code-sage/internal/domain"
)

// PythonDetector runs the structural check battery for Python. There is
// no Python parser in the Go ecosystem, so the checks operate on an
// indentation-scanned model of the source instead of a full syntax
// tree. The battery mirrors the AST checks: bare except handlers,
// wildcard imports, mutable default arguments, identity comparison
// against non-singleton literals, function length, parameter count,
// and a branch-keyword complexity estimate.
type PythonDetector struct {
	limits Limits
}

// NewPythonDetector creates a Python detector with the given thresholds.
func NewPythonDetector(limits Limits) *PythonDetector {
	return &PythonDetector{limits: limits}
}

// Language implements Detector.
func (d *PythonDetector) Language() string { return "python" }

// CanAnalyze implements Detector.
func (d *PythonDetector) CanAnalyze(path string) bool {
	return hasExtension(path, ".py", ".pyw")
}

var (
	pyBareExcept     = regexp.MustCompile(`^\s*except\s*:`)
	pyWildcardImport = regexp.MustCompile(`^\s*from\s+[\w.]+\s+import\s+\*`)
	pyIsLiteral      = regexp.MustCompile(`\bis\s+(not\s+)?(\d|["'])`)
	pyDef            = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+(\w+)\s*\(`)
	pyBranchKeyword  = regexp.MustCompile(`\b(if|elif|for|while|and|or|except)\b`)
	pyMutableDefault = regexp.MustCompile(`=\s*(\[|\{|dict\(|list\(|set\()`)
)

// Detect implements Detector.
func (d *PythonDetector) Detect(path, content string) []domain.Issue {
	lines := splitLines(content)
	var issues []domain.Issue

	for idx, line := range lines {
		lineNo := idx + 1
		snippet := strings.TrimSpace(line)

		if pyBareExcept.MatchString(line) {
			issues = append(issues, domain.NewIssue(domain.IssueInput{
				RuleID:       "py-bare-except",
				Title:        "Bare except clause",
				Description:  "Bare except catches every exception, including SystemExit and KeyboardInterrupt",
				Severity:     domain.SeverityMedium,
				Category:     domain.CategoryBestPractice,
				SuggestedFix: "Catch a specific exception type, e.g. except ValueError:",
				AutoFixable:  true,
				CodeSnippet:  snippet,
				Location:     domain.Location{File: path, LineStart: lineNo, LineEnd: lineNo},
			}))
		}

		if pyWildcardImport.MatchString(line) {
			issues = append(issues, domain.NewIssue(domain.IssueInput{
				RuleID:       "py-wildcard-import",
				Title:        "Wildcard import",
				Description:  "Wildcard imports pollute the namespace and hide the origin of names",
				Severity:     domain.SeverityLow,
				Category:     domain.CategoryBestPractice,
				SuggestedFix: "Import the required names explicitly",
				CodeSnippet:  snippet,
				Location:     domain.Location{File: path, LineStart: lineNo, LineEnd: lineNo},
			}))
		}

		if !isPyComment(line) && pyIsLiteral.MatchString(line) {
			issues = append(issues, domain.NewIssue(domain.IssueInput{
				RuleID:       "py-is-literal",
				Title:        "Identity comparison with literal",
				Description:  "'is' compares object identity; comparing against a literal is almost always a value comparison",
				Severity:     domain.SeverityMedium,
				Category:     domain.CategoryBug,
				SuggestedFix: "Use == or != for value comparison",
				AutoFixable:  true,
				CodeSnippet:  snippet,
				Location:     domain.Location{File: path, LineStart: lineNo, LineEnd: lineNo},
			}))
		}
	}

	issues = append(issues, d.checkFunctions(path, lines)...)
	return issues
}

// pyFunction is one scanned function definition.
type pyFunction struct {
	name      string
	indent    int
	startLine int // 1-based line of the def
	endLine   int // 1-based last line of the body
	params    []string
}

func (d *PythonDetector) checkFunctions(path string, lines []string) []domain.Issue {
	var issues []domain.Issue
	for _, fn := range scanPyFunctions(lines) {
		if count := len(fn.params); count > d.limits.MaxParameters {
			issues = append(issues, domain.NewIssue(domain.IssueInput{
				RuleID:      "py-too-many-parameters",
				Title:       "Too many parameters",
				Description: fmt.Sprintf("Function %q has too many parameters: %d (max %d)", fn.name, count, d.limits.MaxParameters),
				Severity:    domain.SeverityLow,
				Category:    domain.CategoryCodeSmell,
				Location:    domain.Location{File: path, LineStart: fn.startLine, LineEnd: fn.startLine},
			}))
		}

		for _, param := range fn.params {
			if pyMutableDefault.MatchString(param) {
				issues = append(issues, domain.NewIssue(domain.IssueInput{
					RuleID:       "py-mutable-default",
					Title:        "Mutable default argument",
					Description:  fmt.Sprintf("Function %q uses a mutable default argument, shared across calls", fn.name),
					Severity:     domain.SeverityHigh,
					Category:     domain.CategoryBug,
					SuggestedFix: "Default to None and create the container inside the function",
					AutoFixable:  true,
					Location:     domain.Location{File: path, LineStart: fn.startLine, LineEnd: fn.startLine},
				}))
				break
			}
		}

		if length := fn.endLine - fn.startLine + 1; length > d.limits.MaxFunctionLength {
			issues = append(issues, domain.NewIssue(domain.IssueInput{
				RuleID:      "py-function-length",
				Title:       "Function too long",
				Description: fmt.Sprintf("Function %q is %d lines long (max %d)", fn.name, length, d.limits.MaxFunctionLength),
				Severity:    domain.SeverityLow,
				Category:    domain.CategoryCodeSmell,
				Location:    domain.Location{File: path, LineStart: fn.startLine, LineEnd: fn.endLine},
			}))
		}

		if complexity := pyComplexity(lines, fn); complexity > d.limits.MaxComplexity {
			issues = append(issues, domain.NewIssue(domain.IssueInput{
				RuleID:      "py-complexity",
				Title:       "Function too complex",
				Description: fmt.Sprintf("Function %q has an estimated complexity of %d (max %d)", fn.name, complexity, d.limits.MaxComplexity),
				Severity:    domain.SeverityMedium,
				Category:    domain.CategoryComplexity,
				Location:    domain.Location{File: path, LineStart: fn.startLine, LineEnd: fn.endLine},
			}))
		}
	}
	return issues
}

func scanPyFunctions(lines []string) []pyFunction {
	var functions []pyFunction
	for idx := 0; idx < len(lines); idx++ {
		match := pyDef.FindStringSubmatch(lines[idx])
		if match == nil {
			continue
		}
		fn := pyFunction{
			name:      match[2],
			indent:    len(match[1]),
			startLine: idx + 1,
		}
		fn.params = scanPyParams(lines, idx, strings.Index(lines[idx], "("))
		fn.endLine = scanPyBodyEnd(lines, idx, fn.indent)
		functions = append(functions, fn)
	}
	return functions
}

// scanPyParams collects the parameter list text from the opening paren
// of a def, possibly spanning lines, and splits it on top-level commas.
func scanPyParams(lines []string, defIdx, parenOffset int) []string {
	var builder strings.Builder
	depth := 0
	for idx := defIdx; idx < len(lines); idx++ {
		segment := lines[idx]
		if idx == defIdx {
			segment = segment[parenOffset:]
		}
		for _, r := range segment {
			switch r {
			case '(', '[', '{':
				depth++
				if depth == 1 {
					continue // drop the outer paren itself
				}
			case ')', ']', '}':
				depth--
				if depth == 0 {
					return splitTopLevel(builder.String())
				}
			}
			if depth >= 1 {
				builder.WriteRune(r)
			}
		}
		builder.WriteRune(' ')
	}
	return splitTopLevel(builder.String())
}

func splitTopLevel(params string) []string {
	var result []string
	depth := 0
	var current strings.Builder
	flush := func() {
		p := strings.TrimSpace(current.String())
		current.Reset()
		if p == "" || p == "*" {
			return
		}
		result = append(result, p)
	}
	for _, r := range params {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				flush()
				continue
			}
		}
		current.WriteRune(r)
	}
	flush()
	return result
}

// scanPyBodyEnd finds the last line indented deeper than the def.
func scanPyBodyEnd(lines []string, defIdx, defIndent int) int {
	end := defIdx + 1
	for idx := defIdx + 1; idx < len(lines); idx++ {
		line := lines[idx]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if indentWidth(line) <= defIndent {
			break
		}
		end = idx + 1
	}
	return end
}

func indentWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func pyComplexity(lines []string, fn pyFunction) int {
	complexity := 1
	for idx := fn.startLine; idx < fn.endLine && idx < len(lines); idx++ {
		line := lines[idx]
		if isPyComment(line) {
			continue
		}
		complexity += len(pyBranchKeyword.FindAllString(line, -1))
	}
	return complexity
}

func isPyComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}
