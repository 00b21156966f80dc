package detector

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"

	"github.com/codesage/code-sage/internal/domain"
)

// GoDetector analyzes Go source through the real AST. A parse failure
// is itself a finding: it yields exactly one critical issue at the
// parser's reported position rather than failing the file.
type GoDetector struct {
	limits Limits
}

// NewGoDetector creates a Go detector with the given thresholds.
func NewGoDetector(limits Limits) *GoDetector {
	return &GoDetector{limits: limits}
}

// Language implements Detector.
func (d *GoDetector) Language() string { return "go" }

// CanAnalyze implements Detector.
func (d *GoDetector) CanAnalyze(path string) bool {
	return hasExtension(path, ".go")
}

// Detect implements Detector.
func (d *GoDetector) Detect(path, content string) []domain.Issue {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, content, parser.ParseComments)
	if err != nil {
		return []domain.Issue{d.parseErrorIssue(path, err)}
	}

	var issues []domain.Issue
	ast.Inspect(file, func(node ast.Node) bool {
		fn, ok := node.(*ast.FuncDecl)
		if !ok {
			return true
		}
		issues = append(issues, d.checkFunction(path, fset, fn)...)
		return true
	})
	return issues
}

func (d *GoDetector) parseErrorIssue(path string, err error) domain.Issue {
	line, column := 1, 0
	message := err.Error()
	if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
		line = list[0].Pos.Line
		column = list[0].Pos.Column
		message = list[0].Msg
	}
	return domain.NewIssue(domain.IssueInput{
		RuleID:      "go-syntax-error",
		Title:       "Syntax error",
		Description: fmt.Sprintf("File does not parse: %s", message),
		Severity:    domain.SeverityCritical,
		Category:    domain.CategoryBug,
		Location: domain.Location{
			File:        path,
			LineStart:   line,
			LineEnd:     line,
			ColumnStart: column,
		},
	})
}

// checkFunction runs the structural battery against one function.
// Each check is independent and append-only; none depends on another
// check's findings.
func (d *GoDetector) checkFunction(path string, fset *token.FileSet, fn *ast.FuncDecl) []domain.Issue {
	var issues []domain.Issue

	start := fset.Position(fn.Pos())
	end := fset.Position(fn.End())
	name := fn.Name.Name

	if length := end.Line - start.Line + 1; length > d.limits.MaxFunctionLength {
		issues = append(issues, domain.NewIssue(domain.IssueInput{
			RuleID:      "go-function-length",
			Title:       "Function too long",
			Description: fmt.Sprintf("Function %q is %d lines long (max %d)", name, length, d.limits.MaxFunctionLength),
			Severity:    domain.SeverityLow,
			Category:    domain.CategoryCodeSmell,
			Location:    domain.Location{File: path, LineStart: start.Line, LineEnd: end.Line},
		}))
	}

	if params := countParameters(fn); params > d.limits.MaxParameters {
		issues = append(issues, domain.NewIssue(domain.IssueInput{
			RuleID:      "go-too-many-parameters",
			Title:       "Too many parameters",
			Description: fmt.Sprintf("Function %q has too many parameters: %d (max %d)", name, params, d.limits.MaxParameters),
			Severity:    domain.SeverityLow,
			Category:    domain.CategoryCodeSmell,
			Location:    domain.Location{File: path, LineStart: start.Line, LineEnd: start.Line},
		}))
	}

	if complexity := cyclomaticComplexity(fn); complexity > d.limits.MaxComplexity {
		issues = append(issues, domain.NewIssue(domain.IssueInput{
			RuleID:      "go-complexity",
			Title:       "Function too complex",
			Description: fmt.Sprintf("Function %q has cyclomatic complexity %d (max %d)", name, complexity, d.limits.MaxComplexity),
			Severity:    domain.SeverityMedium,
			Category:    domain.CategoryComplexity,
			Location:    domain.Location{File: path, LineStart: start.Line, LineEnd: end.Line},
		}))
	}

	return issues
}

func countParameters(fn *ast.FuncDecl) int {
	if fn.Type.Params == nil {
		return 0
	}
	count := 0
	for _, field := range fn.Type.Params.List {
		// An unnamed parameter still counts as one.
		if len(field.Names) == 0 {
			count++
			continue
		}
		count += len(field.Names)
	}
	return count
}

// cyclomaticComplexity counts decision points plus one.
func cyclomaticComplexity(fn *ast.FuncDecl) int {
	complexity := 1
	ast.Inspect(fn, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.CaseClause, *ast.CommClause:
			complexity++
		case *ast.BinaryExpr:
			if n.Op == token.LAND || n.Op == token.LOR {
				complexity++
			}
		}
		return true
	})
	return complexity
}
