package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesage/code-sage/internal/adapter/cli"
	"github.com/codesage/code-sage/internal/domain"
	"github.com/codesage/code-sage/internal/usecase/analyze"
)

type analyzerStub struct {
	request analyze.Request
	opts    cli.AnalyzerOptions
	result  domain.ProjectResult
	err     error
}

func (a *analyzerStub) AnalyzeProject(ctx context.Context, req analyze.Request) (domain.ProjectResult, error) {
	a.request = req
	return a.result, a.err
}

type rendererStub struct {
	rendered *domain.ProjectResult
	output   string
}

func (r *rendererStub) Render(out io.Writer, result *domain.ProjectResult) error {
	r.rendered = result
	_, err := io.WriteString(out, r.output)
	return err
}

func newDeps(stub *analyzerStub, renderer cli.Renderer) cli.Dependencies {
	return cli.Dependencies{
		NewAnalyzer: func(opts cli.AnalyzerOptions) (cli.ProjectAnalyzer, error) {
			stub.opts = opts
			return stub, nil
		},
		Renderers: map[string]cli.Renderer{"console": renderer},
		Args:      cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
		Version:   "v1.2.3",
	}
}

func TestVersionFlag(t *testing.T) {
	var out bytes.Buffer
	deps := newDeps(&analyzerStub{}, &rendererStub{})
	deps.Args = cli.Arguments{OutWriter: &out, ErrWriter: io.Discard}

	root := cli.NewRootCommand(deps)
	root.SetArgs([]string{"--version"})

	err := root.Execute()

	assert.ErrorIs(t, err, cli.ErrVersionRequested)
	assert.Contains(t, out.String(), "v1.2.3")
}

func TestAnalyzeCommandInvokesAnalyzer(t *testing.T) {
	stub := &analyzerStub{}
	renderer := &rendererStub{output: "report\n"}

	var out bytes.Buffer
	deps := newDeps(stub, renderer)
	deps.Args = cli.Arguments{OutWriter: &out, ErrWriter: io.Discard}

	root := cli.NewRootCommand(deps)
	root.SetArgs([]string{"analyze", ".", "--severity", "medium", "--no-security", "--workers", "2"})

	err := root.Execute()

	require.NoError(t, err)
	assert.Equal(t, domain.SeverityMedium, stub.request.Filter.MinSeverity)
	assert.True(t, filepath.IsAbs(stub.request.RootPath))
	assert.False(t, stub.opts.Security)
	assert.Equal(t, 2, stub.opts.Workers)
	assert.NotNil(t, renderer.rendered)
	assert.Contains(t, out.String(), "report")
}

func TestAnalyzeCommandRejectsBadSeverity(t *testing.T) {
	root := cli.NewRootCommand(newDeps(&analyzerStub{}, &rendererStub{}))
	root.SetArgs([]string{"analyze", ".", "--severity", "catastrophic"})

	err := root.Execute()

	assert.Error(t, err)
}

func TestAnalyzeCommandRejectsUnknownFormat(t *testing.T) {
	root := cli.NewRootCommand(newDeps(&analyzerStub{}, &rendererStub{}))
	root.SetArgs([]string{"analyze", ".", "--format", "xml"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestAnalyzeCommandFailOnCritical(t *testing.T) {
	stub := &analyzerStub{result: domain.ProjectResult{
		Summary: domain.Summary{BySeverity: map[domain.Severity]int{domain.SeverityCritical: 2}},
	}}
	root := cli.NewRootCommand(newDeps(stub, &rendererStub{}))
	root.SetArgs([]string{"analyze", ".", "--fail-on-critical"})

	err := root.Execute()

	assert.ErrorIs(t, err, cli.ErrCriticalIssues)
}

func TestAnalyzeCommandNoCriticalNoError(t *testing.T) {
	stub := &analyzerStub{result: domain.ProjectResult{
		Summary: domain.Summary{BySeverity: map[domain.Severity]int{domain.SeverityLow: 1}},
	}}
	root := cli.NewRootCommand(newDeps(stub, &rendererStub{}))
	root.SetArgs([]string{"analyze", ".", "--fail-on-critical"})

	assert.NoError(t, root.Execute())
}

func TestAnalyzeCommandPropagatesAnalyzerError(t *testing.T) {
	stub := &analyzerStub{err: errors.New("walk failed")}
	root := cli.NewRootCommand(newDeps(stub, &rendererStub{}))
	root.SetArgs([]string{"analyze", "."})

	err := root.Execute()

	assert.ErrorContains(t, err, "walk failed")
}

func TestAnalyzeCommandWritesToFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "report.txt")

	renderer := &rendererStub{output: "file report\n"}
	root := cli.NewRootCommand(newDeps(&analyzerStub{}, renderer))
	root.SetArgs([]string{"analyze", ".", "--output", target})

	require.NoError(t, root.Execute())

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "file report\n", string(content))
}

func TestAnalyzeCommandUsesConfiguredOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	renderer := &rendererStub{output: "dir report\n"}
	deps := newDeps(&analyzerStub{}, renderer)
	deps.DefaultOutputDir = dir

	root := cli.NewRootCommand(deps)
	root.SetArgs([]string{"analyze", "."})

	require.NoError(t, root.Execute())

	content, err := os.ReadFile(filepath.Join(dir, "sage-report.txt"))
	require.NoError(t, err)
	assert.Equal(t, "dir report\n", string(content))
}

func TestAnalyzeCommandOutputFlagOverridesConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "explicit.txt")

	renderer := &rendererStub{output: "explicit report\n"}
	deps := newDeps(&analyzerStub{}, renderer)
	deps.DefaultOutputDir = filepath.Join(dir, "unused")

	root := cli.NewRootCommand(deps)
	root.SetArgs([]string{"analyze", ".", "--output", target})

	require.NoError(t, root.Execute())

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "explicit report\n", string(content))
	assert.NoDirExists(t, filepath.Join(dir, "unused"))
}

func TestInitCommandWritesConfig(t *testing.T) {
	dir := t.TempDir()

	root := cli.NewRootCommand(newDeps(&analyzerStub{}, &rendererStub{}))
	root.SetArgs([]string{"init", dir})

	require.NoError(t, root.Execute())

	content, err := os.ReadFile(filepath.Join(dir, "sage.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "analysis:")

	// Refuses to clobber an existing config without --force.
	root = cli.NewRootCommand(newDeps(&analyzerStub{}, &rendererStub{}))
	root.SetArgs([]string{"init", dir})
	assert.Error(t, root.Execute())
}

type historyStub struct {
	runs []cli.RunSummary
}

func (h historyStub) ListRuns(ctx context.Context, limit int) ([]cli.RunSummary, error) {
	if limit < len(h.runs) {
		return h.runs[:limit], nil
	}
	return h.runs, nil
}

func TestHistoryCommand(t *testing.T) {
	var out bytes.Buffer
	deps := newDeps(&analyzerStub{}, &rendererStub{})
	deps.Args = cli.Arguments{OutWriter: &out, ErrWriter: io.Discard}
	deps.History = historyStub{runs: []cli.RunSummary{
		{ID: "r1", RootPath: "/work/demo", TotalFiles: 4, TotalIssues: 2, Critical: 1},
	}}

	root := cli.NewRootCommand(deps)
	root.SetArgs([]string{"history"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "/work/demo")
	assert.Contains(t, out.String(), "critical=1")
}

func TestHistoryCommandDisabled(t *testing.T) {
	root := cli.NewRootCommand(newDeps(&analyzerStub{}, &rendererStub{}))
	root.SetArgs([]string{"history"})

	err := root.Execute()

	assert.ErrorContains(t, err, "disabled")
}
