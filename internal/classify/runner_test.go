package classify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avatar-agent/internal/dataset"
	"avatar-agent/pkg"
)

// fakeModel returns a canned tool call per Generate invocation.
type fakeModel struct {
	calls     int
	responses []*schema.Message
	err       error
}

func (f *fakeModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.responses) {
		return nil, fmt.Errorf("unexpected call %d", f.calls)
	}
	out := f.responses[f.calls]
	f.calls++
	return out, nil
}

func (f *fakeModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("streaming not supported")
}

func (f *fakeModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return f, nil
}

func toolCallMessage(t *testing.T, c pkg.Classification) *schema.Message {
	t.Helper()
	args, err := sonic.MarshalString(&c)
	require.NoError(t, err)
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID: "call-1",
		Function: schema.FunctionCall{
			Name:      toolName,
			Arguments: args,
		},
	}})
}

func writeInput(t *testing.T, dir string, rows []pkg.ProjectRow) string {
	t.Helper()
	path := filepath.Join(dir, "input.csv")
	require.NoError(t, dataset.Write(path, rows, false))
	return path
}

func TestRunClassifiesAllRows(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, []pkg.ProjectRow{
		{RepoName: "owner/uno", Documentation: "API de pagos"},
		{RepoName: "owner/dos", Documentation: "Dashboard de métricas"},
	})
	output := filepath.Join(dir, "output.csv")
	metaPath := filepath.Join(dir, "metadata.json")

	fm := &fakeModel{responses: []*schema.Message{
		toolCallMessage(t, pkg.Classification{Domain: "Finanzas", Backend: []string{"FastAPI"}}),
		toolCallMessage(t, pkg.Classification{Domain: "DevOps"}),
	}}
	classifier, err := New(fm, 4000)
	require.NoError(t, err)

	runner := NewRunner(classifier, RunnerConfig{
		InputCSV:     input,
		OutputCSV:    output,
		MetadataJSON: metaPath,
		SaveEvery:    1,
	})
	require.NoError(t, runner.Run(context.Background()))

	rows, hasClassification, err := dataset.Read(output)
	require.NoError(t, err)
	assert.True(t, hasClassification)
	require.Len(t, rows, 2)

	var c pkg.Classification
	require.NoError(t, sonic.UnmarshalString(rows[0].ClassificationJSON, &c))
	assert.Equal(t, "Finanzas", c.Domain)

	metaData, err := os.ReadFile(metaPath)
	require.NoError(t, err)
	var meta pkg.PortfolioMetadata
	require.NoError(t, sonic.Unmarshal(metaData, &meta))
	assert.Equal(t, 2, meta.TotalProjects)
	assert.Equal(t, map[string]int{"Finanzas": 1, "DevOps": 1}, meta.Domains)
}

func TestRunResumesFromOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, []pkg.ProjectRow{
		{RepoName: "owner/uno"},
		{RepoName: "owner/dos"},
	})
	output := filepath.Join(dir, "output.csv")
	metaPath := filepath.Join(dir, "metadata.json")

	// A previous run already classified the first row.
	done, err := sonic.MarshalString(pkg.EmptyClassification())
	require.NoError(t, err)
	require.NoError(t, dataset.Write(output, []pkg.ProjectRow{
		{RepoName: "owner/uno", ClassificationJSON: done},
		{RepoName: "owner/dos"},
	}, true))

	fm := &fakeModel{responses: []*schema.Message{
		toolCallMessage(t, pkg.Classification{Domain: "Salud"}),
	}}
	classifier, err := New(fm, 4000)
	require.NoError(t, err)

	runner := NewRunner(classifier, RunnerConfig{
		InputCSV:     input,
		OutputCSV:    output,
		MetadataJSON: metaPath,
	})
	require.NoError(t, runner.Run(context.Background()))

	// Only the pending row triggered a model call.
	assert.Equal(t, 1, fm.calls)

	rows, _, err := dataset.Read(output)
	require.NoError(t, err)
	var c pkg.Classification
	require.NoError(t, sonic.UnmarshalString(rows[1].ClassificationJSON, &c))
	assert.Equal(t, "Salud", c.Domain)
}

func TestRunRecordsFallbackOnModelFailure(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, []pkg.ProjectRow{{RepoName: "owner/uno"}})
	output := filepath.Join(dir, "output.csv")
	metaPath := filepath.Join(dir, "metadata.json")

	fm := &fakeModel{err: fmt.Errorf("rate limited")}
	classifier, err := New(fm, 4000)
	require.NoError(t, err)

	runner := NewRunner(classifier, RunnerConfig{
		InputCSV:     input,
		OutputCSV:    output,
		MetadataJSON: metaPath,
	})
	require.NoError(t, runner.Run(context.Background()))

	rows, _, err := dataset.Read(output)
	require.NoError(t, err)
	var c pkg.Classification
	require.NoError(t, sonic.UnmarshalString(rows[0].ClassificationJSON, &c))
	assert.Equal(t, "Sin información suficiente", c.Purpose)
	assert.Equal(t, "No clasificado", c.Domain)
}
