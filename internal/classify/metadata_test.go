package classify

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avatar-agent/pkg"
)

func rowWith(t *testing.T, c pkg.Classification) pkg.ProjectRow {
	t.Helper()
	encoded, err := sonic.MarshalString(&c)
	require.NoError(t, err)
	return pkg.ProjectRow{RepoName: "owner/repo", ClassificationJSON: encoded}
}

func TestBuildMetadata(t *testing.T) {
	rows := []pkg.ProjectRow{
		rowWith(t, pkg.Classification{
			Domain:       "E-commerce",
			ProjectTypes: []string{"Full Stack Web"},
			Backend:      []string{"FastAPI"},
			Frontend:     []string{"React"},
			Languages:    []string{"Python", "TypeScript"},
		}),
		rowWith(t, pkg.Classification{
			Domain:       "Data Science",
			ProjectTypes: []string{"API REST"},
			Backend:      []string{"FastAPI"},
			MLAI:         []string{"scikit-learn"},
			Languages:    []string{"Python"},
		}),
		{RepoName: "owner/unclassified"},
		{RepoName: "owner/broken", ClassificationJSON: "{bad"},
	}

	meta := BuildMetadata(rows)

	assert.Equal(t, 2, meta.TotalProjects)
	assert.NotEmpty(t, meta.GeneratedAt)
	assert.Equal(t, map[string]int{"E-commerce": 1, "Data Science": 1}, meta.Domains)
	assert.Equal(t, 2, meta.TopTechnologies.Backend["FastAPI"])
	assert.Equal(t, map[string]int{"Python": 2, "TypeScript": 1}, meta.Languages)

	assert.Equal(t, 2, meta.Stats.WithBackend)
	assert.Equal(t, 1, meta.Stats.WithFrontend)
	assert.Equal(t, 1, meta.Stats.WithML)
	assert.Equal(t, 1, meta.Stats.FullStack)
}

func TestBuildMetadataEmpty(t *testing.T) {
	meta := BuildMetadata(nil)

	assert.Zero(t, meta.TotalProjects)
	assert.Empty(t, meta.Domains)
	assert.Zero(t, meta.Stats.FullStack)
}

func TestTopNKeepsHighestCounts(t *testing.T) {
	c := counter{"a": 5, "b": 3, "c": 3, "d": 1}

	got := topN(c, 2)

	assert.Equal(t, map[string]int{"a": 5, "b": 3}, got)
}

func TestTopNUnderLimit(t *testing.T) {
	c := counter{"a": 1}
	assert.Equal(t, map[string]int{"a": 1}, topN(c, 10))
}

func TestHasValidClassification(t *testing.T) {
	assert.False(t, hasValidClassification(pkg.ProjectRow{}))
	assert.False(t, hasValidClassification(pkg.ProjectRow{ClassificationJSON: "{oops"}))
	assert.True(t, hasValidClassification(rowWith(t, pkg.Classification{Domain: "DevOps"})))
}
