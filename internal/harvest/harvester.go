// Package harvest builds the raw portfolio dataset from the authenticated
// GitHub user's repositories.
package harvest

import (
	"context"
	"fmt"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"avatar-agent/internal/dataset"
	"avatar-agent/internal/logger"
	"avatar-agent/pkg"
)

// Summary reports what a harvest run produced.
type Summary struct {
	Processed     int
	WithReadme    int
	WithoutReadme int
}

// Harvester fetches repositories and their READMEs.
type Harvester struct {
	client         *github.Client
	readmeMaxChars int
}

// New builds a Harvester authenticated with a GitHub token.
func New(ctx context.Context, token string, readmeMaxChars int) (*Harvester, error) {
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN environment variable is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Harvester{
		client:         github.NewClient(oauth2.NewClient(ctx, ts)),
		readmeMaxChars: readmeMaxChars,
	}, nil
}

// Run lists every repository of the authenticated user, extracts cleaned
// README text and writes the dataset CSV to outPath.
func (h *Harvester) Run(ctx context.Context, outPath string) (*Summary, error) {
	repos, err := h.listAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	rows := make([]pkg.ProjectRow, 0, len(repos))

	for _, repo := range repos {
		logger.Info().Str("repo", repo.GetFullName()).Msg("processing repository")

		row := pkg.ProjectRow{
			RepoName:   repo.GetFullName(),
			Private:    siNo(repo.GetPrivate()),
			HasReadme:  "No",
			SourceFile: "N/A",
			RepoURL:    repo.GetHTMLURL(),
		}
		if !repo.GetUpdatedAt().IsZero() {
			row.UpdatedAt = repo.GetUpdatedAt().Format("2006-01-02 15:04:05")
		}

		readme, err := h.fetchReadme(ctx, repo)
		if err != nil {
			logger.Warn().Str("repo", repo.GetFullName()).Msg("no README available")
			row.Documentation = dataset.NoDocumentation
			summary.WithoutReadme++
		} else {
			row.HasReadme = "Sí"
			row.SourceFile = "README.md"
			row.Documentation = CleanMarkdown(readme, h.readmeMaxChars)
			summary.WithReadme++
		}

		rows = append(rows, row)
		summary.Processed++
	}

	if err := dataset.Write(outPath, rows, false); err != nil {
		return nil, err
	}

	logger.Info().
		Int("processed", summary.Processed).
		Int("with_readme", summary.WithReadme).
		Int("without_readme", summary.WithoutReadme).
		Str("output", outPath).
		Msg("harvest complete")
	return summary, nil
}

func (h *Harvester) listAll(ctx context.Context) ([]*github.Repository, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var all []*github.Repository
	for {
		repos, resp, err := h.client.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories: %w", err)
		}
		all = append(all, repos...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func (h *Harvester) fetchReadme(ctx context.Context, repo *github.Repository) (string, error) {
	content, _, err := h.client.Repositories.GetReadme(ctx, repo.GetOwner().GetLogin(), repo.GetName(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to fetch README: %w", err)
	}

	text, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode README: %w", err)
	}
	return text, nil
}

func siNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}
