package classify

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"

	"avatar-agent/internal/dataset"
	"avatar-agent/internal/logger"
	"avatar-agent/pkg"
)

// RunnerConfig controls a classification run over the dataset.
type RunnerConfig struct {
	InputCSV     string
	OutputCSV    string
	MetadataJSON string
	SaveEvery    int
	RequestPause time.Duration
}

// Runner walks the harvested dataset, classifies unprocessed rows and keeps
// the output file and metadata up to date.
type Runner struct {
	classifier *Classifier
	cfg        RunnerConfig
}

// NewRunner wires a classifier to a dataset run.
func NewRunner(classifier *Classifier, cfg RunnerConfig) *Runner {
	return &Runner{classifier: classifier, cfg: cfg}
}

// Run classifies every row that does not yet carry a valid classification.
// When the output file already exists the run resumes from it, so an
// interrupted run never repeats paid model calls. Progress is saved every
// SaveEvery rows and once more at the end.
func (r *Runner) Run(ctx context.Context) error {
	rows, err := r.loadRows()
	if err != nil {
		return err
	}

	pending := 0
	for _, row := range rows {
		if !hasValidClassification(row) {
			pending++
		}
	}
	logger.Info().
		Int("total", len(rows)).
		Int("pending", pending).
		Str("output", r.cfg.OutputCSV).
		Msg("starting classification run")

	processed := 0
	for i := range rows {
		if hasValidClassification(rows[i]) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		logger.Info().
			Str("repo", rows[i].RepoName).
			Int("remaining", pending-processed).
			Msg("classifying repository")

		classification, err := r.classifier.Classify(ctx, rows[i])
		if err != nil {
			logger.Error().Str("repo", rows[i].RepoName).Err(err).
				Msg("classification failed, recording fallback")
			classification = pkg.EmptyClassification()
		}

		encoded, err := sonic.MarshalString(classification)
		if err != nil {
			return fmt.Errorf("failed to encode classification for %s: %w", rows[i].RepoName, err)
		}
		rows[i].ClassificationJSON = encoded
		processed++

		if r.cfg.SaveEvery > 0 && processed%r.cfg.SaveEvery == 0 {
			if err := dataset.Write(r.cfg.OutputCSV, rows, true); err != nil {
				return err
			}
			logger.Info().Int("processed", processed).Msg("progress saved")
		}

		if r.cfg.RequestPause > 0 && processed < pending {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.cfg.RequestPause):
			}
		}
	}

	if err := dataset.Write(r.cfg.OutputCSV, rows, true); err != nil {
		return err
	}

	if err := r.writeMetadata(rows); err != nil {
		return err
	}

	logger.Info().
		Int("classified", processed).
		Int("total", len(rows)).
		Msg("classification run complete")
	return nil
}

// loadRows prefers the output file over the input so finished rows survive a
// restart.
func (r *Runner) loadRows() ([]pkg.ProjectRow, error) {
	if _, err := os.Stat(r.cfg.OutputCSV); err == nil {
		logger.Info().Str("path", r.cfg.OutputCSV).Msg("resuming from existing output")
		rows, _, err := dataset.Read(r.cfg.OutputCSV)
		return rows, err
	}

	rows, _, err := dataset.Read(r.cfg.InputCSV)
	return rows, err
}

func (r *Runner) writeMetadata(rows []pkg.ProjectRow) error {
	meta := BuildMetadata(rows)

	data, err := sonic.ConfigDefault.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(r.cfg.MetadataJSON, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	logger.Info().Str("path", r.cfg.MetadataJSON).Msg("metadata written")
	return nil
}

// hasValidClassification reports whether the row already carries a parseable
// classification, meaning a previous run finished it.
func hasValidClassification(row pkg.ProjectRow) bool {
	if row.ClassificationJSON == "" {
		return false
	}
	var c pkg.Classification
	return sonic.UnmarshalString(row.ClassificationJSON, &c) == nil
}
