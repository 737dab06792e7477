// Package dataset reads and writes the portfolio CSV files. The column set and
// value conventions are the on-disk contract between the pipeline commands and
// the avatar server, so they never change shape here.
package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"avatar-agent/pkg"
)

// Dataset column headers, in file order.
const (
	ColRepoName       = "repo_nombre"
	ColPrivate        = "es_privado"
	ColHasReadme      = "tiene_readme"
	ColDocumentation  = "documentacion"
	ColSourceFile     = "archivo_origen"
	ColUpdatedAt      = "fecha_actualizacion"
	ColRepoURL        = "url_repositorio"
	ColClassification = "clasificacion_dinamica"
)

// NoDocumentation is recorded for repositories without a README.
const NoDocumentation = "Sin documentación disponible"

// utf8BOM is written at the start of every file; spreadsheet tools expect it
// for accented text (the dataset was always produced as utf-8-sig).
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func header(withClassification bool) []string {
	h := []string{
		ColRepoName, ColPrivate, ColHasReadme, ColDocumentation,
		ColSourceFile, ColUpdatedAt, ColRepoURL,
	}
	if withClassification {
		h = append(h, ColClassification)
	}
	return h
}

// Write saves rows to path, creating parent directories as needed. When
// withClassification is set the clasificacion_dinamica column is included.
func Write(path string, rows []pkg.ProjectRow, withClassification bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header(withClassification)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.RepoName, row.Private, row.HasReadme, row.Documentation,
			row.SourceFile, row.UpdatedAt, row.RepoURL,
		}
		if withClassification {
			record = append(record, row.ClassificationJSON)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", row.RepoName, err)
		}
	}

	w.Flush()
	return w.Error()
}

// Read loads a dataset file. Files with or without the classification column
// are both accepted; the second return value reports whether it was present.
func Read(path string) ([]pkg.ProjectRow, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read dataset file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse dataset CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, false, fmt.Errorf("dataset file is empty: %s", path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}
	for _, required := range header(false) {
		if _, ok := cols[required]; !ok {
			return nil, false, fmt.Errorf("dataset is missing column %q", required)
		}
	}
	_, hasClassification := cols[ColClassification]

	field := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	rows := make([]pkg.ProjectRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, pkg.ProjectRow{
			RepoName:           field(record, ColRepoName),
			Private:            field(record, ColPrivate),
			HasReadme:          field(record, ColHasReadme),
			Documentation:      field(record, ColDocumentation),
			SourceFile:         field(record, ColSourceFile),
			UpdatedAt:          field(record, ColUpdatedAt),
			RepoURL:            field(record, ColRepoURL),
			ClassificationJSON: field(record, ColClassification),
		})
	}

	return rows, hasClassification, nil
}
