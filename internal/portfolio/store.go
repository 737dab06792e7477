// Package portfolio serves the classified project dataset to the agent tools
// and the HTTP API.
package portfolio

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bytedance/sonic"

	"avatar-agent/internal/dataset"
	"avatar-agent/internal/logger"
	"avatar-agent/pkg"
)

const defaultSearchLimit = 5

// project pairs a dataset row with its parsed classification. Rows whose
// classification JSON is invalid are loaded with a nil classification and
// skipped by Search.
type project struct {
	row            pkg.ProjectRow
	classification *pkg.Classification
}

// Store holds the classified portfolio in memory.
type Store struct {
	projects []project
	metadata *pkg.PortfolioMetadata
}

// NewStore loads the tagged CSV and the metadata JSON. Both files are
// optional: a missing dataset yields an empty store and the endpoints report
// "no projects available" instead of failing.
func NewStore(projectsCSV, metadataJSON string) *Store {
	s := &Store{}

	rows, _, err := dataset.Read(projectsCSV)
	if err != nil {
		logger.Warn().Str("path", projectsCSV).Err(err).Msg("projects dataset not available")
	} else {
		s.projects = make([]project, 0, len(rows))
		for _, row := range rows {
			p := project{row: row}
			if row.ClassificationJSON != "" {
				var c pkg.Classification
				if err := sonic.UnmarshalString(row.ClassificationJSON, &c); err == nil {
					p.classification = &c
				}
			}
			s.projects = append(s.projects, p)
		}
	}

	if data, err := os.ReadFile(metadataJSON); err != nil {
		logger.Warn().Str("path", metadataJSON).Err(err).Msg("portfolio metadata not available")
	} else {
		var meta pkg.PortfolioMetadata
		if err := sonic.Unmarshal(data, &meta); err != nil {
			logger.Warn().Str("path", metadataJSON).Err(err).Msg("portfolio metadata is not valid JSON")
		} else {
			s.metadata = &meta
		}
	}

	logger.Info().
		Int("projects", len(s.projects)).
		Bool("metadata", s.metadata != nil).
		Msg("portfolio store loaded")
	return s
}

// Size returns the number of loaded projects.
func (s *Store) Size() int {
	return len(s.projects)
}

// Search returns up to filter.Limit projects matching the filter, in dataset
// order.
func (s *Store) Search(filter pkg.SearchFilter) pkg.SearchResult {
	if len(s.projects) == 0 {
		return pkg.SearchResult{Error: "No hay proyectos disponibles"}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var hits []pkg.ProjectInfo
	for _, p := range s.projects {
		if p.classification == nil {
			continue
		}
		if !matches(p.classification, filter) {
			continue
		}

		hits = append(hits, projectInfo(p))
		if len(hits) >= limit {
			break
		}
	}

	return pkg.SearchResult{
		Found:    len(hits),
		Projects: hits,
		Total:    len(s.projects),
	}
}

func matches(c *pkg.Classification, filter pkg.SearchFilter) bool {
	if filter.Domain != "" && !strings.EqualFold(c.Domain, filter.Domain) {
		return false
	}

	if filter.Technology != "" {
		all := make([]string, 0, len(c.Backend)+len(c.Frontend)+len(c.Databases)+len(c.DevOps))
		all = append(all, c.Backend...)
		all = append(all, c.Frontend...)
		all = append(all, c.Databases...)
		all = append(all, c.DevOps...)
		if !containsFold(all, filter.Technology) {
			return false
		}
	}

	if filter.ProjectType != "" && !containsFold(c.ProjectTypes, filter.ProjectType) {
		return false
	}

	if filter.MLOnly && len(c.MLAI) == 0 {
		return false
	}

	return true
}

// containsFold reports whether any entry contains needle, case-insensitively.
func containsFold(entries []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e), needle) {
			return true
		}
	}
	return false
}

func projectInfo(p project) pkg.ProjectInfo {
	c := p.classification

	name := p.row.RepoName
	if i := strings.LastIndex(p.row.RepoURL, "/"); i >= 0 && i < len(p.row.RepoURL)-1 {
		name = p.row.RepoURL[i+1:]
	}

	features := c.Features
	if len(features) > 3 {
		features = features[:3]
	}

	return pkg.ProjectInfo{
		Name:      name,
		URL:       p.row.RepoURL,
		Purpose:   orDefault(c.Purpose, "Sin descripción"),
		Domain:    orDefault(c.Domain, "N/A"),
		Type:      strings.Join(c.ProjectTypes, ", "),
		Backend:   strings.Join(c.Backend, ", "),
		Frontend:  strings.Join(c.Frontend, ", "),
		Databases: strings.Join(c.Databases, ", "),
		MLAI:      strings.Join(c.MLAI, ", "),
		Features:  strings.Join(features, ", "),
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Expertise summarizes the portfolio metadata for the requested category:
// general, backend, frontend, ml or ia.
func (s *Store) Expertise(category string) map[string]any {
	if s.metadata == nil {
		return map[string]any{"error": "Metadata no disponible"}
	}

	meta := s.metadata
	total := meta.TotalProjects
	if total == 0 {
		total = 1
	}

	switch category {
	case "", "general":
		return map[string]any{
			"total_proyectos":        meta.TotalProjects,
			"estadisticas_generales": meta.Stats,
			"dominios_principales":   topN(meta.Domains, 10),
			"top_backend":            topN(meta.TopTechnologies.Backend, 10),
			"top_frontend":           topN(meta.TopTechnologies.Frontend, 5),
			"top_ml_ia":              topN(meta.TopTechnologies.MLAI, 10),
		}
	case "backend":
		return map[string]any{
			"tecnologias":        meta.TopTechnologies.Backend,
			"bases_datos":        meta.TopTechnologies.Databases,
			"proyectos_backend":  meta.Stats.WithBackend,
			"porcentaje":         percentage(meta.Stats.WithBackend, total),
		}
	case "frontend":
		return map[string]any{
			"tecnologias":        meta.TopTechnologies.Frontend,
			"proyectos_frontend": meta.Stats.WithFrontend,
			"porcentaje":         percentage(meta.Stats.WithFrontend, total),
		}
	case "ml", "ia":
		return map[string]any{
			"tecnologias_ml_ia": meta.TopTechnologies.MLAI,
			"proyectos_ml_ia":   meta.Stats.WithML,
			"porcentaje":        percentage(meta.Stats.WithML, total),
		}
	default:
		return map[string]any{"error": fmt.Sprintf("Categoría '%s' no reconocida", category)}
	}
}

func percentage(count, total int) string {
	return fmt.Sprintf("%.1f%%", float64(count)/float64(total)*100)
}

// topN keeps the n highest-count entries of a counter map.
func topN(counts map[string]int, n int) map[string]int {
	if len(counts) <= n {
		return counts
	}

	type kv struct {
		key   string
		count int
	}
	sorted := make([]kv, 0, len(counts))
	for k, v := range counts {
		sorted = append(sorted, kv{k, v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].key < sorted[j].key
	})

	out := make(map[string]int, n)
	for _, e := range sorted[:n] {
		out[e.key] = e.count
	}
	return out
}
