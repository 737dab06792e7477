package classify

import (
	"sort"
	"time"

	"github.com/bytedance/sonic"

	"avatar-agent/pkg"
)

// Counter caps per metadata section. Domains and project types are kept in
// full; technology lists are trimmed to the most frequent entries.
const (
	topBackend   = 15
	topFrontend  = 15
	topDatabases = 10
	topMLAI      = 15
	topDevOps    = 15
	topFeatures  = 20
	topLanguages = 10
)

// BuildMetadata aggregates classified rows into the portfolio metadata file
// consumed by the expertise endpoint.
func BuildMetadata(rows []pkg.ProjectRow) *pkg.PortfolioMetadata {
	domains := counter{}
	projectTypes := counter{}
	backend := counter{}
	frontend := counter{}
	databases := counter{}
	mlai := counter{}
	devops := counter{}
	features := counter{}
	languages := counter{}

	stats := pkg.PortfolioStats{}
	total := 0

	for _, row := range rows {
		var c pkg.Classification
		if row.ClassificationJSON == "" ||
			sonic.UnmarshalString(row.ClassificationJSON, &c) != nil {
			continue
		}
		total++

		domains.add(c.Domain)
		projectTypes.addAll(c.ProjectTypes)
		backend.addAll(c.Backend)
		frontend.addAll(c.Frontend)
		databases.addAll(c.Databases)
		mlai.addAll(c.MLAI)
		devops.addAll(c.DevOps)
		features.addAll(c.Features)
		languages.addAll(c.Languages)

		hasBackend := len(c.Backend) > 0
		hasFrontend := len(c.Frontend) > 0
		if hasBackend {
			stats.WithBackend++
		}
		if hasFrontend {
			stats.WithFrontend++
		}
		if len(c.MLAI) > 0 {
			stats.WithML++
		}
		if hasBackend && hasFrontend {
			stats.FullStack++
		}
	}

	return &pkg.PortfolioMetadata{
		TotalProjects: total,
		GeneratedAt:   time.Now().Format(time.RFC3339),
		Domains:       map[string]int(domains),
		ProjectTypes:  map[string]int(projectTypes),
		TopTechnologies: pkg.TopTechnologies{
			Backend:   topN(backend, topBackend),
			Frontend:  topN(frontend, topFrontend),
			Databases: topN(databases, topDatabases),
			MLAI:      topN(mlai, topMLAI),
			DevOps:    topN(devops, topDevOps),
		},
		CommonFeatures: topN(features, topFeatures),
		Languages:      topN(languages, topLanguages),
		Stats:          stats,
	}
}

type counter map[string]int

func (c counter) add(value string) {
	if value != "" {
		c[value]++
	}
}

func (c counter) addAll(values []string) {
	for _, v := range values {
		c.add(v)
	}
}

// topN keeps the n most frequent entries, breaking count ties by name so the
// output is stable between runs.
func topN(c counter, n int) map[string]int {
	if len(c) <= n {
		return map[string]int(c)
	}

	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(c))
	for name, count := range c {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	top := make(map[string]int, n)
	for _, e := range entries[:n] {
		top[e.name] = e.count
	}
	return top
}
