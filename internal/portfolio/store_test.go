package portfolio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avatar-agent/internal/dataset"
	"avatar-agent/pkg"
)

func classifiedRow(t *testing.T, name, url string, c pkg.Classification) pkg.ProjectRow {
	t.Helper()
	encoded, err := sonic.MarshalString(&c)
	require.NoError(t, err)
	return pkg.ProjectRow{
		RepoName:           name,
		Private:            "No",
		HasReadme:          "Sí",
		Documentation:      "docs",
		SourceFile:         "README.md",
		RepoURL:            url,
		ClassificationJSON: encoded,
	}
}

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "repos.csv")
	metaPath := filepath.Join(dir, "metadata.json")

	rows := []pkg.ProjectRow{
		classifiedRow(t, "owner/tienda", "https://github.com/owner/tienda", pkg.Classification{
			Purpose:      "Tienda online",
			Domain:       "E-commerce",
			ProjectTypes: []string{"Full Stack Web"},
			Backend:      []string{"FastAPI"},
			Frontend:     []string{"React"},
			Databases:    []string{"PostgreSQL"},
			Features:     []string{"carrito", "pagos", "envíos", "facturas"},
		}),
		classifiedRow(t, "owner/predictor", "https://github.com/owner/predictor", pkg.Classification{
			Purpose:      "Predicción de demanda",
			Domain:       "Data Science",
			ProjectTypes: []string{"API REST"},
			Backend:      []string{"FastAPI"},
			MLAI:         []string{"scikit-learn"},
		}),
		// Unparseable classification: loaded but never matched.
		{
			RepoName:           "owner/broken",
			RepoURL:            "https://github.com/owner/broken",
			ClassificationJSON: "{not json",
		},
	}
	require.NoError(t, dataset.Write(csvPath, rows, true))

	meta := pkg.PortfolioMetadata{
		TotalProjects: 2,
		Domains:       map[string]int{"E-commerce": 1, "Data Science": 1},
		TopTechnologies: pkg.TopTechnologies{
			Backend: map[string]int{"FastAPI": 2},
			MLAI:    map[string]int{"scikit-learn": 1},
		},
		Stats: pkg.PortfolioStats{WithBackend: 2, WithFrontend: 1, WithML: 1, FullStack: 1},
	}
	data, err := sonic.Marshal(&meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(metaPath, data, 0644))

	return NewStore(csvPath, metaPath)
}

func TestSearchNoFilter(t *testing.T) {
	s := testStore(t)

	result := s.Search(pkg.SearchFilter{})

	assert.Empty(t, result.Error)
	assert.Equal(t, 2, result.Found)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, "tienda", result.Projects[0].Name)
}

func TestSearchByDomain(t *testing.T) {
	s := testStore(t)

	result := s.Search(pkg.SearchFilter{Domain: "e-commerce"})

	require.Equal(t, 1, result.Found)
	assert.Equal(t, "tienda", result.Projects[0].Name)
	assert.Equal(t, "Tienda online", result.Projects[0].Purpose)
}

func TestSearchByTechnologyIsSubstring(t *testing.T) {
	s := testStore(t)

	result := s.Search(pkg.SearchFilter{Technology: "postgres"})

	require.Equal(t, 1, result.Found)
	assert.Equal(t, "tienda", result.Projects[0].Name)
}

func TestSearchMLOnly(t *testing.T) {
	s := testStore(t)

	result := s.Search(pkg.SearchFilter{MLOnly: true})

	require.Equal(t, 1, result.Found)
	assert.Equal(t, "predictor", result.Projects[0].Name)
}

func TestSearchLimit(t *testing.T) {
	s := testStore(t)

	result := s.Search(pkg.SearchFilter{Limit: 1})

	assert.Equal(t, 1, result.Found)
}

func TestSearchFeaturesCapped(t *testing.T) {
	s := testStore(t)

	result := s.Search(pkg.SearchFilter{Domain: "E-commerce"})

	require.Equal(t, 1, result.Found)
	assert.Equal(t, "carrito, pagos, envíos", result.Projects[0].Features)
}

func TestSearchEmptyStore(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "missing.csv"), filepath.Join(dir, "missing.json"))

	result := s.Search(pkg.SearchFilter{})

	assert.Equal(t, "No hay proyectos disponibles", result.Error)
	assert.Zero(t, s.Size())
}

func TestExpertiseGeneral(t *testing.T) {
	s := testStore(t)

	got := s.Expertise("general")

	assert.Equal(t, 2, got["total_proyectos"])
	assert.Contains(t, got, "dominios_principales")
	assert.Contains(t, got, "top_backend")
}

func TestExpertiseBackend(t *testing.T) {
	s := testStore(t)

	got := s.Expertise("backend")

	assert.Equal(t, 2, got["proyectos_backend"])
	assert.Equal(t, "100.0%", got["porcentaje"])
}

func TestExpertiseML(t *testing.T) {
	s := testStore(t)

	got := s.Expertise("ml")

	assert.Equal(t, 1, got["proyectos_ml_ia"])
	assert.Equal(t, "50.0%", got["porcentaje"])
}

func TestExpertiseUnknownCategory(t *testing.T) {
	s := testStore(t)

	got := s.Expertise("quantum")

	assert.Equal(t, "Categoría 'quantum' no reconocida", got["error"])
}

func TestExpertiseWithoutMetadata(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "missing.csv"), filepath.Join(dir, "missing.json"))

	got := s.Expertise("general")

	assert.Equal(t, "Metadata no disponible", got["error"])
}
