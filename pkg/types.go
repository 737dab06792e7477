package pkg

// Portfolio domain types shared between the pipeline, the store and the API.
//
// JSON and CSV field names are the dataset contract: the classification pipeline
// writes them and the avatar server reads them back, so they are kept exactly as
// the dataset was originally produced (Spanish keys, Sí/No flags).

// Classification is the structured description of one repository as returned by
// the clasificar_proyecto tool call.
type Classification struct {
	Purpose      string   `json:"proposito_principal"`
	Domain       string   `json:"dominio_aplicacion"`
	ProjectTypes []string `json:"tipo_proyecto"`
	Backend      []string `json:"tecnologias_backend"`
	Frontend     []string `json:"tecnologias_frontend"`
	Databases    []string `json:"bases_datos"`
	MLAI         []string `json:"ml_ia"`
	DevOps       []string `json:"devops_cloud"`
	Features     []string `json:"funcionalidades_clave"`
	Languages    []string `json:"lenguajes_programacion"`
	ExtraTags    []string `json:"tags_adicionales"`
}

// EmptyClassification is the fallback recorded when the model could not
// classify a repository, so a failed row never blocks the pipeline.
func EmptyClassification() *Classification {
	return &Classification{
		Purpose:      "Sin información suficiente",
		Domain:       "No clasificado",
		ProjectTypes: []string{},
		Backend:      []string{},
		Frontend:     []string{},
		Databases:    []string{},
		MLAI:         []string{},
		DevOps:       []string{},
		Features:     []string{},
		Languages:    []string{},
		ExtraTags:    []string{},
	}
}

// ProjectRow is one row of the harvested dataset CSV. ClassificationJSON is
// empty until the classify step has processed the row.
type ProjectRow struct {
	RepoName           string
	Private            string
	HasReadme          string
	Documentation      string
	SourceFile         string
	UpdatedAt          string
	RepoURL            string
	ClassificationJSON string
}

// SearchFilter narrows a portfolio search. Zero values mean "no filter".
type SearchFilter struct {
	Domain      string
	Technology  string
	ProjectType string
	MLOnly      bool
	Limit       int
}

// ProjectInfo is a single search hit as exposed by the API and the
// search_projects tool.
type ProjectInfo struct {
	Name      string `json:"nombre"`
	URL       string `json:"url"`
	Purpose   string `json:"proposito"`
	Domain    string `json:"dominio"`
	Type      string `json:"tipo"`
	Backend   string `json:"tecnologias_backend"`
	Frontend  string `json:"tecnologias_frontend"`
	Databases string `json:"bases_datos"`
	MLAI      string `json:"ml_ia"`
	Features  string `json:"funcionalidades"`
}

// SearchResult wraps search hits with portfolio totals.
type SearchResult struct {
	Found    int           `json:"encontrados"`
	Projects []ProjectInfo `json:"proyectos"`
	Total    int           `json:"total_portafolio"`
	Error    string        `json:"error,omitempty"`
}

// TopTechnologies groups technology counters by category.
type TopTechnologies struct {
	Backend   map[string]int `json:"backend"`
	Frontend  map[string]int `json:"frontend"`
	Databases map[string]int `json:"bases_datos"`
	MLAI      map[string]int `json:"ml_ia"`
	DevOps    map[string]int `json:"devops_cloud"`
}

// PortfolioStats holds coarse per-portfolio counts derived from the
// classifications.
type PortfolioStats struct {
	WithBackend  int `json:"proyectos_con_backend"`
	WithFrontend int `json:"proyectos_con_frontend"`
	WithML       int `json:"proyectos_con_ml_ia"`
	FullStack    int `json:"proyectos_full_stack"`
}

// PortfolioMetadata is the aggregate file produced by the classify step and
// consumed by the expertise endpoint.
type PortfolioMetadata struct {
	TotalProjects   int             `json:"total_proyectos"`
	GeneratedAt     string          `json:"fecha_generacion"`
	Domains         map[string]int  `json:"dominios_aplicacion"`
	ProjectTypes    map[string]int  `json:"tipos_proyecto"`
	TopTechnologies TopTechnologies `json:"top_tecnologias"`
	CommonFeatures  map[string]int  `json:"funcionalidades_mas_comunes"`
	Languages       map[string]int  `json:"lenguajes_programacion"`
	Stats           PortfolioStats  `json:"estadisticas"`
}
