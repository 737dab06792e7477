package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full non-secret configuration, loaded from config.yaml.
type Config struct {
	Log          LogConfig          `yaml:"log"`
	Server       ServerConfig       `yaml:"server"`
	Model        ModelConfig        `yaml:"model"`
	Profile      ProfileConfig      `yaml:"profile"`
	Portfolio    PortfolioConfig    `yaml:"portfolio"`
	Conversation ConversationConfig `yaml:"conversation"`
	Pipeline     PipelineConfig     `yaml:"pipeline"`
}

// LogConfig controls the global zerolog logger.
type LogConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // console or json
	Output     string `yaml:"output"`      // stdout, stderr or file
	FilePath   string `yaml:"file_path"`   // used when output is file
	TimeFormat string `yaml:"time_format"` // rfc3339, unix or iso8601
}

// ServerConfig holds the two HTTP listeners: the JSON API and the chat widget.
type ServerConfig struct {
	APIAddr    string `yaml:"api_addr"`
	WidgetAddr string `yaml:"widget_addr"`
	// APIBaseURL is the URL the widget page uses to reach the chat API.
	APIBaseURL string `yaml:"api_base_url"`
}

// ModelConfig selects the chat model behind the avatar and the classifier.
type ModelConfig struct {
	Provider    string  `yaml:"provider"` // openai, deepseek, ollama, ark
	Name        string  `yaml:"name"`
	BaseURL     string  `yaml:"base_url"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// ProfileConfig points at the persona source documents.
type ProfileConfig struct {
	Name        string `yaml:"name"`
	SummaryPath string `yaml:"summary_path"`
	LinkedInPDF string `yaml:"linkedin_pdf"`
}

// PortfolioConfig points at the classified dataset the avatar answers from.
type PortfolioConfig struct {
	ProjectsCSV  string `yaml:"projects_csv"`
	MetadataJSON string `yaml:"metadata_json"`
}

// ConversationConfig controls Redis-backed session history.
type ConversationConfig struct {
	TTL      time.Duration `yaml:"ttl"`
	MaxTurns int           `yaml:"max_turns"`
}

// PipelineConfig controls the harvest and classify commands.
type PipelineConfig struct {
	HarvestCSV     string        `yaml:"harvest_csv"`
	ReadmeMaxChars int           `yaml:"readme_max_chars"`
	Classifier     ModelConfig   `yaml:"classifier"`
	DocMaxChars    int           `yaml:"doc_max_chars"`
	SaveEvery      int           `yaml:"save_every"`
	RequestPause   time.Duration `yaml:"request_pause"`
}

// Load reads the YAML config file and applies defaults for anything omitted.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stdout",
			TimeFormat: "rfc3339",
		},
		Server: ServerConfig{
			APIAddr:    ":8000",
			WidgetAddr: ":7865",
			APIBaseURL: "http://localhost:8000",
		},
		Model: ModelConfig{
			Provider:    "openai",
			Name:        "gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0.7,
		},
		Profile: ProfileConfig{
			SummaryPath: "me/summary.txt",
			LinkedInPDF: "me/linkedin.pdf",
		},
		Portfolio: PortfolioConfig{
			ProjectsCSV:  "datasets/resumen/repos_con_tags_dinamicos.csv",
			MetadataJSON: "datasets/resumen/metadata_dinamica.json",
		},
		Conversation: ConversationConfig{
			TTL:      40 * time.Minute,
			MaxTurns: 10,
		},
		Pipeline: PipelineConfig{
			HarvestCSV:     "datasets/repos_documentacion.csv",
			ReadmeMaxChars: 2500,
			Classifier: ModelConfig{
				Provider:    "deepseek",
				Name:        "deepseek-chat",
				BaseURL:     "https://api.deepseek.com",
				MaxTokens:   2048,
				Temperature: 0.2,
			},
			DocMaxChars:  4000,
			SaveEvery:    5,
			RequestPause: 700 * time.Millisecond,
		},
	}
}
