package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Secrets are credentials pulled from the environment. A .env file in the
// working directory is loaded first, matching how the service is deployed.
type Secrets struct {
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	DeepSeekAPIKey string `envconfig:"DEEPSEEK_API_KEY"`
	ArkAPIKey      string `envconfig:"ARK_API_KEY"`
	OllamaBaseURL  string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	GitHubToken    string `envconfig:"GITHUB_TOKEN"`
	PushoverToken  string `envconfig:"PUSHOVER_TOKEN"`
	PushoverUser   string `envconfig:"PUSHOVER_USER"`
	RedisURL       string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
}

// LoadSecrets loads .env (if present) and resolves the secret set from the
// environment. Which keys are actually required depends on the component:
// callers validate the ones they need.
func LoadSecrets() (*Secrets, error) {
	// Missing .env is fine: production deployments inject real env vars.
	_ = godotenv.Load()

	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}

	return &s, nil
}

// APIKeyFor returns the credential matching a model provider, or an error when
// the provider needs a key that is not set. Ollama runs without credentials.
func (s *Secrets) APIKeyFor(provider string) (string, error) {
	switch provider {
	case "openai":
		if s.OpenAIAPIKey == "" {
			return "", fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
		return s.OpenAIAPIKey, nil
	case "deepseek":
		if s.DeepSeekAPIKey == "" {
			return "", fmt.Errorf("DEEPSEEK_API_KEY environment variable is required")
		}
		return s.DeepSeekAPIKey, nil
	case "ark":
		if s.ArkAPIKey == "" {
			return "", fmt.Errorf("ARK_API_KEY environment variable is required")
		}
		return s.ArkAPIKey, nil
	case "ollama":
		return "", nil
	default:
		return "", fmt.Errorf("unknown model provider: %s", provider)
	}
}
