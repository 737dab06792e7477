// Package classify enriches the harvested dataset with LLM-generated project
// classifications and aggregates portfolio metadata.
package classify

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"avatar-agent/internal/logger"
	"avatar-agent/pkg"
)

const (
	toolName = "clasificar_proyecto"

	maxAttempts  = 3
	retryBackoff = 2 * time.Second
)

const systemPrompt = "You are an expert software architect who analyzes projects technically. " +
	"You identify technologies, frameworks, purpose and application domain precisely. " +
	"You never assume: you only report what is documented."

// classificationToolInfo declares the structured output the model must
// produce. Field names are the dataset contract.
func classificationToolInfo() *schema.ToolInfo {
	stringArray := func(desc string) *schema.ParameterInfo {
		return &schema.ParameterInfo{
			Type:     schema.Array,
			ElemInfo: &schema.ParameterInfo{Type: schema.String},
			Desc:     desc,
		}
	}

	return &schema.ToolInfo{
		Name: toolName,
		Desc: "Classify a software project by technologies, purpose, domain and key characteristics",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"proposito_principal": {
				Type:     schema.String,
				Desc:     "Main goal of the project in one clear sentence",
				Required: true,
			},
			"dominio_aplicacion": {
				Type:     schema.String,
				Desc:     "Domain or industry, e.g. E-commerce, Finanzas, Salud, DevOps, Data Science",
				Required: true,
			},
			"tipo_proyecto": {
				Type:     schema.Array,
				ElemInfo: &schema.ParameterInfo{Type: schema.String},
				Desc:     "Project type(s), e.g. API REST, Full Stack Web, CLI Tool, Bot, Dashboard",
				Required: true,
			},
			"tecnologias_backend":    stringArray("Backend frameworks and technologies identified"),
			"tecnologias_frontend":   stringArray("Frontend frameworks and technologies identified"),
			"bases_datos":            stringArray("Databases used"),
			"ml_ia":                  stringArray("ML/AI technologies if any"),
			"devops_cloud":           stringArray("DevOps and cloud tooling"),
			"funcionalidades_clave":  stringArray("Key technical features"),
			"lenguajes_programacion": stringArray("Main programming languages"),
			"tags_adicionales":       stringArray("Other relevant tags"),
		}),
	}
}

// Classifier asks a chat model to classify repositories through a single
// bound tool call.
type Classifier struct {
	model       model.ToolCallingChatModel
	docMaxChars int
}

// New binds the classification tool to the chat model.
func New(chatModel model.ToolCallingChatModel, docMaxChars int) (*Classifier, error) {
	bound, err := chatModel.WithTools([]*schema.ToolInfo{classificationToolInfo()})
	if err != nil {
		return nil, fmt.Errorf("error binding classification tool: %w", err)
	}
	return &Classifier{model: bound, docMaxChars: docMaxChars}, nil
}

// Classify returns the structured classification for one repository. The
// model call is retried up to maxAttempts; after that the caller records the
// empty classification so the run keeps going.
func (c *Classifier) Classify(ctx context.Context, row pkg.ProjectRow) (*pkg.Classification, error) {
	prompt := c.buildPrompt(row)

	var result *pkg.Classification
	attempt := 0

	operation := func() error {
		attempt++

		out, err := c.model.Generate(ctx, []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(prompt),
		})
		if err != nil {
			logger.Warn().Int("attempt", attempt).Err(err).Msg("classification request failed")
			return err
		}

		if len(out.ToolCalls) == 0 {
			logger.Warn().Int("attempt", attempt).Msg("model skipped the classification tool")
			return fmt.Errorf("model did not call %s", toolName)
		}

		var classification pkg.Classification
		args := out.ToolCalls[0].Function.Arguments
		if err := sonic.UnmarshalString(args, &classification); err != nil {
			return fmt.Errorf("invalid tool arguments: %w", err)
		}

		result = &classification
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(retryBackoff), maxAttempts-1), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("classification failed after %d attempts: %w", attempt, err)
	}

	return result, nil
}

func (c *Classifier) buildPrompt(row pkg.ProjectRow) string {
	name := row.RepoName
	if name == "" {
		name = "Sin nombre"
	}

	doc := []rune(row.Documentation)
	if c.docMaxChars > 0 && len(doc) > c.docMaxChars {
		doc = doc[:c.docMaxChars]
	}

	return fmt.Sprintf(`Analyze this GitHub project in depth and classify it using the '%s' function.

**PROJECT INFORMATION:**
- Repository name: %s
- Full documentation:
%s

**INSTRUCTIONS:**
1. Read ALL the content carefully
2. Identify the REAL purpose of the project (do not assume, read the documentation)
3. Extract ALL the technologies mentioned, never invent any
4. If there is no information for a category, leave its array empty
5. Be specific: not just "backend", name the exact framework
6. For ML/AI: identify models, ML libraries, AI APIs
7. For features: identify concrete technical capabilities

**IMPORTANT:** Use the '%s' function to return the structured classification.`,
		toolName, name, string(doc), toolName)
}
