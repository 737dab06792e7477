package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"

	"avatar-agent/internal/logger"
	"avatar-agent/internal/notify"
	"avatar-agent/internal/portfolio"
	"avatar-agent/pkg"
)

// Toolbox wires the four avatar tools to the portfolio store and the
// notification channel.
type Toolbox struct {
	store    *portfolio.Store
	notifier notify.Notifier
}

// NewToolbox creates the toolbox backing the agent's tool calls.
func NewToolbox(store *portfolio.Store, notifier notify.Notifier) *Toolbox {
	return &Toolbox{store: store, notifier: notifier}
}

type recorded struct {
	Recorded string `json:"recorded"`
}

type userDetailsArgs struct {
	Email string `json:"email" jsonschema:"required,description=Email address provided by the visitor"`
	Name  string `json:"name" jsonschema:"description=Name of the visitor if given"`
	Notes string `json:"notes" jsonschema:"description=Extra context about the visitor's interest"`
}

// RecordUserDetailsTool notifies the owner when a visitor leaves contact data.
func (t *Toolbox) RecordUserDetailsTool() tool.BaseTool {
	tl, _ := utils.InferTool("record_user_details", "Record contact information of an interested visitor.",
		func(ctx context.Context, args *userDetailsArgs) (*recorded, error) {
			name := args.Name
			if name == "" {
				name = "Nombre no indicado"
			}
			notes := args.Notes
			if notes == "" {
				notes = "no proporcionadas"
			}

			msg := fmt.Sprintf("📧 Contacto: %s | Email: %s | Notas: %s", name, args.Email, notes)
			if err := t.notifier.Send(msg); err != nil {
				logger.Error().Err(err).Msg("failed to deliver contact notification")
			}
			return &recorded{Recorded: "ok"}, nil
		})
	return tl
}

type unknownQuestionArgs struct {
	Question string `json:"question" jsonschema:"required,description=The question the avatar could not answer"`
}

// RecordUnknownQuestionTool notifies the owner about unanswered questions.
func (t *Toolbox) RecordUnknownQuestionTool() tool.BaseTool {
	tl, _ := utils.InferTool("record_unknown_question", "Record a question that could not be answered.",
		func(ctx context.Context, args *unknownQuestionArgs) (*recorded, error) {
			msg := fmt.Sprintf("❓ Pregunta sin respuesta: %s", args.Question)
			if err := t.notifier.Send(msg); err != nil {
				logger.Error().Err(err).Msg("failed to deliver unknown-question notification")
			}
			return &recorded{Recorded: "ok"}, nil
		})
	return tl
}

type searchProjectsArgs struct {
	Dominio      string `json:"dominio" jsonschema:"description=Application domain such as E-commerce or Finanzas"`
	Tecnologia   string `json:"tecnologia" jsonschema:"description=Technology such as FastAPI or React or PostgreSQL"`
	TipoProyecto string `json:"tipo_proyecto" jsonschema:"description=Project type such as API REST or Dashboard or Bot"`
	IncluyeML    bool   `json:"incluye_ml" jsonschema:"description=Only return projects that use ML or AI"`
	Limit        int    `json:"limit" jsonschema:"description=Maximum number of projects to return"`
}

// SearchProjectsTool searches the classified portfolio.
func (t *Toolbox) SearchProjectsTool() tool.BaseTool {
	tl, _ := utils.InferTool("search_projects", "Search portfolio projects by domain, technology or project type.",
		func(ctx context.Context, args *searchProjectsArgs) (pkg.SearchResult, error) {
			logger.Debug().
				Str("dominio", args.Dominio).
				Str("tecnologia", args.Tecnologia).
				Str("tipo", args.TipoProyecto).
				Msg("search_projects tool invoked")

			return t.store.Search(pkg.SearchFilter{
				Domain:      args.Dominio,
				Technology:  args.Tecnologia,
				ProjectType: args.TipoProyecto,
				MLOnly:      args.IncluyeML,
				Limit:       args.Limit,
			}), nil
		})
	return tl
}

type expertiseArgs struct {
	Categoria string `json:"categoria" jsonschema:"description=Expertise category,enum=general,enum=backend,enum=frontend,enum=ml,enum=ia"`
}

// TechnicalExpertiseTool reports aggregate portfolio statistics.
func (t *Toolbox) TechnicalExpertiseTool() tool.BaseTool {
	tl, _ := utils.InferTool("get_technical_expertise", "Show technical expertise and portfolio statistics.",
		func(ctx context.Context, args *expertiseArgs) (map[string]any, error) {
			return t.store.Expertise(args.Categoria), nil
		})
	return tl
}

// All returns every tool the agent can call.
func (t *Toolbox) All() []tool.BaseTool {
	return []tool.BaseTool{
		t.RecordUserDetailsTool(),
		t.RecordUnknownQuestionTool(),
		t.SearchProjectsTool(),
		t.TechnicalExpertiseTool(),
	}
}
