// Package agent implements the avatar: a persona-prompted chat model with
// portfolio tools.
package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"avatar-agent/internal/logger"
	"avatar-agent/internal/profile"
)

// maxToolRounds bounds the generate/execute loop so a model that keeps
// requesting tools cannot spin forever.
const maxToolRounds = 8

// Agent answers visitor questions in the owner's voice, calling tools for
// portfolio lookups and notifications.
type Agent struct {
	model     model.ToolCallingChatModel
	toolsNode *compose.ToolsNode
	persona   *profile.Profile
}

// New binds the toolbox to the chat model and prepares the execution node.
func New(ctx context.Context, chatModel model.ToolCallingChatModel, toolbox *Toolbox, persona *profile.Profile) (*Agent, error) {
	tools := toolbox.All()

	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("error resolving tool info: %w", err)
		}
		infos = append(infos, info)
	}

	bound, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("error binding tools to chat model: %w", err)
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{Tools: tools})
	if err != nil {
		return nil, fmt.Errorf("error creating tools node: %w", err)
	}

	return &Agent{
		model:     bound,
		toolsNode: toolsNode,
		persona:   persona,
	}, nil
}

// SystemPrompt builds the persona instructions from the loaded profile.
func (a *Agent) SystemPrompt() string {
	p := a.persona
	return fmt.Sprintf(`You are acting as %s, answering questions on their website about their professional background, skills and experience.

Represent %s faithfully, in a professional and approachable tone.

You have tools available:
- search_projects: look up specific portfolio projects by domain, technology or type
- get_technical_expertise: show aggregate statistics about the technical stack
- record_user_details: record contact information of an interested visitor
- record_unknown_question: record a question you could not answer

If you do not know the answer to something, use record_unknown_question.
If the visitor shows interest, ask for their email and use record_user_details.

## Summary:
%s

## LinkedIn profile:
%s

Always stay in character as %s.`, p.Name, p.Name, p.Summary, p.LinkedIn, p.Name)
}

// Chat runs one turn: the user message against the history, executing tool
// calls until the model produces a final answer.
func (a *Agent) Chat(ctx context.Context, message string, history []*schema.Message) (string, error) {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(a.SystemPrompt()))
	messages = append(messages, history...)
	messages = append(messages, schema.UserMessage(message))

	for round := 0; round < maxToolRounds; round++ {
		out, err := a.model.Generate(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("error generating chat response: %w", err)
		}

		if len(out.ToolCalls) == 0 {
			return out.Content, nil
		}

		for _, call := range out.ToolCalls {
			logger.Info().
				Str("tool", call.Function.Name).
				Str("arguments", call.Function.Arguments).
				Msg("executing tool call")
		}

		toolMessages, err := a.toolsNode.Invoke(ctx, out)
		if err != nil {
			return "", fmt.Errorf("error executing tool calls: %w", err)
		}

		messages = append(messages, out)
		messages = append(messages, toolMessages...)
	}

	return "", fmt.Errorf("tool call limit reached after %d rounds", maxToolRounds)
}
