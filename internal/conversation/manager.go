// Package conversation keeps per-session chat history in Redis with a TTL, so
// an idle session expires on its own.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"avatar-agent/internal/config"
)

// history is the stored JSON shape of one session.
type history struct {
	Messages []*schema.Message `json:"messages"`
}

// Manager stores and windows conversation history.
type Manager struct {
	redis    *redis.Client
	ttl      time.Duration
	maxTurns int
}

// NewManager connects to Redis and verifies the connection.
func NewManager(ctx context.Context, redisURL string, cfg config.ConversationConfig) (*Manager, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL environment variable is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Manager{
		redis:    client,
		ttl:      cfg.TTL,
		maxTurns: cfg.MaxTurns,
	}, nil
}

// History returns the windowed message history for a session: at most the
// last maxTurns user/assistant exchanges.
func (m *Manager) History(ctx context.Context, sessionID string) ([]*schema.Message, error) {
	h, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	window := m.maxTurns * 2
	if window > 0 && len(h.Messages) > window {
		return h.Messages[len(h.Messages)-window:], nil
	}
	return h.Messages, nil
}

// AppendUser adds a visitor message to the session.
func (m *Manager) AppendUser(ctx context.Context, sessionID, content string) error {
	return m.append(ctx, sessionID, schema.UserMessage(content))
}

// AppendAssistant adds an avatar reply to the session.
func (m *Manager) AppendAssistant(ctx context.Context, sessionID, content string) error {
	return m.append(ctx, sessionID, schema.AssistantMessage(content, nil))
}

// Reset drops a session's history.
func (m *Manager) Reset(ctx context.Context, sessionID string) error {
	if err := m.redis.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// Ping checks the Redis connection, used by the health endpoint.
func (m *Manager) Ping(ctx context.Context) error {
	return m.redis.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (m *Manager) Close() error {
	return m.redis.Close()
}

// ====================== Private Methods ======================

func key(sessionID string) string {
	return "conversation:" + sessionID
}

func (m *Manager) append(ctx context.Context, sessionID string, message *schema.Message) error {
	h, err := m.load(ctx, sessionID)
	if err != nil {
		return err
	}

	h.Messages = append(h.Messages, message)
	return m.save(ctx, sessionID, h)
}

func (m *Manager) load(ctx context.Context, sessionID string) (*history, error) {
	data, err := m.redis.Get(ctx, key(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return &history{Messages: []*schema.Message{}}, nil
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	var h history
	if err := json.Unmarshal([]byte(data), &h); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return &h, nil
}

// save stores the history and refreshes the TTL, so the session stays alive
// while the visitor keeps talking.
func (m *Manager) save(ctx context.Context, sessionID string, h *history) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	if err := m.redis.Set(ctx, key(sessionID), data, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}
