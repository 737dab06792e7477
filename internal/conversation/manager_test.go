package conversation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avatar-agent/internal/config"
)

func testManager(t *testing.T, cfg config.ConversationConfig) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	m, err := NewManager(context.Background(), "redis://"+mr.Addr(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	return m, mr
}

func TestNewManagerRequiresURL(t *testing.T) {
	_, err := NewManager(context.Background(), "", config.ConversationConfig{})
	assert.ErrorContains(t, err, "REDIS_URL")
}

func TestNewManagerBadAddress(t *testing.T) {
	_, err := NewManager(context.Background(), "redis://127.0.0.1:1", config.ConversationConfig{})
	assert.Error(t, err)
}

func TestHistoryEmptySession(t *testing.T) {
	m, _ := testManager(t, config.ConversationConfig{TTL: time.Minute, MaxTurns: 10})

	history, err := m.History(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAppendAndHistory(t *testing.T) {
	m, _ := testManager(t, config.ConversationConfig{TTL: time.Minute, MaxTurns: 10})
	ctx := context.Background()

	require.NoError(t, m.AppendUser(ctx, "s1", "hola"))
	require.NoError(t, m.AppendAssistant(ctx, "s1", "¡hola! ¿en qué puedo ayudarte?"))

	history, err := m.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, schema.User, history[0].Role)
	assert.Equal(t, "hola", history[0].Content)
	assert.Equal(t, schema.Assistant, history[1].Role)
}

func TestHistoryWindowsOldTurns(t *testing.T) {
	m, _ := testManager(t, config.ConversationConfig{TTL: time.Minute, MaxTurns: 2})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, m.AppendUser(ctx, "s1", fmt.Sprintf("pregunta %d", i)))
		require.NoError(t, m.AppendAssistant(ctx, "s1", fmt.Sprintf("respuesta %d", i)))
	}

	history, err := m.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "pregunta 3", history[0].Content)
	assert.Equal(t, "respuesta 4", history[3].Content)
}

func TestSessionExpires(t *testing.T) {
	m, mr := testManager(t, config.ConversationConfig{TTL: time.Minute, MaxTurns: 10})
	ctx := context.Background()

	require.NoError(t, m.AppendUser(ctx, "s1", "hola"))
	mr.FastForward(2 * time.Minute)

	history, err := m.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAppendRefreshesTTL(t *testing.T) {
	m, mr := testManager(t, config.ConversationConfig{TTL: time.Minute, MaxTurns: 10})
	ctx := context.Background()

	require.NoError(t, m.AppendUser(ctx, "s1", "uno"))
	mr.FastForward(30 * time.Second)
	require.NoError(t, m.AppendAssistant(ctx, "s1", "dos"))
	mr.FastForward(45 * time.Second)

	// 75s after the first write but only 45s after the last one.
	history, err := m.History(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestReset(t *testing.T) {
	m, _ := testManager(t, config.ConversationConfig{TTL: time.Minute, MaxTurns: 10})
	ctx := context.Background()

	require.NoError(t, m.AppendUser(ctx, "s1", "hola"))
	require.NoError(t, m.Reset(ctx, "s1"))

	history, err := m.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSessionsAreIsolated(t *testing.T) {
	m, _ := testManager(t, config.ConversationConfig{TTL: time.Minute, MaxTurns: 10})
	ctx := context.Background()

	require.NoError(t, m.AppendUser(ctx, "a", "mensaje de a"))
	require.NoError(t, m.AppendUser(ctx, "b", "mensaje de b"))

	historyA, err := m.History(ctx, "a")
	require.NoError(t, err)
	require.Len(t, historyA, 1)
	assert.Equal(t, "mensaje de a", historyA[0].Content)
}
