package json_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/chatstream"
	csjson "github.com/fwojciec/chatstream/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConversation() chatstream.Conversation {
	return chatstream.Conversation{
		ID:           "9b2f5c1e-3c4d-4a7e-8f10-2b6a1c0d9e55",
		Model:        "gpt-4o",
		SystemPrompt: "You are helpful.",
		CreatedAt:    time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 2, 18, 12, 5, 0, 0, time.UTC),
		Messages: []chatstream.Message{
			chatstream.UserMessage("Fix the login bug"),
			chatstream.AssistantMessage("I'll look at the auth module."),
		},
	}
}

func TestMarshalConversation_RoundTrip(t *testing.T) {
	t.Parallel()
	conv := sampleConversation()

	data, err := csjson.MarshalConversation(conv)
	require.NoError(t, err)

	got, err := csjson.UnmarshalConversation(data)
	require.NoError(t, err)

	assert.Equal(t, conv.ID, got.ID)
	assert.Equal(t, conv.Model, got.Model)
	assert.Equal(t, conv.SystemPrompt, got.SystemPrompt)
	assert.True(t, conv.CreatedAt.Equal(got.CreatedAt), "CreatedAt mismatch")
	assert.True(t, conv.UpdatedAt.Equal(got.UpdatedAt), "UpdatedAt mismatch")
	assert.Equal(t, conv.Messages, got.Messages)
}

func TestMarshalConversation_Format(t *testing.T) {
	t.Parallel()
	data, err := csjson.MarshalConversation(sampleConversation())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"version": 1,
		"id": "9b2f5c1e-3c4d-4a7e-8f10-2b6a1c0d9e55",
		"model": "gpt-4o",
		"system_prompt": "You are helpful.",
		"created_at": "2026-02-18T12:00:00Z",
		"updated_at": "2026-02-18T12:05:00Z",
		"messages": [
			{"role": "user", "content": "Fix the login bug"},
			{"role": "assistant", "content": "I'll look at the auth module."}
		]
	}`, string(data))
}

func TestMarshalConversation_EmptyMessages(t *testing.T) {
	t.Parallel()
	data, err := csjson.MarshalConversation(chatstream.Conversation{ID: "x"})
	require.NoError(t, err)

	got, err := csjson.UnmarshalConversation(data)
	require.NoError(t, err)
	assert.Empty(t, got.Messages)
}

func TestMarshalConversation_UnknownRole(t *testing.T) {
	t.Parallel()
	conv := sampleConversation()
	conv.Messages = append(conv.Messages, chatstream.Message{Role: "tool", Content: "x"})

	_, err := csjson.MarshalConversation(conv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message 2")
	assert.ErrorIs(t, err, chatstream.ErrValidation)
}

func TestUnmarshalConversation_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data string
		want string
	}{
		{"invalid json", `{`, "unmarshal envelope"},
		{"unsupported version", `{"version":2,"id":"x","messages":[]}`, "unsupported envelope version: 2"},
		{"missing version", `{"id":"x","messages":[]}`, "unsupported envelope version: 0"},
		{"unknown role", `{"version":1,"messages":[{"role":"bot","content":"hi"}]}`, `unknown message role: "bot"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := csjson.UnmarshalConversation([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "dir", "conversation.json")
	conv := sampleConversation()

	require.NoError(t, csjson.Save(path, conv))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	got, err := csjson.Load(path)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
	assert.Equal(t, conv.Messages, got.Messages)
}

func TestSave_Overwrites(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "conversation.json")
	conv := sampleConversation()
	require.NoError(t, csjson.Save(path, conv))

	conv.Append(chatstream.UserMessage("Thanks"))
	require.NoError(t, csjson.Save(path, conv))

	got, err := csjson.Load(path)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 3)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := csjson.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "read file")
}
