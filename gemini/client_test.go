package gemini_test

import (
	"testing"

	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestConvertMessages(t *testing.T) {
	t.Parallel()
	system, contents := gemini.ConvertMessages([]chatstream.Message{
		chatstream.SystemMessage("be brief"),
		chatstream.UserMessage("Hello"),
		chatstream.AssistantMessage("Hi"),
		chatstream.SystemMessage("answer in French"),
		chatstream.UserMessage("Thanks"),
	})

	require.NotNil(t, system)
	require.Len(t, system.Parts, 2)
	assert.Equal(t, "be brief", system.Parts[0].Text)
	assert.Equal(t, "answer in French", system.Parts[1].Text)

	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "Hello", contents[0].Parts[0].Text)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "Hi", contents[1].Parts[0].Text)
	assert.Equal(t, "user", contents[2].Role)
}

func TestConvertMessages_NoSystem(t *testing.T) {
	t.Parallel()
	system, contents := gemini.ConvertMessages([]chatstream.Message{chatstream.UserMessage("Hi")})
	assert.Nil(t, system)
	assert.Len(t, contents, 1)
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()
	temp, topP, penalty := 0.5, 0.9, 1.0
	maxTokens, n := 128, 2
	args := chatstream.ChatArguments{
		Temperature:      &temp,
		TopP:             &topP,
		PresencePenalty:  &penalty,
		FrequencyPenalty: &penalty,
		MaxTokens:        &maxTokens,
		N:                &n,
		Stop:             []string{"END"},
		ResponseFormat:   &chatstream.ResponseFormat{Type: chatstream.ResponseFormatJSONObject},
	}

	config := gemini.BuildConfig(args)
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.5, *config.Temperature, 1e-6)
	assert.InDelta(t, 0.9, *config.TopP, 1e-6)
	assert.InDelta(t, 1.0, *config.PresencePenalty, 1e-6)
	assert.InDelta(t, 1.0, *config.FrequencyPenalty, 1e-6)
	assert.Equal(t, int32(128), config.MaxOutputTokens)
	assert.Equal(t, int32(2), config.CandidateCount)
	assert.Equal(t, []string{"END"}, config.StopSequences)
	assert.Equal(t, "application/json", config.ResponseMIMEType)
}

func TestBuildConfig_Defaults(t *testing.T) {
	t.Parallel()
	config := gemini.BuildConfig(chatstream.ChatArguments{})
	assert.Equal(t, &genai.GenerateContentConfig{}, config)
}
