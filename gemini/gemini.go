// Package gemini implements [chatstream.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating chat arguments into
// Gemini contents and each streamed response into a
// [chatstream.ChatCompletionChunk], so callers consume Gemini exactly like an
// OpenAI-compatible stream. Streaming uses the SDK's iter.Seq2 iterator,
// wrapped into the pull-based [chatstream.Stream] interface.
package gemini

const defaultModel = "gemini-2.5-flash"

const chunkObject = "chat.completion.chunk"
