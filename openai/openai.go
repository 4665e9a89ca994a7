// Package openai implements [chatstream.Provider] for OpenAI-compatible
// HTTP APIs.
//
// Besides streamed chat completions, the client covers the neighbouring
// endpoints a chat tool needs: model listing, non-streamed chat, legacy
// completions, embeddings and image generation. Any server speaking the same
// wire format works (Ollama, vLLM, xAI, OpenRouter) via [WithBaseURL].
package openai

const (
	defaultBaseURL = "https://api.openai.com"

	modelsPath      = "/v1/models"
	chatPath        = "/v1/chat/completions"
	completionsPath = "/v1/completions"
	embeddingsPath  = "/v1/embeddings"
	imagesPath      = "/v1/images/generations"

	defaultImageModel   = "gpt-image-1"
	defaultImageSize    = "1024x1024"
	defaultImageQuality = "auto"

	// maxErrorBody bounds how much of a non-2xx body is kept.
	maxErrorBody = 64 << 10
)

// apiErrorResponse is the JSON body returned on non-2xx HTTP responses.
type apiErrorResponse struct {
	Error apiErrorDetail `json:"error"`
}

type apiErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"` // string on OpenAI, number on some compatible servers
}
