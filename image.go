package chatstream

import (
	"encoding/json"
	"fmt"
)

// ImageArguments is the request body for the image generation endpoint.
type ImageArguments struct {
	// Prompt describes the desired image. At most 1000 characters.
	Prompt string `json:"prompt"`
	// Model is the generation model, e.g. "gpt-image-1".
	Model string `json:"model,omitempty"`
	// N is the number of images, between 1 and 10.
	N *int `json:"n,omitempty"`
	// Size is one of "1024x1024", "1024x1536" or "1536x1024".
	Size string `json:"size,omitempty"`
	// Quality is "low", "medium", "high" or "auto".
	Quality string `json:"quality,omitempty"`
	User    string `json:"user,omitempty"`
}

// NewImageArguments returns arguments for prompt with server defaults.
func NewImageArguments(prompt string) ImageArguments {
	return ImageArguments{Prompt: prompt}
}

// Validate checks universal constraints on ImageArguments.
func (a ImageArguments) Validate() error {
	if a.Prompt == "" {
		return fmt.Errorf("prompt is required: %w", ErrValidation)
	}
	if len([]rune(a.Prompt)) > 1000 {
		return fmt.Errorf("prompt exceeds 1000 characters: %w", ErrValidation)
	}
	if a.N != nil && (*a.N < 1 || *a.N > 10) {
		return fmt.Errorf("n must be in [1, 10], got %d: %w", *a.N, ErrValidation)
	}
	return nil
}

// ImageResponse is the body returned by the image generation endpoint.
type ImageResponse struct {
	Created int64         `json:"created"`
	Data    []ImageObject `json:"data"`
}

// ImageObject holds either a URL or base64-encoded image data.
type ImageObject struct {
	URL     string `json:"url,omitempty"`
	B64JSON string `json:"b64_json,omitempty"`
}

// Value returns whichever representation the server sent.
func (o ImageObject) Value() string {
	if o.URL != "" {
		return o.URL
	}
	return o.B64JSON
}

// UnmarshalJSON rejects objects carrying neither representation.
func (o *ImageObject) UnmarshalJSON(data []byte) error {
	type plain ImageObject
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.URL == "" && p.B64JSON == "" {
		return fmt.Errorf("image object has neither url nor b64_json")
	}
	*o = ImageObject(p)
	return nil
}
