package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fwojciec/chatstream"
	"google.golang.org/genai"
)

// stream implements [chatstream.Stream] by wrapping the genai SDK's
// streaming iterator. Each SDK response becomes one chunk.
type stream struct {
	ctx     context.Context
	pull    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	model   string
	state   chatstream.StreamState
	acc     chatstream.Accumulator
	err     error
	started bool // role delta already sent
}

// Interface compliance check.
var _ chatstream.Stream = (*stream)(nil)

// NewStreamFromIter wraps a genai-style response iterator. Exported for
// testing.
func NewStreamFromIter(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) chatstream.Stream {
	return newStream(ctx, seq, "")
}

func newStream(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error], model string) *stream {
	next, stop := iter.Pull2(seq)
	return &stream{
		ctx:   ctx,
		pull:  next,
		stop:  stop,
		model: model,
		state: chatstream.StreamStateNew,
	}
}

func (s *stream) Next() (chatstream.ChatCompletionChunk, error) {
	switch s.state {
	case chatstream.StreamStateComplete:
		return chatstream.ChatCompletionChunk{}, io.EOF
	case chatstream.StreamStateError:
		return chatstream.ChatCompletionChunk{}, s.err
	case chatstream.StreamStateClosed:
		return chatstream.ChatCompletionChunk{}, fmt.Errorf("gemini: %w", chatstream.ErrStreamClosed)
	}

	for {
		if err := s.ctx.Err(); err != nil {
			return chatstream.ChatCompletionChunk{}, s.fail(err)
		}
		resp, err, ok := s.pull()
		if !ok {
			s.state = chatstream.StreamStateComplete
			s.stop()
			return chatstream.ChatCompletionChunk{}, io.EOF
		}
		if err != nil {
			return chatstream.ChatCompletionChunk{}, s.fail(err)
		}
		if resp == nil {
			continue
		}
		if len(resp.Candidates) == 0 && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return chatstream.ChatCompletionChunk{}, s.fail(fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason))
		}
		chunk, ok := s.convert(resp)
		if !ok {
			continue
		}
		s.state = chatstream.StreamStateStreaming
		s.acc.Add(chunk)
		return chunk, nil
	}
}

// convert maps one SDK response to a chunk. It reports false for responses
// carrying neither candidates nor usage.
func (s *stream) convert(resp *genai.GenerateContentResponse) (chatstream.ChatCompletionChunk, bool) {
	chunk := chatstream.ChatCompletionChunk{
		ID:     resp.ResponseID,
		Object: chunkObject,
		Model:  resp.ModelVersion,
	}
	if chunk.Model == "" {
		chunk.Model = s.model
	}
	if !resp.CreateTime.IsZero() {
		chunk.Created = resp.CreateTime.Unix()
	}

	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		choice := chatstream.ChunkChoice{Index: int(cand.Index)}
		if text, ok := candidateText(cand); ok {
			choice.Delta.Content = &text
		}
		if !s.started {
			choice.Delta.Role = chatstream.RoleAssistant
		}
		if reason := mapFinishReason(cand.FinishReason); reason != "" {
			choice.FinishReason = &reason
		}
		chunk.Choices = append(chunk.Choices, choice)
	}
	if len(chunk.Choices) > 0 {
		s.started = true
	}

	if u := resp.UsageMetadata; u != nil {
		total := int(u.TotalTokenCount)
		if total == 0 {
			total = int(u.PromptTokenCount) + int(u.CandidatesTokenCount)
		}
		chunk.Usage = &chatstream.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      total,
		}
	}
	return chunk, len(chunk.Choices) > 0 || chunk.Usage != nil
}

// candidateText joins the visible text parts. Thought parts are skipped.
func candidateText(cand *genai.Candidate) (string, bool) {
	if cand.Content == nil {
		return "", false
	}
	var (
		b     strings.Builder
		found bool
	)
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought || p.Text == "" {
			continue
		}
		b.WriteString(p.Text)
		found = true
	}
	return b.String(), found
}

// mapFinishReason translates Gemini finish reasons to OpenAI ones.
func mapFinishReason(r genai.FinishReason) string {
	switch r {
	case "", genai.FinishReasonUnspecified:
		return ""
	case genai.FinishReasonStop:
		return "stop"
	case genai.FinishReasonMaxTokens:
		return "length"
	case genai.FinishReasonSafety,
		genai.FinishReasonRecitation,
		genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent,
		genai.FinishReasonSPII:
		return "content_filter"
	default:
		return strings.ToLower(string(r))
	}
}

func (s *stream) fail(err error) error {
	s.state = chatstream.StreamStateError
	s.err = fmt.Errorf("gemini: %w", err)
	s.stop()
	return s.err
}

func (s *stream) State() chatstream.StreamState {
	return s.state
}

func (s *stream) Message() (chatstream.ChatCompletion, error) {
	if s.state == chatstream.StreamStateNew {
		return chatstream.ChatCompletion{}, fmt.Errorf("gemini: %w", chatstream.ErrStreamNotReady)
	}
	return s.acc.Completion(), nil
}

func (s *stream) Close() error {
	if s.state != chatstream.StreamStateComplete && s.state != chatstream.StreamStateError {
		s.state = chatstream.StreamStateClosed
	}
	s.stop()
	return nil
}
