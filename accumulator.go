package chatstream

import (
	"sort"
	"strings"
)

// Accumulator folds streamed chunks into a ChatCompletion. The zero value
// is ready to use. It is not safe for concurrent use.
type Accumulator struct {
	completion ChatCompletion
	started    bool
	content    map[int]*strings.Builder
	choices    map[int]*Choice
}

// Add merges chunk into the accumulated completion. Identity fields are
// taken from the first chunk; usage from the last chunk that carries it.
func (a *Accumulator) Add(chunk ChatCompletionChunk) {
	if !a.started {
		a.started = true
		a.completion.ID = chunk.ID
		a.completion.Object = "chat.completion"
		a.completion.Created = chunk.Created
		a.completion.Model = chunk.Model
		a.content = make(map[int]*strings.Builder)
		a.choices = make(map[int]*Choice)
	}
	if chunk.Usage != nil {
		a.completion.Usage = *chunk.Usage
	}
	for _, cc := range chunk.Choices {
		choice, ok := a.choices[cc.Index]
		if !ok {
			choice = &Choice{Index: cc.Index, Message: Message{Role: RoleAssistant}}
			a.choices[cc.Index] = choice
			a.content[cc.Index] = &strings.Builder{}
		}
		if cc.Delta.Role != "" {
			choice.Message.Role = cc.Delta.Role
		}
		if cc.Delta.Content != nil {
			a.content[cc.Index].WriteString(*cc.Delta.Content)
		}
		if cc.FinishReason != nil {
			choice.FinishReason = *cc.FinishReason
		}
	}
}

// Started reports whether at least one chunk was added.
func (a *Accumulator) Started() bool { return a.started }

// Completion returns the completion assembled so far, choices ordered by index.
func (a *Accumulator) Completion() ChatCompletion {
	c := a.completion
	c.Choices = make([]Choice, 0, len(a.choices))
	for idx, choice := range a.choices {
		ch := *choice
		ch.Message.Content = a.content[idx].String()
		c.Choices = append(c.Choices, ch)
	}
	sort.Slice(c.Choices, func(i, j int) bool { return c.Choices[i].Index < c.Choices[j].Index })
	return c
}
