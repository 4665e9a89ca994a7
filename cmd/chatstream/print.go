package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/ansi"
	"github.com/fwojciec/chatstream/goldmark"
	"golang.org/x/term"
)

// renderFunc turns a completed reply into terminal output.
type renderFunc func(string) string

// markdownRenderer renders replies for the width of out when it is a
// terminal, else for 80 columns.
func markdownRenderer(out *os.File) renderFunc {
	width := 80
	if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
		width = w
	}
	theme := chatstream.DefaultTheme()
	return func(s string) string {
		return goldmark.Render(ansi.Sanitize(s), width, theme)
	}
}

// printReply streams a reply for args to w. Without render, each chunk's
// sanitized content is written as it arrives; with render, the completed
// reply is written once. The returned completion holds whatever arrived,
// including on error.
func printReply(ctx context.Context, p chatstream.Provider, args chatstream.ChatArguments, w io.Writer, render renderFunc) (chatstream.ChatCompletion, error) {
	stream, err := p.ChatStream(ctx, args)
	if err != nil {
		return chatstream.ChatCompletion{}, err
	}
	defer stream.Close()

	var streamErr error
	for chunk, err := range chatstream.Chunks(stream) {
		if err != nil {
			streamErr = err
			break
		}
		if render == nil {
			if _, err := io.WriteString(w, ansi.Sanitize(chunk.Content())); err != nil {
				return chatstream.ChatCompletion{}, fmt.Errorf("write reply: %w", err)
			}
		}
	}

	completion, _ := stream.Message()
	if streamErr != nil {
		if render == nil {
			fmt.Fprintln(w)
		}
		return completion, streamErr
	}
	if render != nil {
		_, err = io.WriteString(w, render(completion.String()))
	} else {
		_, err = fmt.Fprintln(w)
	}
	if err != nil {
		return completion, fmt.Errorf("write reply: %w", err)
	}
	return completion, nil
}
