// Package bubbletea provides a Bubble Tea chat TUI over a chatstream provider.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/chatstream"
)

// ChatFunc opens a streamed reply for args. A chatstream.Provider's
// ChatStream method value satisfies it.
type ChatFunc func(ctx context.Context, args chatstream.ChatArguments) (chatstream.Stream, error)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// DeltaMsg carries a fragment of reply text for delivery to the model.
type DeltaMsg struct {
	Text string
}

// DoneMsg signals that the reply stream has finished. Completion holds
// whatever was assembled, including partial output on error.
type DoneMsg struct {
	Completion chatstream.ChatCompletion
	Err        error
}
