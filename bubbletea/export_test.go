package bubbletea

import "context"

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// Wrap exports wrap for testing.
func Wrap(text string, width int) string {
	return wrap(text, width)
}

// SetRunningWithCancel puts the model in a running state with a cancel
// function.
func SetRunningWithCancel(m Model, cancel context.CancelFunc) Model {
	m.running = true
	m.cancel = cancel
	return m
}
