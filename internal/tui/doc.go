/*
Package tui implements the interactive terminal front end of kycfill.

# Architecture

The TUI follows Bubble Tea's Model-Update-View pattern:
  - model.go: Model struct, Init, Update and View
  - keys.go: key routing through the keybinds.Registry
  - actions.go: side effects returned as tea.Cmd (service calls, clipboard, history)
  - render.go: lipgloss rendering of the display tree produced by package render

# Workflow

The text buffer is a textarea. Choosing a document in the picker starts an
intake request; ctrl+g submits the buffer for generation. Both go through a
workflow.Coordinator, which owns the display state. A request runs in a
tea.Cmd and its outcome comes back as a message that resolves its ticket,
so overlapping requests follow the configured race policy.

# Threading Model

Update runs on Bubble Tea's event loop. Service calls run in command
goroutines; RequestState tracks their cancel functions so ctrl+x can abort
everything in flight.
*/
package tui
