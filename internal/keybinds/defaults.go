package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
	r.Register(ContextGlobal, "ctrl+o", ActionOpenPicker)
	r.Register(ContextGlobal, "ctrl+g", ActionGenerate)
	r.Register(ContextGlobal, "ctrl+x", ActionCancel)

	registerDisplayBindings(r)
	registerEditorBindings(r)
	registerPickerBindings(r)
	registerHistoryBindings(r)

	r.RegisterMultiple(ContextHelp, []string{"esc", "q", "?"}, ActionCloseModal)
	r.RegisterMultiple(ContextHelp, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextHelp, []string{"down", "j"}, ActionNavigateDown)

	r.RegisterMultiple(ContextConfirm, []string{"y", "Y"}, ActionConfirm)
	r.RegisterMultiple(ContextConfirm, []string{"n", "N", "esc"}, ActionDeny)

	return r
}

func registerDisplayBindings(r *Registry) {
	r.Register(ContextDisplay, "q", ActionQuit)
	r.Register(ContextDisplay, "tab", ActionSwitchFocus)
	r.Register(ContextDisplay, "o", ActionOpenPicker)
	r.Register(ContextDisplay, "g", ActionGoToTopPrep)
	r.Register(ContextDisplay, "gg", ActionGoToTop)
	r.Register(ContextDisplay, "G", ActionGoToBottom)
	r.RegisterMultiple(ContextDisplay, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextDisplay, []string{"down", "j"}, ActionNavigateDown)
	r.RegisterMultiple(ContextDisplay, []string{"pgup", "ctrl+u"}, ActionPageUp)
	r.RegisterMultiple(ContextDisplay, []string{"pgdown", "ctrl+d"}, ActionPageDown)
	r.Register(ContextDisplay, "c", ActionCopyResult)
	r.Register(ContextDisplay, "y", ActionToggleFormat)
	r.Register(ContextDisplay, "H", ActionOpenHistory)
	r.Register(ContextDisplay, "?", ActionOpenHelp)
}

// Editor keys must not shadow printable characters
func registerEditorBindings(r *Registry) {
	r.Register(ContextEditor, "tab", ActionSwitchFocus)
	r.Register(ContextEditor, "esc", ActionSwitchFocus)
	r.Register(ContextEditor, "ctrl+v", ActionPaste)
	r.Register(ContextEditor, "ctrl+l", ActionClearBuffer)
}

func registerPickerBindings(r *Registry) {
	r.Register(ContextPicker, "enter", ActionProcess)
	r.Register(ContextPicker, "esc", ActionCloseModal)
	r.Register(ContextPicker, "ctrl+r", ActionRefreshPicker)
	r.RegisterMultiple(ContextPicker, []string{"up", "ctrl+p"}, ActionNavigateUp)
	r.RegisterMultiple(ContextPicker, []string{"down", "ctrl+n"}, ActionNavigateDown)
}

func registerHistoryBindings(r *Registry) {
	r.RegisterMultiple(ContextHistory, []string{"esc", "q", "H"}, ActionCloseModal)
	r.RegisterMultiple(ContextHistory, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextHistory, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextHistory, "C", ActionHistoryClear)
	r.Register(ContextHistory, "d", ActionHistoryDelete)
}
