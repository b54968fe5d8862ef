package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal  Context = "global"  // Available everywhere
	ContextDisplay Context = "display" // Result panel focused
	ContextEditor  Context = "editor"  // Text buffer focused
	ContextPicker  Context = "picker"  // Document picker
	ContextHistory Context = "history" // History browser
	ContextHelp    Context = "help"    // Help viewer
	ContextConfirm Context = "confirm" // Confirmation dialogs
)

const (
	// Global actions
	ActionQuit      Action = "quit"       // Quit application
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)
	ActionCancel    Action = "cancel"     // Cancel in-flight request or close modal

	// Navigation actions
	ActionNavigateUp   Action = "navigate_up"
	ActionNavigateDown Action = "navigate_down"
	ActionPageUp       Action = "page_up"
	ActionPageDown     Action = "page_down"
	ActionGoToTop      Action = "go_to_top"
	ActionGoToBottom   Action = "go_to_bottom"
	ActionGoToTopPrep  Action = "go_to_top_prepare" // First 'g' in 'gg'

	// Focus
	ActionSwitchFocus Action = "switch_focus"

	// Workflow actions
	ActionOpenPicker     Action = "open_picker"     // Choose a document
	ActionProcess        Action = "process"         // Upload the chosen document
	ActionGenerate       Action = "generate"        // Submit the text buffer
	ActionCopyResult     Action = "copy_result"     // Copy the profile to the clipboard
	ActionPaste          Action = "paste"           // Paste clipboard into the buffer
	ActionToggleFormat   Action = "toggle_format"   // Switch profile dump between JSON and YAML
	ActionClearBuffer    Action = "clear_buffer"    // Empty the text buffer
	ActionRefreshPicker  Action = "refresh_picker"  // Rescan documents
	ActionOpenHistory    Action = "open_history"    // Show recorded exchanges
	ActionHistoryClear   Action = "history_clear"   // Ask to clear history
	ActionHistoryDelete  Action = "history_delete"  // Delete the selected entry
	ActionOpenHelp       Action = "open_help"       // Show keybindings
	ActionCloseModal     Action = "close_modal"     // Close current modal
	ActionConfirm        Action = "confirm"         // Confirm (y)
	ActionDeny           Action = "deny"            // Deny (n)
)

// AllActions lists every known action, used to validate user configuration
var AllActions = []Action{
	ActionQuit, ActionQuitForce, ActionCancel,
	ActionNavigateUp, ActionNavigateDown, ActionPageUp, ActionPageDown,
	ActionGoToTop, ActionGoToBottom, ActionGoToTopPrep,
	ActionSwitchFocus,
	ActionOpenPicker, ActionProcess, ActionGenerate, ActionCopyResult, ActionPaste,
	ActionToggleFormat, ActionClearBuffer, ActionRefreshPicker,
	ActionOpenHistory, ActionHistoryClear, ActionHistoryDelete, ActionOpenHelp, ActionCloseModal,
	ActionConfirm, ActionDeny,
}

// IsKnown reports whether a is a defined action
func (a Action) IsKnown() bool {
	for _, known := range AllActions {
		if a == known {
			return true
		}
	}
	return false
}
