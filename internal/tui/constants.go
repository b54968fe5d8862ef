package tui

// Layout
const (
	// MinEditorWidth is the narrowest the text buffer panel gets
	MinEditorWidth = 40
	// NarrowScreenWidth is the width below which panels split evenly
	NarrowScreenWidth = 100
	// ChromeHeight is the rows used by the title and status bars
	ChromeHeight = 2
	// ModalWidthPercent is the width of modal dialogs relative to the screen
	ModalWidthPercent = 80
)

// Lists
const (
	// HistoryLimit caps the entries loaded into the history browser
	HistoryLimit = 200
	// PickerVisibleRows is how many documents the picker shows at once
	PickerVisibleRows = 15
)

// Status messages
const (
	msgNothingToGenerate = "Nothing to generate: the text buffer is empty"
	msgNoProfile         = "No profile to copy"
	msgHistoryDisabled   = "History is disabled"
	msgNoDocuments       = "No documents found"
)
