/*
Package keybinds maps key presses to TUI actions per context.

Contexts are checked specific first, then global. Defaults live in
defaults.go and can be overridden from keybinds.yaml in the config
directory:

	display:
	  copy_result: "c,ctrl+y"
	global:
	  generate: "ctrl+g,f5"

Listing an action replaces its default keys in that context. Overrides
are validated: ctrl+c always quits, and single printable keys cannot be
bound in the editor context.
*/
package keybinds
