// Package cli implements the headless commands of kycfill.
//
// Each command drives the same workflow.Coordinator the TUI uses and prints
// the rendered display state. A failed exchange is returned as a
// *FailedError so the process exits non-zero.
package cli
