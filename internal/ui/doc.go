// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a single transfer form: per-provider authentication status at
// the top, text inputs for the Spotify playlist URL/ID and an optional
// destination playlist name, and a status line carrying the latest
// application message (authentication outcomes, transfer results).
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Submitting the form runs the transfer orchestrator in a [tea.Cmd]; the
// status line animates a spinner while the transfer is in flight and the
// submit binding is suppressed until it completes.
//
// Keyboard navigation: tab/shift+tab between fields, enter to transfer,
// esc or ctrl+c to quit. Contextual help is displayed via charmbracelet/bubbles/help.
package ui
