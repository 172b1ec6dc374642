// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing and editing playlists:
//  1. [PlaylistListView] : Browse the user's playlists
//  2. [TrackListView] : View tracks, grab one, and move it to reorder
//  3. [SearchView] : Debounced catalog search with keyboard-navigable results
//  4. [ReleaseDetailView] : Full catalog record for a committed search result
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Reordering and search state live in the controllers from internal/tasks; the
// model translates key presses into controller calls and controller-issued
// requests into tea commands, so the ordering rules (one reorder call in
// flight, stale search responses dropped) hold no matter how slow the network is.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
