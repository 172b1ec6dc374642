// Package tasks implements the client-side synchronization controllers: the
// optimistic track reorder flow and the debounced catalog search flow.
//
// Both controllers are plain state machines driven by explicit inputs, with
// no timers or goroutines of their own. The TUI layer feeds them key events,
// fires their debounce timers via tea.Tick, and runs the requests they hand
// back as bubbletea commands; tests drive them directly and deterministically.
//
// # Reordering
//
// [ReorderController] applies a drag's list-move immediately and persists the
// full ordered track-id list. The server's returned order is adopted as
// canonical on success; on failure the optimistic order is discarded and the
// caller refetches the playlist, so the visible order is always either the
// last server-confirmed order or a single pending optimistic one. Persistence
// calls are serialized per playlist: while one is in flight, later drags
// coalesce into at most one queued follow-up carrying the latest order.
//
// # Searching
//
// [SearchController] debounces keystrokes, tags each issued request with a
// monotonic generation, and drops any response whose generation is not the
// latest issued. That comparison at resolution time is what tolerates
// out-of-order network completion; nothing is cooperatively canceled.
package tasks
