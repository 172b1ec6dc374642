// Package repositories implements SQLite persistence for locally cached data.
//
// The backend owns all authoritative state; these repositories only cache what
// makes the client fast or useful offline:
//   - [HistoryRepository] : search selections committed from the picker, kept
//     for recall and re-search
//   - [PlaylistCacheRepository] : playlist summaries and ordered tracks from
//     the last successful fetch, used for first paint before the network
//     round trip completes
//
// Cached rows are replaced wholesale on each sync rather than merged, so the
// cache never disagrees with the server for longer than one fetch.
package repositories
