package tasks

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// PersistRequest is a reorder persistence call the caller must run: PATCH the
// full ordered track-id list for the playlist.
type PersistRequest struct {
	PlaylistID string
	TrackIDs   []string
}

// ReorderController owns the visible track order of one playlist and the
// optimistic reorder lifecycle around it.
//
// The visible order is always either the last server-confirmed order or a
// single pending optimistic order awaiting confirmation, never a merged
// hybrid. At most one persistence call is in flight; drags completed while
// one is outstanding coalesce into a single queued follow-up.
type ReorderController struct {
	logger     *log.Logger
	playlistID string

	tracks []models.Track

	inflight   bool
	queued     []string // latest coalesced order awaiting the in-flight call
	refetching bool
}

// NewReorderController creates a controller seeded with the server-confirmed
// track order.
func NewReorderController(playlistID string, tracks []models.Track, logger *log.Logger) *ReorderController {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &ReorderController{
		logger:     logger,
		playlistID: playlistID,
		tracks:     append([]models.Track(nil), tracks...),
	}
}

// OnReorder handles a completed drag gesture: the track at oldIndex moves to
// newIndex (remove-then-reinsert). The new order is visible immediately; the
// returned request, when issue is true, must be persisted by the caller.
// issue is false when the move was a no-op or a call is already in flight
// (the order is then queued behind it).
func (r *ReorderController) OnReorder(oldIndex, newIndex int) (req PersistRequest, issue bool) {
	n := len(r.tracks)
	if oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n {
		r.logger.Warn("reorder indices out of range", "old", oldIndex, "new", newIndex, "len", n)
		return PersistRequest{}, false
	}
	if oldIndex == newIndex {
		return PersistRequest{}, false
	}

	moved := make([]models.Track, 0, n)
	moved = append(moved, r.tracks[:oldIndex]...)
	moved = append(moved, r.tracks[oldIndex+1:]...)
	moved = append(moved[:newIndex], append([]models.Track{r.tracks[oldIndex]}, moved[newIndex:]...)...)

	// Renumber locally so displayed order keys stay coherent until the
	// server assigns the canonical sequence.
	for i := range moved {
		moved[i].TrackOrder = i + 1
	}
	r.tracks = moved

	ids := r.trackIDs()

	if r.inflight {
		r.queued = ids
		return PersistRequest{}, false
	}

	r.inflight = true
	return PersistRequest{PlaylistID: r.playlistID, TrackIDs: ids}, true
}

// OnPersistResult handles the outcome of a persistence call.
//
// On success the server's canonical order replaces the local one, unless a
// drag was queued meanwhile; then the queued order is returned as a follow-up
// request and the optimistic order stays visible. On failure the optimistic
// order is abandoned: refetch is true and the caller must fetch the playlist
// and deliver it through OnRefetched.
func (r *ReorderController) OnPersistResult(canonical []models.Track, err error) (next PersistRequest, followUp bool, refetch bool) {
	if !r.inflight {
		return PersistRequest{}, false, false
	}

	if err != nil {
		r.logger.Warnf("reorder persistence failed, refetching playlist: %v", err)
		r.inflight = false
		r.queued = nil
		r.refetching = true
		return PersistRequest{}, false, true
	}

	if r.queued != nil {
		ids := r.queued
		r.queued = nil
		// inflight stays true for the follow-up call
		return PersistRequest{PlaylistID: r.playlistID, TrackIDs: ids}, true, false
	}

	r.tracks = append([]models.Track(nil), canonical...)
	r.inflight = false
	return PersistRequest{}, false, false
}

// OnRefetched replaces local state with a freshly fetched server order after
// a persistence failure.
func (r *ReorderController) OnRefetched(tracks []models.Track) {
	r.tracks = append([]models.Track(nil), tracks...)
	r.inflight = false
	r.queued = nil
	r.refetching = false
}

// Tracks returns the currently visible order.
func (r *ReorderController) Tracks() []models.Track {
	return r.tracks
}

// Saving reports whether a persistence call or rollback refetch is outstanding.
func (r *ReorderController) Saving() bool {
	return r.inflight || r.refetching
}

// PlaylistID returns the playlist this controller owns.
func (r *ReorderController) PlaylistID() string {
	return r.playlistID
}

func (r *ReorderController) trackIDs() []string {
	ids := make([]string, len(r.tracks))
	for i, t := range r.tracks {
		ids[i] = t.ID
	}
	return ids
}
