package tasks

import (
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

func testTracks(ids ...string) []models.Track {
	tracks := make([]models.Track, len(ids))
	for i, id := range ids {
		tracks[i] = models.Track{ID: id, Title: "Track " + id, TrackOrder: i + 1}
	}
	return tracks
}

func visibleIDs(c *ReorderController) []string {
	ids := make([]string, len(c.Tracks()))
	for i, track := range c.Tracks() {
		ids[i] = track.ID
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newReorderController(ids ...string) *ReorderController {
	return NewReorderController("playlist-1", testTracks(ids...), shared.NewLogger(io.Discard))
}

func TestReorderController(t *testing.T) {
	t.Run("OnReorder", func(t *testing.T) {
		t.Run("Applies Move Immediately", func(t *testing.T) {
			c := newReorderController("A", "B", "C")

			req, issue := c.OnReorder(0, 2)
			if !issue {
				t.Fatal("expected a persistence request")
			}

			// Rendered order changes before any response arrives
			if !equalIDs(visibleIDs(c), []string{"B", "C", "A"}) {
				t.Errorf("expected [B C A], got %v", visibleIDs(c))
			}
			if !equalIDs(req.TrackIDs, []string{"B", "C", "A"}) {
				t.Errorf("expected request ids [B C A], got %v", req.TrackIDs)
			}
			if req.PlaylistID != "playlist-1" {
				t.Errorf("expected playlist-1, got %s", req.PlaylistID)
			}
			if !c.Saving() {
				t.Error("expected saving affordance while persistence is outstanding")
			}
		})

		t.Run("Renumbers Order Keys Gaplessly", func(t *testing.T) {
			c := newReorderController("A", "B", "C", "D")

			c.OnReorder(3, 0)
			for i, track := range c.Tracks() {
				if track.TrackOrder != i+1 {
					t.Errorf("expected order key %d at index %d, got %d", i+1, i, track.TrackOrder)
				}
			}
		})

		t.Run("Move Toward End", func(t *testing.T) {
			c := newReorderController("A", "B", "C", "D")

			c.OnReorder(1, 3)
			if !equalIDs(visibleIDs(c), []string{"A", "C", "D", "B"}) {
				t.Errorf("expected [A C D B], got %v", visibleIDs(c))
			}
		})

		t.Run("Same Index Is A No-Op", func(t *testing.T) {
			c := newReorderController("A", "B", "C")

			if _, issue := c.OnReorder(1, 1); issue {
				t.Error("expected no request for a same-index move")
			}
			if c.Saving() {
				t.Error("expected no outstanding persistence")
			}
		})

		t.Run("Out Of Range Indices Are Rejected", func(t *testing.T) {
			c := newReorderController("A", "B")

			if _, issue := c.OnReorder(-1, 1); issue {
				t.Error("expected rejection for negative index")
			}
			if _, issue := c.OnReorder(0, 2); issue {
				t.Error("expected rejection for index past the end")
			}
			if !equalIDs(visibleIDs(c), []string{"A", "B"}) {
				t.Errorf("rejected move must not change order, got %v", visibleIDs(c))
			}
		})
	})

	t.Run("Reconciliation", func(t *testing.T) {
		t.Run("Success Adopts Canonical Order", func(t *testing.T) {
			c := newReorderController("A", "B", "C")
			c.OnReorder(0, 2)

			// Server returns canonical order with its own key assignment
			canonical := testTracks("B", "C", "A")
			next, followUp, refetch := c.OnPersistResult(canonical, nil)

			if followUp || refetch {
				t.Errorf("expected clean settle, got followUp=%v refetch=%v", followUp, refetch)
			}
			if next.PlaylistID != "" {
				t.Error("expected no follow-up request")
			}
			if !equalIDs(visibleIDs(c), []string{"B", "C", "A"}) {
				t.Errorf("expected canonical [B C A], got %v", visibleIDs(c))
			}
			if c.Saving() {
				t.Error("expected saving cleared after reconciliation")
			}
		})

		t.Run("Failure Requests Full Refetch", func(t *testing.T) {
			c := newReorderController("A", "B", "C")
			c.OnReorder(0, 2)

			_, _, refetch := c.OnPersistResult(nil, errors.New("500"))
			if !refetch {
				t.Fatal("expected refetch after persistence failure")
			}
			if !c.Saving() {
				t.Error("expected saving to stay on until the refetch settles")
			}

			// Refetch returns the pre-drag server order; no partial order remains
			c.OnRefetched(testTracks("A", "B", "C"))
			if !equalIDs(visibleIDs(c), []string{"A", "B", "C"}) {
				t.Errorf("expected revert to [A B C], got %v", visibleIDs(c))
			}
			if c.Saving() {
				t.Error("expected saving cleared after refetch")
			}
		})

		t.Run("Unsolicited Result Is Ignored", func(t *testing.T) {
			c := newReorderController("A", "B")

			_, followUp, refetch := c.OnPersistResult(testTracks("B", "A"), nil)
			if followUp || refetch {
				t.Error("expected result without in-flight call to be ignored")
			}
			if !equalIDs(visibleIDs(c), []string{"A", "B"}) {
				t.Errorf("expected order unchanged, got %v", visibleIDs(c))
			}
		})
	})

	t.Run("Serialization", func(t *testing.T) {
		t.Run("Second Drag Coalesces Behind In-Flight Call", func(t *testing.T) {
			c := newReorderController("A", "B", "C")

			_, issue := c.OnReorder(0, 2) // [B C A], persisting
			if !issue {
				t.Fatal("expected first request")
			}

			_, issue = c.OnReorder(0, 1) // [C B A], queued
			if issue {
				t.Error("second drag must queue, not issue, while one call is in flight")
			}
			if !equalIDs(visibleIDs(c), []string{"C", "B", "A"}) {
				t.Errorf("expected optimistic [C B A], got %v", visibleIDs(c))
			}

			// First call settles; queued order goes out as one follow-up
			next, followUp, _ := c.OnPersistResult(testTracks("B", "C", "A"), nil)
			if !followUp {
				t.Fatal("expected queued follow-up request")
			}
			if !equalIDs(next.TrackIDs, []string{"C", "B", "A"}) {
				t.Errorf("expected follow-up ids [C B A], got %v", next.TrackIDs)
			}

			// The superseded canonical order must not flash into view
			if !equalIDs(visibleIDs(c), []string{"C", "B", "A"}) {
				t.Errorf("expected optimistic order kept, got %v", visibleIDs(c))
			}
			if !c.Saving() {
				t.Error("expected saving while the follow-up is in flight")
			}

			// Follow-up settles with the final canonical order
			_, followUp, _ = c.OnPersistResult(testTracks("C", "B", "A"), nil)
			if followUp {
				t.Error("expected no further follow-up")
			}
			if c.Saving() {
				t.Error("expected saving cleared")
			}
		})

		t.Run("Three Drags Coalesce Into One Follow-Up", func(t *testing.T) {
			c := newReorderController("A", "B", "C", "D")

			c.OnReorder(0, 1) // issued
			c.OnReorder(0, 1) // queued
			c.OnReorder(0, 1) // replaces the queued order

			latest := append([]string(nil), visibleIDs(c)...)

			next, followUp, _ := c.OnPersistResult(testTracks("B", "A", "C", "D"), nil)
			if !followUp {
				t.Fatal("expected one follow-up")
			}
			if !equalIDs(next.TrackIDs, latest) {
				t.Errorf("follow-up must carry the latest order %v, got %v", latest, next.TrackIDs)
			}
		})

		t.Run("Queued Order Dropped On Failure", func(t *testing.T) {
			c := newReorderController("A", "B", "C")

			c.OnReorder(0, 2)
			c.OnReorder(0, 1)

			next, followUp, refetch := c.OnPersistResult(nil, errors.New("conflict"))
			if followUp {
				t.Error("failure must drop the queued order")
			}
			if !refetch {
				t.Error("failure must request a refetch")
			}
			if next.PlaylistID != "" {
				t.Error("expected no follow-up request on failure")
			}
		})
	})
}
