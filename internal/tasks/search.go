package tasks

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// DebounceDelay is the quiet period after the last keystroke before a search
// request is issued.
const DebounceDelay = 300 * time.Millisecond

// SearchState enumerates the search controller's states.
type SearchState int

const (
	SearchIdle SearchState = iota
	SearchDebouncing
	SearchSearching
	SearchResults
	SearchNoResults
	SearchError
)

// String implements [fmt.Stringer] for log lines.
func (s SearchState) String() string {
	switch s {
	case SearchIdle:
		return "idle"
	case SearchDebouncing:
		return "debouncing"
	case SearchSearching:
		return "searching"
	case SearchResults:
		return "results"
	case SearchNoResults:
		return "no_results"
	case SearchError:
		return "error"
	default:
		return "unknown"
	}
}

// SearchRequest is a catalog query the caller must run, tagged with the
// generation assigned at issue time.
type SearchRequest struct {
	Query      string
	Generation uint64
}

// SearchController turns a keystroke stream into debounced, generation-guarded
// catalog searches and owns the keyboard-navigable selection over the results.
//
// Responses may complete out of order relative to their requests; only the
// response whose generation equals the latest issued one may mutate state, so
// stale results are discarded at resolution time rather than canceled in
// flight.
type SearchController struct {
	logger *log.Logger

	state SearchState
	query string

	timerID    uint64 // latest armed debounce timer
	generation uint64 // latest issued request generation

	results   []models.SearchResult
	selection int // 0-based, -1 for none; doubles as the ARIA active index
	open      bool
}

// NewSearchController creates an idle search controller.
func NewSearchController(logger *log.Logger) *SearchController {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &SearchController{
		logger:    logger,
		state:     SearchIdle,
		selection: -1,
	}
}

// OnQueryChange handles a keystroke. The query text updates synchronously and
// any open result list closes immediately, so stale results never stay
// visible while a new query is pending.
//
// When armed is true the caller must fire TimerFired(timerID) after
// [DebounceDelay]; re-arming on every change is what implements the debounce,
// since only the newest timer id is honored.
//
// An empty or whitespace-only query issues nothing and resets all search
// state.
func (s *SearchController) OnQueryChange(text string) (timerID uint64, armed bool) {
	s.query = text
	s.open = false
	s.results = nil
	s.selection = -1

	if strings.TrimSpace(text) == "" {
		s.state = SearchIdle
		// Supersede any in-flight request so its response can't repopulate
		// the cleared view.
		s.generation++
		return 0, false
	}

	s.state = SearchDebouncing
	s.timerID++
	return s.timerID, true
}

// TimerFired handles a debounce timer expiry. Only the most recently armed
// timer issues a request; earlier timers are stale no-ops. The returned
// request carries a newly incremented generation.
func (s *SearchController) TimerFired(timerID uint64) (req SearchRequest, issue bool) {
	if timerID != s.timerID || s.state != SearchDebouncing {
		return SearchRequest{}, false
	}
	if strings.TrimSpace(s.query) == "" {
		return SearchRequest{}, false
	}

	s.generation++
	s.state = SearchSearching
	return SearchRequest{Query: s.query, Generation: s.generation}, true
}

// OnResponse applies a completed search. A response for any generation other
// than the latest issued is silently dropped, whatever its contents.
//
// Failures clear results and are logged; search-as-you-type is best-effort,
// so they never surface as blocking errors.
func (s *SearchController) OnResponse(generation uint64, results []models.SearchResult, err error) {
	if generation != s.generation {
		s.logger.Debug("dropping stale search response", "generation", generation, "latest", s.generation)
		return
	}
	if s.state != SearchSearching {
		// A keystroke landed after this request went out. The view already
		// closed for the pending query; its response must not reopen it.
		s.logger.Debug("dropping search response outside searching state", "state", s.state)
		return
	}

	if err != nil {
		s.logger.Warnf("search failed: %v", err)
		s.state = SearchError
		s.results = nil
		s.selection = -1
		s.open = false
		return
	}

	s.results = results
	s.selection = -1
	if len(results) == 0 {
		s.state = SearchNoResults
		s.open = false
		return
	}

	s.state = SearchResults
	s.open = true
}

// MoveDown advances the selection with wraparound: -1 activates index 0,
// the last index wraps to 0.
func (s *SearchController) MoveDown() {
	n := len(s.results)
	if n == 0 {
		return
	}
	if s.selection < 0 {
		s.selection = 0
		return
	}
	s.selection = (s.selection + 1) % n
}

// MoveUp moves the selection backwards with wraparound: -1 activates the last
// index, index 0 wraps to the last.
func (s *SearchController) MoveUp() {
	n := len(s.results)
	if n == 0 {
		return
	}
	if s.selection < 0 {
		s.selection = n - 1
		return
	}
	s.selection = (s.selection - 1 + n) % n
}

// Commit handles Enter: a valid selection closes the list and is returned for
// the caller to record and navigate to. Without a valid selection nothing
// happens.
func (s *SearchController) Commit() (models.SearchResult, bool) {
	if s.selection < 0 || s.selection >= len(s.results) {
		return models.SearchResult{}, false
	}

	chosen := s.results[s.selection]
	s.open = false
	s.selection = -1
	s.state = SearchIdle
	return chosen, true
}

// Escape closes the result list and resets the selection without committing.
func (s *SearchController) Escape() {
	s.open = false
	s.selection = -1
	s.results = nil
	s.state = SearchIdle
}

// Blur handles a click outside the control: the list closes without
// committing.
func (s *SearchController) Blur() {
	s.Escape()
}

// State returns the controller's current state.
func (s *SearchController) State() SearchState {
	return s.state
}

// Query returns the current query text.
func (s *SearchController) Query() string {
	return s.query
}

// Results returns the currently applied result set.
func (s *SearchController) Results() []models.SearchResult {
	return s.results
}

// Selection returns the 0-based selection index, or -1 for none.
func (s *SearchController) Selection() int {
	return s.selection
}

// Open reports whether the result list is visible.
func (s *SearchController) Open() bool {
	return s.open
}

// Loading reports whether a request is outstanding.
func (s *SearchController) Loading() bool {
	return s.state == SearchSearching
}
