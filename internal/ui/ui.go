package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/repositories"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	SearchView
	ReleaseDetailView
)

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	logger *log.Logger

	playlists services.PlaylistService
	catalog   services.CatalogService
	history   *repositories.HistoryRepository
	cache     *repositories.PlaylistCacheRepository

	view   ViewState
	width  int
	height int
	err    error

	playlistList list.Model
	listReady    bool

	selected  *models.PlaylistWithTracks
	trackList list.Model
	reorder   *tasks.ReorderController
	grabbed   bool
	spin      spinner.Model

	search      *tasks.SearchController
	searchInput textinput.Model

	detail *models.ReleaseDetail

	help help.Model
	keys keyMap
}

type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

type tracksFetchedMsg struct {
	playlist *models.PlaylistWithTracks
	err      error
}

type persistResultMsg struct {
	tracks []models.Track
	err    error
}

type refetchedMsg struct {
	playlist *models.PlaylistWithTracks
	err      error
}

type searchTimerMsg struct {
	timerID uint64
}

type searchResponseMsg struct {
	generation uint64
	page       *models.SearchPage
	err        error
}

type releaseFetchedMsg struct {
	detail *models.ReleaseDetail
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
//
// history and cache may be nil; search selections are then not recorded and
// playlists are not cached locally.
func NewModel(ctx context.Context, playlists services.PlaylistService, catalog services.CatalogService, history *repositories.HistoryRepository, cache *repositories.PlaylistCacheRepository, logger *log.Logger) *Model {
	input := textinput.New()
	input.Placeholder = "Search the catalog..."
	input.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		ctx:         ctx,
		logger:      logger,
		playlists:   playlists,
		catalog:     catalog,
		history:     history,
		cache:       cache,
		view:        PlaylistListView,
		search:      tasks.NewSearchController(logger),
		searchInput: input,
		spin:        sp,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init initializes the TUI by fetching playlists.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchPlaylists(), m.spin.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.selected != nil {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case ReleaseDetailView:
			return m.handleDetailKeys(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		if m.cache != nil {
			if err := m.cache.PutList(msg.playlists); err != nil {
				m.logger.Debug("playlist cache write failed", "err", err)
			}
		}
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		m.listReady = true
		return m, nil

	case tracksFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.openPlaylist(msg.playlist)
		return m, nil

	case persistResultMsg:
		next, followUp, refetch := m.reorder.OnPersistResult(msg.tracks, msg.err)
		if followUp {
			return m, m.persistOrder(next)
		}
		if refetch {
			return m, m.refetchPlaylist(m.reorder.PlaylistID())
		}
		m.syncTrackItems()
		if m.cache != nil {
			if err := m.cache.PutTracks(m.reorder.PlaylistID(), m.reorder.Tracks()); err != nil {
				m.logger.Debug("track cache write failed", "err", err)
			}
		}
		return m, nil

	case refetchedMsg:
		if msg.err != nil {
			// Rollback fetch failed too; leave the playlist view rather
			// than display an order the server may not hold.
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.reorder.OnRefetched(msg.playlist.Tracks)
		m.grabbed = false
		m.syncTrackItems()
		return m, nil

	case searchTimerMsg:
		req, issue := m.search.TimerFired(msg.timerID)
		if !issue {
			return m, nil
		}
		return m, m.runSearch(req)

	case searchResponseMsg:
		var results []models.SearchResult
		if msg.page != nil {
			results = msg.page.Results
		}
		m.search.OnResponse(msg.generation, results, msg.err)
		return m, nil

	case releaseFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = SearchView
			return m, nil
		}
		m.detail = msg.detail
		m.view = ReleaseDetailView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view == PlaylistListView && !m.listReady {
		return styles.error.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case SearchView:
		return m.renderSearch()
	case ReleaseDetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.view = SearchView
		m.searchInput.Focus()
		return m, textinput.Blink
	case "enter":
		selected := m.playlistList.SelectedItem()
		if selected != nil {
			if pl, ok := selected.(playlistItem); ok {
				return m, m.fetchTracks(pl.playlist.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.grabbed {
			m.grabbed = false
			m.syncTrackItems()
			return m, nil
		}
		m.view = PlaylistListView
		return m, nil
	case "g":
		if len(m.reorder.Tracks()) > 0 {
			m.grabbed = !m.grabbed
			m.syncTrackItems()
		}
		return m, nil
	case "j", "down":
		if m.grabbed {
			return m.moveGrabbed(1)
		}
	case "k", "up":
		if m.grabbed {
			return m.moveGrabbed(-1)
		}
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.search.Open() {
			m.search.Escape()
			return m, nil
		}
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.search.OnQueryChange("")
		m.view = PlaylistListView
		return m, nil
	case "down":
		m.search.MoveDown()
		return m, nil
	case "up":
		m.search.MoveUp()
		return m, nil
	case "enter":
		chosen, ok := m.search.Commit()
		if !ok {
			return m, nil
		}
		if m.history != nil {
			if _, err := m.history.Record(m.searchInput.Value(), chosen); err != nil {
				m.logger.Debug("history write failed", "err", err)
			}
		}
		return m, m.fetchRelease(chosen.ID)
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	after := m.searchInput.Value()

	if after != before {
		timerID, armed := m.search.OnQueryChange(after)
		if armed {
			debounce := tea.Tick(tasks.DebounceDelay, func(time.Time) tea.Msg {
				return searchTimerMsg{timerID: timerID}
			})
			return m, tea.Batch(cmd, debounce)
		}
	}

	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.detail = nil
		m.view = SearchView
		return m, textinput.Blink
	}
	return m, nil
}

// moveGrabbed moves the grabbed track by delta and hands the result to the
// reorder controller. The controller decides whether a persistence call goes
// out now or coalesces behind the in-flight one.
func (m *Model) moveGrabbed(delta int) (tea.Model, tea.Cmd) {
	oldIndex := m.trackList.Index()
	newIndex := oldIndex + delta
	if newIndex < 0 || newIndex >= len(m.reorder.Tracks()) {
		return m, nil
	}

	req, issue := m.reorder.OnReorder(oldIndex, newIndex)
	m.trackList.Select(newIndex)
	m.syncTrackItems()

	if issue {
		return m, m.persistOrder(req)
	}
	return m, nil
}

func (m *Model) openPlaylist(playlist *models.PlaylistWithTracks) {
	m.selected = playlist
	m.reorder = tasks.NewReorderController(playlist.ID, playlist.Tracks, m.logger)
	m.grabbed = false

	if m.cache != nil {
		if err := m.cache.PutTracks(playlist.ID, playlist.Tracks); err != nil {
			m.logger.Debug("track cache write failed", "err", err)
		}
	}

	m.trackList = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.trackList.Title = fmt.Sprintf("Tracks in '%s'", playlist.Name)
	m.trackList.SetSize(m.width-4, m.height-8)
	m.syncTrackItems()
	m.view = TrackListView
}

// syncTrackItems rebuilds the track list items from the controller's visible order.
func (m *Model) syncTrackItems() {
	tracks := m.reorder.Tracks()
	cursor := m.trackList.Index()

	items := make([]list.Item, len(tracks))
	for i, track := range tracks {
		items[i] = trackItem{track: track, grabbed: m.grabbed && i == cursor}
	}
	m.trackList.SetItems(items)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		if m.listReady {
			m.playlistList, cmd = m.playlistList.Update(msg)
		}
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		page, err := m.playlists.ListPlaylists(m.ctx, 1, 100)
		if err != nil {
			return playlistsFetchedMsg{err: err}
		}
		return playlistsFetchedMsg{playlists: page.Items}
	}
}

func (m *Model) fetchTracks(playlistID string) tea.Cmd {
	return func() tea.Msg {
		playlist, err := m.playlists.GetPlaylist(m.ctx, playlistID)
		return tracksFetchedMsg{playlist: playlist, err: err}
	}
}

func (m *Model) persistOrder(req tasks.PersistRequest) tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.playlists.ReorderTracks(m.ctx, req.PlaylistID, req.TrackIDs)
		return persistResultMsg{tracks: tracks, err: err}
	}
}

func (m *Model) refetchPlaylist(playlistID string) tea.Cmd {
	return func() tea.Msg {
		playlist, err := m.playlists.GetPlaylist(m.ctx, playlistID)
		return refetchedMsg{playlist: playlist, err: err}
	}
}

func (m *Model) runSearch(req tasks.SearchRequest) tea.Cmd {
	return func() tea.Msg {
		page, err := m.catalog.SearchReleases(m.ctx, req.Query, 1, 10)
		return searchResponseMsg{generation: req.Generation, page: page, err: err}
	}
}

func (m *Model) fetchRelease(discogsReleaseID int64) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.catalog.Release(m.ctx, discogsReleaseID)
		return releaseFetchedMsg{detail: detail, err: err}
	}
}

func (m *Model) renderPlaylistList() string {
	if !m.listReady {
		return fmt.Sprintf("%s Loading playlists...", m.spin.View())
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.search, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	var status string
	if m.reorder.Saving() {
		status = fmt.Sprintf("\n%s %s", m.spin.View(), styles.warning.Render("saving order..."))
	} else if m.grabbed {
		status = "\n" + styles.help.Render("moving track, press g to drop")
	}

	helpKeys := []key.Binding{m.keys.grab, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n\n%s", m.trackList.View(), status, helpView)
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Catalog Search")

	var body string
	switch m.search.State() {
	case tasks.SearchSearching:
		body = fmt.Sprintf("%s searching...", m.spin.View())
	case tasks.SearchNoResults:
		body = styles.help.Render(fmt.Sprintf("No releases found for %q", m.search.Query()))
	case tasks.SearchError:
		body = styles.warning.Render("Search failed, keep typing to retry")
	case tasks.SearchResults:
		for i, result := range m.search.Results() {
			line := result.Title
			if result.Year > 0 {
				line = fmt.Sprintf("%s (%d)", line, result.Year)
			}
			if result.Format != "" {
				line = fmt.Sprintf("%s • %s", line, result.Format)
			}
			if i == m.search.Selection() {
				line = styles.success.Render("> " + line)
			} else {
				line = "  " + line
			}
			body += line + "\n"
		}
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.back}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, m.searchInput.View(), body, helpView)
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return fmt.Sprintf("%s Loading release...", m.spin.View())
	}

	title := styles.title.Render(fmt.Sprintf("%s - %s", m.detail.ArtistName, m.detail.Title))

	info := ""
	if m.detail.Year > 0 {
		info += fmt.Sprintf("Year: %d\n", m.detail.Year)
	}
	if m.detail.Country != "" {
		info += fmt.Sprintf("Country: %s\n", m.detail.Country)
	}
	if m.detail.FormatString != "" {
		info += fmt.Sprintf("Format: %s\n", m.detail.FormatString)
	}
	for _, label := range m.detail.Labels {
		info += fmt.Sprintf("Label: %s %s\n", label.Name, label.CatNo)
	}

	tracks := "\nTracklist:\n"
	for _, track := range m.detail.Tracks {
		duration := ""
		if track.Duration != "" {
			duration = fmt.Sprintf(" [%s]", track.Duration)
		}
		tracks += fmt.Sprintf("  %s  %s%s\n", track.Position, track.Title, duration)
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n%s", title, info, tracks, helpView)
}
