package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/lens/internal/capture"
	"github.com/hay-kot/lens/internal/core/config"
	"github.com/hay-kot/lens/internal/lens"
	"github.com/hay-kot/lens/internal/styles"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateHome UIState = iota
	stateSearchForm
	stateLibraryForm
	stateConfirmClear
	stateLoading
	stateResults
)

// Key constants for event handling.
const (
	keyEnter = "enter"
	keyCtrlC = "ctrl+c"
	keyEsc   = "esc"
)

// chromeHeight is the number of lines taken by the banner, header and status line.
const chromeHeight = 8

// searchDoneMsg is sent when a text or image search finishes.
type searchDoneMsg struct {
	out lens.Outcome
	err error
}

// captureDoneMsg is sent when the camera command finishes.
type captureDoneMsg struct {
	img capture.Image
	err error
}

// libraryLoadedMsg is sent when the photo library has been listed.
type libraryLoadedMsg struct {
	images []capture.Image
	err    error
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	cfg            *config.Config
	service        *lens.Service
	list           list.Model
	keys           keyMap
	state          UIState
	modal          Modal
	width          int
	height         int
	err            error
	status         string
	spinner        spinner.Model
	loadingMessage string
	cancel         context.CancelFunc
	quitting       bool

	searchForm  *SearchForm
	libraryForm *LibraryForm
	results     ResultsView
}

// New creates a new TUI model.
func New(service *lens.Service, cfg *config.Config) Model {
	keys := defaultKeyMap()

	l := list.New([]list.Item{}, NewEntryDelegate(), 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)
	l.DisableQuitKeybindings()
	l.Styles.HelpStyle = lipgloss.NewStyle().PaddingLeft(1)
	l.AdditionalShortHelpKeys = keys.ShortHelp

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := Model{
		cfg:     cfg,
		service: service,
		list:    l,
		keys:    keys,
		state:   stateHome,
		spinner: s,
	}
	m.refreshList()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// refreshList reloads the list from the history store, keeping the cursor
// in range.
func (m *Model) refreshList() {
	entries := m.service.History().Entries()
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = EntryItem{Entry: e}
	}

	idx := m.list.Index()
	m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}

	m.keys.setAvailability(len(entries) > 0, m.service.CameraAvailable())
}

func (m Model) selectedEntry() (EntryItem, bool) {
	item, ok := m.list.SelectedItem().(EntryItem)
	return item, ok
}

// startLoading switches to the loading state and runs fn with a cancelable context.
func (m Model) startLoading(message string, fn func(ctx context.Context) tea.Msg) (Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.state = stateLoading
	m.loadingMessage = message
	m.cancel = cancel
	m.err = nil
	m.status = ""

	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return fn(ctx)
	})
}

func (m Model) startSearch(query string) (Model, tea.Cmd) {
	return m.startLoading(fmt.Sprintf("Searching for %q", query), func(ctx context.Context) tea.Msg {
		out, err := m.service.Search(ctx, query)
		return searchDoneMsg{out: out, err: err}
	})
}

func (m Model) startImageSearch(img capture.Image) (Model, tea.Cmd) {
	return m.startLoading("Searching with image", func(ctx context.Context) tea.Msg {
		out, err := m.service.SearchImage(ctx, img)
		return searchDoneMsg{out: out, err: err}
	})
}

func (m Model) stopLoading() Model {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.state = stateHome
	m.loadingMessage = ""
	return m
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-chromeHeight, 1))
		if m.state == stateResults {
			m.results.SetSize(msg.Width, msg.Height-chromeHeight)
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case searchDoneMsg:
		if m.state != stateLoading {
			return m, nil
		}
		m = m.stopLoading()
		m.refreshList()
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.results = NewResultsView(msg.out, m.width, m.height-chromeHeight)
		m.state = stateResults
		return m, nil

	case captureDoneMsg:
		if m.state != stateLoading {
			return m, nil
		}
		m = m.stopLoading()
		if errors.Is(msg.err, capture.ErrCanceled) {
			m.status = "Capture canceled"
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m.startImageSearch(msg.img)

	case libraryLoadedMsg:
		if m.state != stateLoading {
			return m, nil
		}
		m = m.stopLoading()
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if len(msg.images) == 0 {
			m.err = capture.ErrNoImages
			return m, nil
		}
		m.libraryForm = NewLibraryForm(msg.images, m.cfg.Capture.LibraryDir)
		m.state = stateLibraryForm
		return m, m.libraryForm.Form().Init()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	switch m.state {
	case stateSearchForm, stateLibraryForm:
		return m.updateForm(msg)
	case stateResults:
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	if keyStr == keyCtrlC {
		if m.cancel != nil {
			m.cancel()
		}
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case stateSearchForm, stateLibraryForm:
		if keyStr == keyEsc {
			m.state = stateHome
			m.searchForm = nil
			m.libraryForm = nil
			return m, nil
		}
		return m.updateForm(msg)
	case stateConfirmClear:
		return m.handleConfirmKey(keyStr)
	case stateLoading:
		if keyStr == keyEsc {
			m = m.stopLoading()
			m.status = "Canceled"
		}
		return m, nil
	case stateResults:
		return m.handleResultsKey(msg, keyStr)
	}

	if m.list.SettingFilter() {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m.handleHomeKey(msg)
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	hist := m.service.History()
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Search):
		m.searchForm = NewSearchForm("")
		m.state = stateSearchForm
		return m, m.searchForm.Form().Init()

	case key.Matches(msg, m.keys.Open):
		item, ok := m.selectedEntry()
		if !ok {
			return m, nil
		}
		entry := item.Entry
		return m.startLoading(fmt.Sprintf("Searching for %q", entry.Text), func(ctx context.Context) tea.Msg {
			out, err := m.service.Rerun(ctx, entry)
			return searchDoneMsg{out: out, err: err}
		})

	case key.Matches(msg, m.keys.Capture):
		return m.startLoading("Waiting for camera", func(ctx context.Context) tea.Msg {
			img, err := m.service.Capture(ctx)
			return captureDoneMsg{img: img, err: err}
		})

	case key.Matches(msg, m.keys.Library):
		return m.startLoading("Reading photo library", func(context.Context) tea.Msg {
			images, err := m.service.LibraryImages()
			return libraryLoadedMsg{images: images, err: err}
		})

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.selectedEntry()
		if !ok {
			return m, nil
		}
		if hist.Remove(item.Entry.ID) {
			m.status = fmt.Sprintf("Removed %q", item.Entry.Text)
		}
		m.refreshList()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.modal = NewModal("Clear search history?", fmt.Sprintf("%d entries will be removed.", len(hist.Entries())))
		m.state = stateConfirmClear
		return m, nil

	case key.Matches(msg, m.keys.Incognito):
		on := !hist.Incognito()
		hist.SetIncognito(on)
		if on {
			m.status = "Incognito on: searches will not be saved"
		} else {
			m.status = "Incognito off"
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "left", "right", "h", "l", "tab":
		m.modal.ToggleSelection()
	case "y":
		return m.confirmClear()
	case keyEnter:
		if m.modal.ConfirmSelected() {
			return m.confirmClear()
		}
		m.state = stateHome
	case keyEsc, "n", "q":
		m.state = stateHome
	}
	return m, nil
}

func (m Model) confirmClear() (tea.Model, tea.Cmd) {
	m.service.History().Clear()
	m.refreshList()
	m.state = stateHome
	m.status = "History cleared"
	return m, nil
}

func (m Model) handleResultsKey(msg tea.KeyMsg, keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case keyEsc, "backspace":
		m.state = stateHome
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

// updateForm routes any message to the active form and handles completion.
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	var form *huh.Form
	switch m.state {
	case stateSearchForm:
		form = m.searchForm.Form()
	case stateLibraryForm:
		form = m.libraryForm.Form()
	default:
		return m, nil
	}

	updated, cmd := form.Update(msg)
	f, ok := updated.(*huh.Form)
	if !ok {
		return m, cmd
	}

	switch f.State {
	case huh.StateAborted:
		m.state = stateHome
		m.searchForm = nil
		m.libraryForm = nil
		return m, nil
	case huh.StateCompleted:
		if m.state == stateSearchForm {
			query := m.searchForm.Query()
			m.searchForm = nil
			return m.startSearch(query)
		}
		img := m.libraryForm.Image()
		m.libraryForm = nil
		return m.startImageSearch(img)
	}

	return m, cmd
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := titleStyle.Render("Recent searches")
	if m.service.History().Incognito() {
		header += " " + styles.IncognitoBadgeStyle.Render("INCOGNITO")
	}

	var body string
	switch m.state {
	case stateSearchForm:
		body = lipgloss.NewStyle().Padding(1, 2).Render(m.searchForm.Form().View())
	case stateLibraryForm:
		body = lipgloss.NewStyle().Padding(1, 2).Render(m.libraryForm.Form().View())
	case stateConfirmClear:
		body = m.modal.Render(m.width, max(m.height-chromeHeight, 1))
	case stateLoading:
		body = "\n " + m.spinner.View() + " " + m.loadingMessage + "\n" + statusStyle.Render("esc cancel")
	case stateResults:
		return lipgloss.JoinVertical(lipgloss.Left, bannerStyle.Render(styles.Banner), m.results.View())
	default:
		if len(m.list.Items()) == 0 {
			body = "\n" + emptyStyle.Render("No recent searches. Press s to search, c for the camera, l for the library.")
		} else {
			body = m.list.View()
		}
	}

	var footer string
	switch {
	case m.err != nil:
		footer = errorStyle.Render(m.err.Error())
	case m.status != "":
		footer = statusStyle.Render(m.status)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		bannerStyle.Render(styles.Banner),
		header,
		"",
		body,
		footer,
	)
}
