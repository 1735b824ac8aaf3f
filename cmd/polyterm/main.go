package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"polyterm/internal/api"
	"polyterm/internal/config"
	"polyterm/internal/domain"
	"polyterm/internal/expand"
	"polyterm/internal/format"
	"polyterm/internal/palette"
	"polyterm/internal/query"
	"polyterm/internal/session"
	"polyterm/internal/store"
	"polyterm/internal/util"
	"polyterm/internal/watchlist"
)

// Styles.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")).Background(lipgloss.Color("236"))
	watchedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	priceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	volumeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	loadingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	trendStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	userMsgStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	botMsgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	overlayStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Focus targets for keyboard input.
type focusArea int

const (
	focusList focusArea = iota
	focusSearch
	focusPalette
	focusChat
)

// Messages.
type dataLoadedMsg struct {
	res query.Result
}

type chatReplyMsg struct {
	gen   uint64
	reply string
	err   error
}

// Model.
type model struct {
	logger *slog.Logger
	client *api.Client

	queries   *query.Controller
	watch     *watchlist.Manager
	expansion *expand.Set
	pal       *palette.Controller
	chat      *session.Manager

	searchInput  textinput.Model
	paletteInput textinput.Model
	chatInput    textinput.Model

	viewport      viewport.Model
	ready         bool
	width, height int

	focus      focusArea
	selected   int // index into the currently listed events
	paletteSel int // index into the palette results
	watchOnly  bool
	catIdx     int // -1 = all categories
}

func initialModel(logger *slog.Logger, client *api.Client, wm *watchlist.Manager) model {
	search := textinput.New()
	search.Placeholder = "Search events..."
	search.CharLimit = 120

	pal := textinput.New()
	pal.Placeholder = "Jump to event..."
	pal.CharLimit = 120

	chatIn := textinput.New()
	chatIn.Placeholder = "Ask about this event..."
	chatIn.CharLimit = 500

	return model{
		logger:       logger,
		client:       client,
		queries:      query.NewController(logger),
		watch:        wm,
		expansion:    expand.NewSet(),
		pal:          palette.New(),
		chat:         session.NewManager(),
		searchInput:  search,
		paletteInput: pal,
		chatInput:    chatIn,
		catIdx:       -1,
	}
}

func (m model) Init() tea.Cmd {
	return m.fetchCmd(m.queries.BeginFetch())
}

// fetchCmd runs one fetch cycle off the update loop and delivers its result
// as a single message, so all three collections are applied in one Update.
func (m *model) fetchCmd(spec query.Spec) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return dataLoadedMsg{res: query.Fetch(context.Background(), client, spec)}
	}
}

// chatCmd executes an outbound chat request. The generation tag travels
// with the result so a reply landing after the session changed is dropped.
func (m *model) chatCmd(req session.Request) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		reply, err := client.Chat(context.Background(), req.EventID, req.Messages)
		return chatReplyMsg{gen: req.Generation, reply: reply, err: err}
	}
}

// listedEvents returns the events the list panel is currently showing:
// either the full collection or the watchlist intersection.
func (m *model) listedEvents() []domain.Event {
	if m.watchOnly {
		return m.watch.Visible(m.queries.Events())
	}
	return m.queries.Events()
}

// selectedEvent returns the event under the cursor, if any.
func (m *model) selectedEvent() (domain.Event, bool) {
	events := m.listedEvents()
	if m.selected < 0 || m.selected >= len(events) {
		return domain.Event{}, false
	}
	return events[m.selected], true
}

// clampSelection keeps the cursor inside the listed events after the
// collection or the view filter changed.
func (m *model) clampSelection() {
	n := len(m.listedEvents())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// openChat starts an analysis session for the event and moves focus to the
// chat input.
func (m *model) openChat(ev domain.Event) {
	m.chat.Open(ev)
	m.chatInput.SetValue("")
	m.chatInput.Focus()
	m.focus = focusChat
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerH := 2
		footerH := 1
		vpHeight := m.height - headerH - footerH
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case dataLoadedMsg:
		m.queries.Apply(msg.res)
		m.clampSelection()
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}
		return m, nil

	case chatReplyMsg:
		if msg.err != nil {
			m.logger.Warn("chat send failed", "error", msg.err)
			if !m.chat.Fail(msg.gen) {
				m.logger.Info("dropped stale chat failure", "generation", msg.gen)
			}
		} else if !m.chat.Resolve(msg.gen, msg.reply) {
			m.logger.Info("dropped stale chat reply", "generation", msg.gen)
		}
		if m.ready {
			m.viewport.SetContent(m.renderContent())
			if m.chat.Active() {
				m.viewport.GotoBottom()
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// handleKey dispatches a keypress to the focused surface. The palette
// hotkey and quit are handled first so they work everywhere; the hotkey is
// consumed here and never reaches the terminal.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+k":
		m.pal.Toggle()
		if m.pal.IsOpen() {
			m.paletteInput.SetValue("")
			m.paletteInput.Focus()
			m.paletteSel = 0
			m.focus = focusPalette
		} else {
			m.paletteInput.Blur()
			m.focus = focusList
		}
		m.refresh()
		return m, nil
	}

	switch m.focus {
	case focusPalette:
		return m.handlePaletteKey(msg)
	case focusChat:
		return m.handleChatKey(msg)
	case focusSearch:
		return m.handleSearchKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.searchInput.Focus()
		m.focus = focusSearch
		m.refresh()
		return m, nil
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		m.refresh()
		m.ensureVisible()
		return m, nil
	case "down", "j":
		if m.selected < len(m.listedEvents())-1 {
			m.selected++
		}
		m.refresh()
		m.ensureVisible()
		return m, nil
	case " ":
		if ev, ok := m.selectedEvent(); ok {
			watched, err := m.watch.Toggle(context.Background(), ev.ID)
			if err != nil {
				m.logger.Warn("persisting watchlist", "event", ev.ID, "error", err)
			}
			m.logger.Info("watchlist toggled", "event", ev.ID, "watched", watched)
			m.clampSelection()
			m.refresh()
		}
		return m, nil
	case "e":
		if ev, ok := m.selectedEvent(); ok {
			m.expansion.Toggle(ev.ID)
			m.refresh()
		}
		return m, nil
	case "w":
		m.watchOnly = !m.watchOnly
		m.selected = 0
		m.refresh()
		return m, nil
	case "tab":
		m.cycleCategory()
		return m, m.fetchCmd(m.queries.BeginFetch())
	case "enter":
		if ev, ok := m.selectedEvent(); ok {
			m.openChat(ev)
			m.refresh()
		}
		return m, nil
	}

	// Unmatched keys (pgup/pgdn and friends) scroll the viewport.
	var cmd tea.Cmd
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// selectedLine returns the content line index of the selected event row,
// mirroring renderEvents' layout.
func (m *model) selectedLine() int {
	line := 0
	if trending := m.queries.Trending(); len(trending) > 0 {
		n := len(trending)
		if n > 5 {
			n = 5
		}
		line += 1 + n + 1
	}
	line++ // list label
	for i, ev := range m.listedEvents() {
		if i == m.selected {
			return line
		}
		line++
		line += len(m.expansion.VisibleMarkets(ev))
		if m.expansion.HiddenCount(ev) > 0 {
			line++
		}
	}
	return -1
}

// ensureVisible scrolls the viewport so the selected row stays on screen.
func (m *model) ensureVisible() {
	if !m.ready {
		return
	}
	line := m.selectedLine()
	if line < 0 {
		return
	}
	yOff := m.viewport.YOffset
	vpH := m.viewport.Height
	if line < yOff {
		m.viewport.SetYOffset(line)
	} else if line >= yOff+vpH {
		m.viewport.SetYOffset(line - vpH + 1)
	}
}

func (m model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searchInput.Blur()
		m.focus = focusList
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.queries.SetSearch(m.searchInput.Value()) {
		m.refresh()
		return m, tea.Batch(cmd, m.fetchCmd(m.queries.BeginFetch()))
	}
	return m, cmd
}

func (m model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pal.Close()
		m.paletteInput.Blur()
		m.focus = focusList
		m.refresh()
		return m, nil
	case "up":
		if m.paletteSel > 0 {
			m.paletteSel--
		}
		m.refresh()
		return m, nil
	case "down":
		if m.paletteSel < len(m.pal.Filter(m.queries.Events()))-1 {
			m.paletteSel++
		}
		m.refresh()
		return m, nil
	case "enter":
		results := m.pal.Filter(m.queries.Events())
		if m.paletteSel >= 0 && m.paletteSel < len(results) {
			m.pal.Close()
			m.paletteInput.Blur()
			m.openChat(results[m.paletteSel])
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.paletteInput, cmd = m.paletteInput.Update(msg)
	if m.pal.Query() != m.paletteInput.Value() {
		m.pal.SetQuery(m.paletteInput.Value())
		m.paletteSel = 0
		m.refresh()
	}
	return m, cmd
}

func (m model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.chat.Close()
		m.chatInput.Blur()
		m.focus = focusList
		m.refresh()
		return m, nil
	case "enter":
		req, ok := m.chat.Send(m.chatInput.Value())
		if !ok {
			// Blank input or a request already outstanding; ignored.
			return m, nil
		}
		m.chatInput.SetValue("")
		m.refresh()
		m.viewport.GotoBottom()
		return m, m.chatCmd(req)
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// cycleCategory advances the category filter through the fetched category
// list, wrapping back to "all".
func (m *model) cycleCategory() {
	categories := m.queries.Categories()
	if len(categories) == 0 {
		return
	}
	m.catIdx++
	if m.catIdx >= len(categories) {
		m.catIdx = -1
	}
	if m.catIdx == -1 {
		m.queries.SetCategory("")
	} else {
		m.queries.SetCategory(categories[m.catIdx])
	}
	m.selected = 0
}

// refresh re-renders the viewport content if the terminal size is known.
func (m *model) refresh() {
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func (m *model) renderContent() string {
	if m.pal.IsOpen() {
		return m.renderPalette()
	}
	if m.chat.Active() {
		return m.renderChat()
	}
	return m.renderEvents()
}

func (m *model) renderEvents() string {
	var b strings.Builder

	if trending := m.queries.Trending(); len(trending) > 0 {
		b.WriteString(trendStyle.Render("Trending"))
		b.WriteString("\n")
		max := 5
		if len(trending) < max {
			max = len(trending)
		}
		for _, te := range trending[:max] {
			b.WriteString("  " + te.Title)
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %s 24h · ends %s",
				format.Volume(te.Volume24hr), format.EndDateMillis(te.EndDate))))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	events := m.listedEvents()
	label := fmt.Sprintf("Events (%d)", len(events))
	if m.watchOnly {
		label = fmt.Sprintf("Watchlist (%d)", len(events))
	}
	b.WriteString(trendStyle.Render(label))
	b.WriteString("\n")

	if len(events) == 0 {
		b.WriteString(dimStyle.Render("  nothing to show"))
		b.WriteString("\n")
		return b.String()
	}

	for i, ev := range events {
		star := "  "
		if m.watch.IsWatched(ev.ID) {
			star = watchedStyle.Render("★ ")
		}
		title := titleStyle.Render(ev.Title)
		if i == m.selected {
			title = selectedStyle.Render(ev.Title)
		}
		b.WriteString(star + title)
		if ev.Category != "" {
			b.WriteString("  " + categoryStyle.Render("["+ev.Category+"]"))
		}
		b.WriteString("  " + dimStyle.Render("ends "+format.EndDate(ev.EndDate)))
		b.WriteString("\n")

		for _, mk := range m.expansion.VisibleMarkets(ev) {
			b.WriteString("    " + mk.Question)
			b.WriteString("  " + priceStyle.Render(format.Probability(mk.OutcomePrice)))
			b.WriteString("  " + volumeStyle.Render(format.Volume(mk.Volume)))
			b.WriteString("\n")
		}
		if hidden := m.expansion.HiddenCount(ev); hidden > 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("    +%d more markets (e to expand)", hidden)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m *model) renderPalette() string {
	var b strings.Builder
	b.WriteString(m.paletteInput.View())
	b.WriteString("\n\n")

	results := m.pal.Filter(m.queries.Events())
	if len(results) == 0 {
		b.WriteString(dimStyle.Render("no matching events"))
	}
	for i, ev := range results {
		line := ev.Title
		if i == m.paletteSel {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		if ev.Category != "" {
			b.WriteString("  " + categoryStyle.Render("["+ev.Category+"]"))
		}
		b.WriteString("\n")
	}

	return overlayStyle.Render(b.String())
}

func (m *model) renderChat() string {
	var b strings.Builder

	if ev, ok := m.chat.Event(); ok {
		b.WriteString(trendStyle.Render("Analyzing: " + ev.Title))
		b.WriteString("\n\n")
	}

	for _, msg := range m.chat.Messages() {
		if msg.Role == domain.RoleUser {
			b.WriteString(userMsgStyle.Render("you: "))
		} else {
			b.WriteString(botMsgStyle.Render("analyst: "))
		}
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}

	if m.chat.Busy() {
		b.WriteString(loadingStyle.Render("thinking..."))
		b.WriteString("\n\n")
	}

	b.WriteString(m.chatInput.View())
	return b.String()
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := headerStyle.Render(" polyterm ")
	if cat := m.queries.Category(); cat != "" {
		header += dimStyle.Render(" category: ") + categoryStyle.Render(cat)
	}
	if m.queries.Loading() {
		header += "  " + loadingStyle.Render("fetching...")
	}

	var search string
	if m.focus == focusSearch || m.searchInput.Value() != "" {
		search = m.searchInput.View()
	} else {
		search = dimStyle.Render("/ to search · tab category · ctrl+k palette · space star · e expand · w watchlist · enter analyze · q quit")
	}

	footer := footerStyle.Render(fmt.Sprintf("%d events · %d watched", len(m.queries.Events()), m.watch.Len()))

	return header + "\n" + search + "\n" + m.viewport.View() + "\n" + footer
}

func main() {
	cfg, err := config.Load(os.Getenv("POLYTERM_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logPath := cfg.Logging.File
	if logPath == "" {
		logPath = fmt.Sprintf("/tmp/polyterm-%s.log", time.Now().Format("2006-01-02"))
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLogger(logFile, cfg.Logging.Level, cfg.Logging.Format)

	var wlStore store.WatchlistStore
	switch cfg.Storage.Backend {
	case "file":
		wlStore = store.NewFileStore(cfg.Storage.WatchlistPath)
	default:
		s, err := store.NewSQLiteStore(cfg.Storage.WatchlistPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening watchlist store: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()
		wlStore = s
	}

	wm, err := watchlist.NewManager(context.Background(), wlStore)
	if err != nil {
		// Degraded but usable: start with an empty watchlist.
		logger.Warn("loading watchlist", "error", err)
	}
	logger.Info("watchlist loaded", "events", wm.Len())

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)

	p := tea.NewProgram(
		initialModel(logger, client, wm),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
