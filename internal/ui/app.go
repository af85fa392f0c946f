package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/config"
	"github.com/safarline/busadmin/internal/domain"
	"github.com/safarline/busadmin/internal/state"
	"github.com/safarline/busadmin/internal/validate"
)

// View represents the current active view.
type View int

const (
	ViewLogin View = iota
	ViewList
	ViewDetail
	ViewActivity
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Config    *config.Config
	Logger    *zap.Logger
	ThemeName string
	Locale    string
	// Online is the result of the startup reachability check.
	Online bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx    context.Context
	store  *state.Store
	config *config.Config
	logger *zap.Logger
	keys   keyMap

	theme  Theme
	locale string
	online bool

	currentView View
	width       int
	height      int
	ready       bool

	// Resources
	screens []screen
	current int
	table   table.Model
	rowIDs  []int64

	// Detail
	detail   viewport.Model
	detailID int64

	// Activity log
	activity      viewport.Model
	activityLines []string
	activityLevel string
	activityErr   error

	login loginForm

	search    textinput.Model
	searching bool
	searchSeq int

	spinner  spinner.Model
	help     help.Model
	showHelp bool
	modal    Modal

	flash    string
	flashErr bool
	flashSeq int

	signingOut bool
}

// New creates the root model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	locale := opts.Locale
	if locale == "" && opts.Config != nil {
		locale = opts.Config.Locale
	}
	if locale == "" {
		locale = domain.LocaleEnglish
	}

	keys := DefaultKeyMap()
	tbl := table.New(
		table.WithFocused(true),
		table.WithKeyMap(table.KeyMap{
			LineUp:       keys.Up,
			LineDown:     keys.Down,
			GotoTop:      keys.Top,
			GotoBottom:   keys.Bottom,
			PageUp:       key.NewBinding(key.WithKeys("pgup")),
			PageDown:     key.NewBinding(key.WithKeys("pgdown")),
			HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
			HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		}),
	)

	search := textinput.New()
	search.Prompt = "/"
	search.CharLimit = 100

	m := Model{
		ctx:      ctx,
		store:    opts.Store,
		config:   opts.Config,
		logger:   logger.Named("ui"),
		keys:     keys,
		theme:    GetTheme(opts.ThemeName),
		locale:   locale,
		online:   opts.Online,
		screens:  screens(opts.Store),
		table:    tbl,
		detail:   viewport.New(0, 0),
		activity: viewport.New(0, 0),
		search:   search,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
	}
	m.login = newLoginForm(opts.Store.Auth.Session().User.Email)
	if opts.Store.Auth.Snapshot().IsAuthenticated {
		m.currentView = ViewList
	}
	m.applyTheme()
	m.syncTable()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.currentView == ViewList {
		cmds = append(cmds, listCmd(m.ctx, m.screen(), api.Query{Page: 1}))
	} else {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.refreshDetail()
		m.refreshActivity()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case flashExpiredMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case searchTickMsg:
		if msg.seq == m.searchSeq && m.searching {
			return m, m.applySearch(m.search.Value())
		}
		return m, nil

	case activityMsg:
		m.activityLines = msg.lines
		m.activityErr = msg.err
		m.refreshActivity()
		m.activity.GotoBottom()
		return m, nil

	case opDoneMsg:
		cmds = append(cmds, m.handleOpDone(msg))
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		m.modal = modal
		if closed {
			m.modal = nil
		}
		cmds = append(cmds, cmd)
	}

	// The session watcher may have expired the token in the background.
	if m.currentView != ViewLogin && !m.signingOut && !m.store.Auth.Snapshot().IsAuthenticated {
		cmds = append(cmds, m.signedOut("Session expired, please sign in again", true))
	}

	m.syncTable()
	m.refreshDetail()
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.currentView == ViewLogin {
		return m.renderLogin()
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleOpDone reacts to a finished operation. The data itself is read back
// from the collection snapshot on the next render.
func (m *Model) handleOpDone(msg opDoneMsg) tea.Cmd {
	if errors.Is(msg.err, state.ErrSuperseded) {
		return nil
	}
	if unauthorized(msg.err) {
		m.logger.Info("token rejected", zap.String("resource", msg.resource), zap.String("op", msg.op))
		m.store.Auth.Expire()
		return m.signedOut("Session expired, please sign in again", true)
	}

	switch msg.op {
	case opLogin:
		if msg.err != nil {
			return nil
		}
		m.currentView = ViewList
		name := m.store.Auth.Snapshot().User.DisplayName()
		return tea.Batch(
			m.setFlash("Signed in as "+name, false),
			listCmd(m.ctx, m.screen(), api.Query{Page: 1}),
		)
	case opLogout:
		return m.signedOut("Signed out", false)
	case opSave:
		if msg.err == nil {
			return m.setFlash("Saved", false)
		}
	case opDelete:
		if msg.err == nil {
			return m.setFlash("Deleted", false)
		}
		return m.setFlash(api.Message(msg.err), true)
	}
	return nil
}

// signedOut returns to the sign-in screen, dropping any open dialog.
func (m *Model) signedOut(notice string, isErr bool) tea.Cmd {
	m.modal = nil
	m.searching = false
	m.signingOut = false
	m.currentView = ViewLogin
	m.login = newLoginForm(m.store.Auth.Session().User.Email)
	return tea.Batch(m.setFlash(notice, isErr), textinput.Blink)
}

func (m *Model) setFlash(text string, isErr bool) tea.Cmd {
	m.flashSeq++
	m.flash = text
	m.flashErr = isErr
	return flashTimeoutCmd(m.flashSeq)
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.currentView == ViewLogin {
		return m.handleLoginKey(msg)
	}
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		m.modal = modal
		if closed {
			m.modal = nil
		}
		return m, cmd
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTheme()
		m.refreshActivity()
		m.store.Auth.SetPreferences(m.theme.Name, "")
		return m, nil

	case key.Matches(msg, m.keys.CycleLocale):
		m.locale = nextLocale(m.locale)
		m.store.Auth.SetPreferences("", m.locale)
		m.syncTable()
		m.refreshDetail()
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		m.signingOut = true
		return m, logoutCmd(m.ctx, m.store.Auth)

	case key.Matches(msg, m.keys.Activity):
		m.currentView = ViewActivity
		return m, readActivityCmd(m.config)

	case key.Matches(msg, m.keys.NextScreen):
		return m, m.switchScreen(1)

	case key.Matches(msg, m.keys.PrevScreen):
		return m, m.switchScreen(-1)

	case key.Matches(msg, m.keys.Escape):
		if m.currentView == ViewDetail {
			m.screen().ClearSelection()
		}
		if m.currentView != ViewList {
			m.currentView = ViewList
			return m, nil
		}
		v := m.screen().View(m.locale)
		if v.Err != nil {
			m.screen().ClearError()
			return m, nil
		}
		if v.Query.Search != "" {
			return m, m.applySearch("")
		}
		return m, nil
	}

	switch m.currentView {
	case ViewDetail:
		return m.handleDetailKey(msg)
	case ViewActivity:
		return m.handleActivityKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

// handleListKey processes keys for the record list.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.screen()

	switch {
	case key.Matches(msg, m.keys.Open):
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		m.currentView = ViewDetail
		m.detailID = id
		m.refreshDetail()
		m.detail.GotoTop()
		return m, showCmd(m.ctx, s, id)

	case key.Matches(msg, m.keys.New):
		return m, m.openCreate()

	case key.Matches(msg, m.keys.Edit):
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		return m, m.openEdit(id)

	case key.Matches(msg, m.keys.Delete):
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		return m, m.openDelete(id)

	case key.Matches(msg, m.keys.Refresh):
		return m, refreshCmd(m.ctx, s)

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(s.View(m.locale).Query.Search)
		m.search.CursorEnd()
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.PageLeft):
		return m, m.stepPage(false)

	case key.Matches(msg, m.keys.PageRight):
		return m, m.stepPage(true)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleDetailKey processes keys for the full-screen record view.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Edit):
		return m, m.openEdit(m.detailID)
	case key.Matches(msg, m.keys.Delete):
		return m, m.openDelete(m.detailID)
	case key.Matches(msg, m.keys.Refresh):
		return m, showCmd(m.ctx, m.screen(), m.detailID)
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

// handleActivityKey processes keys for the activity log.
func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m, readActivityCmd(m.config)
	case key.Matches(msg, m.keys.Level):
		m.activityLevel = nextLevel(m.activityLevel)
		m.refreshActivity()
		m.activity.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.activity, cmd = m.activity.Update(msg)
	return m, cmd
}

// handleSearchKey edits the search box. Typing pauses for SearchDebounce
// before listing; a list superseded by a newer keystroke is dropped by the
// collection.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		m.searchSeq++
		return m, m.applySearch(m.search.Value())
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.searchSeq++
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.searchSeq++
		return m, tea.Batch(cmd, searchTickCmd(m.searchSeq))
	}
	return m, cmd
}

func (m *Model) openCreate() tea.Cmd {
	s := m.screen()
	if !s.Creatable() {
		return m.setFlash(s.Title()+" cannot be created here", true)
	}
	m.modal = newFormModal(m.ctx, s, validate.Create, 0, nil, m.locale)
	return textinput.Blink
}

func (m *Model) openEdit(id int64) tea.Cmd {
	s := m.screen()
	if !s.Editable() {
		return m.setFlash(s.Title()+" are read-only", true)
	}
	draft, ok := s.Draft(id)
	if !ok {
		return nil
	}
	m.modal = newFormModal(m.ctx, s, validate.Edit, id, draft, m.locale)
	return textinput.Blink
}

func (m *Model) openDelete(id int64) tea.Cmd {
	s := m.screen()
	if !s.Deletable() {
		return m.setFlash(s.Title()+" cannot be deleted", true)
	}
	label := "#" + idText(id)
	if lines, ok := s.Detail(id, m.locale); ok && len(lines) > 1 {
		label = lines[1].Value
	}
	m.modal = confirmDelete{ctx: m.ctx, screen: s, id: id, label: label}
	return nil
}

// switchScreen moves to another resource tab, loading it on first visit.
func (m *Model) switchScreen(delta int) tea.Cmd {
	n := len(m.screens)
	m.current = (m.current + delta + n) % n
	m.currentView = ViewList
	m.syncTable()

	v := m.screen().View(m.locale)
	if v.Page.CurrentPage == 0 && !v.Loading && v.Err == nil {
		return listCmd(m.ctx, m.screen(), api.Query{Page: 1})
	}
	return nil
}

func (m *Model) stepPage(right bool) tea.Cmd {
	s := m.screen()
	v := s.View(m.locale)
	page, ok := pageStep(pagerFor(v.Page, m.rtl()), right)
	if !ok {
		return nil
	}
	q := v.Query.Clone()
	q.Page = page
	return listCmd(m.ctx, s, q)
}

func (m *Model) applySearch(text string) tea.Cmd {
	s := m.screen()
	q := s.View(m.locale).Query.Clone()
	q.Search = strings.TrimSpace(text)
	q.Page = 1
	return listCmd(m.ctx, s, q)
}

func (m Model) screen() screen {
	return m.screens[m.current]
}

func (m Model) rtl() bool {
	return domain.IsRTL(m.locale)
}

func (m Model) selectedID() (int64, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rowIDs) {
		return 0, false
	}
	return m.rowIDs[i], true
}

// syncTable loads the current screen's rows into the table, keeping the
// cursor on the same record when it is still listed.
func (m *Model) syncTable() {
	prev, hadPrev := m.selectedID()

	s := m.screen()
	v := s.View(m.locale)

	cols := make([]table.Column, 0, len(s.Columns()))
	for _, c := range s.Columns() {
		cols = append(cols, table.Column{Title: c.Title, Width: c.Width})
	}
	rows := make([]table.Row, 0, len(v.Rows))
	for _, r := range v.Rows {
		rows = append(rows, append(table.Row(nil), r...))
	}
	if m.rtl() {
		reverse(cols)
		for _, r := range rows {
			reverse(r)
		}
	}

	// Rows must never be wider than the columns while switching screens.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.rowIDs = v.IDs

	if hadPrev {
		for i, id := range v.IDs {
			if id == prev {
				m.table.SetCursor(i)
				return
			}
		}
	}
	// An emptied table leaves the cursor at -1.
	if m.table.Cursor() < 0 && len(rows) > 0 {
		m.table.SetCursor(0)
	}
}

// layout sizes the components for the window.
func (m *Model) layout() {
	content := m.contentHeight()
	m.table.SetWidth(m.listWidth() - 2)
	// borders, status line, pager
	m.table.SetHeight(max(content-5, 3))
	m.detail.Width = m.width - 4
	m.detail.Height = max(content-2, 1)
	m.activity.Width = m.width - 4
	m.activity.Height = max(content-3, 1)
	m.help.Width = m.width
}

// contentHeight is the height below the header and tabs and above the
// command bar.
func (m Model) contentHeight() int {
	return max(m.height-3, 3)
}

func (m Model) listWidth() int {
	switch {
	case m.width < LayoutCompactWidth:
		return m.width
	case m.width >= LayoutExtraWideWidth:
		return m.width * 55 / 100
	default:
		return m.width * 60 / 100
	}
}

// applyTheme restyles the bubbles components.
func (m *Model) applyTheme() {
	t := m.theme

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(t.Border)).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color(t.Text))
	ts.Cell = ts.Cell.Foreground(lipgloss.Color(t.Text))
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color(t.SelectionText)).
		Background(lipgloss.Color(t.SelectionBg)).
		Bold(false)
	m.table.SetStyles(ts)

	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))

	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))
	m.help.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
	m.help.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint))
	m.help.Styles.FullKey = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning))
	m.help.Styles.FullDesc = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text))
	m.help.Styles.FullSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint))
	m.help.Styles.Ellipsis = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint))
}

func nextLocale(current string) string {
	for i, loc := range domain.Locales {
		if loc == current {
			return domain.Locales[(i+1)%len(domain.Locales)]
		}
	}
	return domain.Locales[0]
}

// activityLevels is the cycle of minimum levels for the activity log.
var activityLevels = []string{"", "INFO", "WARN", "ERROR"}

func nextLevel(current string) string {
	for i, l := range activityLevels {
		if l == current {
			return activityLevels[(i+1)%len(activityLevels)]
		}
	}
	return ""
}

func reverse[S ~[]E, E any](s S) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
