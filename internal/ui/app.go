package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/stockroom/internal/api"
	"github.com/five82/stockroom/internal/prefs"
	"github.com/five82/stockroom/internal/session"
	"github.com/five82/stockroom/internal/state"
)

// Options configures the UI.
type Options struct {
	Context     context.Context
	Client      *api.Client
	Store       *state.Store
	Expired     <-chan struct{} // signalled when the server ends the session
	SetLocation func(string)    // receives the route of the visible screen
	LogPath     string
	Prefs       prefs.Prefs
	PrefsPath   string
	Logger      *zap.Logger
	UITick      time.Duration
}

// pendingDelete is a delete waiting for confirmation.
type pendingDelete struct {
	view *resourceView
	id   int64
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx         context.Context
	client      *api.Client
	store       *state.Store
	expired     <-chan struct{}
	changed     chan struct{}
	setLocation func(string)
	logPath     string
	prefsPath   string
	prefs       prefs.Prefs
	logger      *zap.Logger
	uiTick      time.Duration

	keys   keyMap
	theme  Theme
	width  int
	height int
	ready  bool

	loggedIn bool
	role     string
	login    loginForm

	current  tab
	views    map[tab]*resourceView
	tables   map[tab]table.Model
	ids      map[tab][]int64
	snapshot state.Snapshot

	form     *form
	confirm  *pendingDelete
	showHelp bool

	toast    string
	toastErr bool
	toastAt  time.Time

	logs logState
}

// New creates the model. A stored credential skips the login screen.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	setLocation := opts.SetLocation
	if setLocation == nil {
		setLocation = func(string) {}
	}
	uiTick := opts.UITick
	if uiTick <= 0 {
		uiTick = DefaultUIInterval
	}

	m := Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       opts.Store,
		expired:     opts.Expired,
		changed:     make(chan struct{}, 1),
		setLocation: setLocation,
		logPath:     opts.LogPath,
		prefsPath:   opts.PrefsPath,
		prefs:       opts.Prefs,
		logger:      logger,
		uiTick:      uiTick,
		keys:        defaultKeyMap(),
		theme:       GetTheme(opts.Prefs.Theme),
		views:       resourceViews(),
		tables:      make(map[tab]table.Model),
		ids:         make(map[tab][]int64),
		login:       newLoginForm(opts.Prefs.User),
		logs:        newLogState(),
	}
	for t, v := range m.views {
		m.tables[t] = newResourceTable(v, m.theme)
	}

	if cred, ok := m.client.Credentials().Get(); ok {
		m.loggedIn = true
		m.role = cred.Role
		m.setTab(m.startTab())
	} else {
		m.setLocation(LocationLogin)
	}
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
		m.rebuildTables()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		tickCmd(m.uiTick),
		waitChanged(m.changed),
		waitExpired(m.expired),
	}
	if m.loggedIn && m.current == tabLogs {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.rebuildTables()
		return m, nil

	case changedMsg:
		m.snapshot = m.store.Snapshot()
		m.rebuildTables()
		return m, waitChanged(m.changed)

	case sessionExpiredMsg:
		if m.loggedIn {
			m.toLogin("Session expired, please log in again")
		}
		return m, waitExpired(m.expired)

	case opResultMsg:
		return m.handleOpResult(msg)

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case registerResultMsg:
		return m.handleRegisterResult(msg)

	case logsMsg:
		m.handleLogs(msg)
		return m, nil
	}

	if m.form != nil {
		var cmd tea.Cmd
		m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
		return m, cmd
	}
	if !m.loggedIn {
		var cmd tea.Cmd
		m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if !m.loggedIn {
		return m.renderLogin()
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if !m.loggedIn {
		return m.handleLoginKey(msg)
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.form != nil {
		return m.handleFormKey(msg)
	}
	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		for t, tbl := range m.tables {
			tbl.SetStyles(tableStyles(m.theme))
			m.tables[t] = tbl
		}
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		m.client.Logout()
		m.logger.Info("logged out")
		m.toLogin("Signed out")
		return m, nil
	case key.Matches(msg, m.keys.Dashboard), key.Matches(msg, m.keys.Escape):
		return m.switchTab(tabDashboard)
	case key.Matches(msg, m.keys.Categories):
		return m.switchTab(tabCategories)
	case key.Matches(msg, m.keys.Products):
		return m.switchTab(tabProducts)
	case key.Matches(msg, m.keys.Sales):
		return m.switchTab(tabSales)
	case key.Matches(msg, m.keys.Purchases):
		return m.switchTab(tabPurchases)
	case key.Matches(msg, m.keys.Companies):
		return m.switchTab(tabCompanies)
	case key.Matches(msg, m.keys.Logs):
		return m.switchTab(tabLogs)
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(m.current.step(m.visibleTabs(), 1))
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(m.current.step(m.visibleTabs(), -1))
	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()
	}

	if v, ok := m.views[m.current]; ok {
		return m.handleResourceKey(v, msg)
	}
	if m.current == tabLogs {
		return m.handleLogsKey(msg)
	}
	return m, nil
}

func (m Model) handleResourceKey(v *resourceView, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Add) && v.save != nil:
		f := newForm(v, 0, v.fields(m.store, m.snapshot, 0))
		m.form = &f
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Edit) && v.save != nil:
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		f := newForm(v, id, v.fields(m.store, m.snapshot, id))
		m.form = &f
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Delete) && v.remove != nil:
		if id, ok := m.selectedID(); ok {
			m.confirm = &pendingDelete{view: v, id: id}
		}
		return m, nil
	case key.Matches(msg, m.keys.Toggle) && v.toggle != nil:
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		label, fn, ok := v.toggle(m.store, id)
		if !ok {
			return m, nil
		}
		return m, m.opCmd(label, false, fn)
	}

	tbl := m.tables[m.current]
	var cmd tea.Cmd
	tbl, cmd = tbl.Update(msg)
	m.tables[m.current] = tbl
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.form = nil
		return m, nil
	}
	if m.form.pending {
		return m, nil
	}
	f, cmd, submit := m.form.update(msg)
	m.form = &f
	if !submit {
		return m, cmd
	}

	v, id, values, snap := f.view, f.id, f.values(), m.snapshot
	verb := "Added"
	if id != 0 {
		verb = "Saved"
	}
	m.form.pending = true
	label := fmt.Sprintf("%s %s", verb, v.singular)
	return m, m.opCmd(label, true, func(ctx context.Context) error {
		return v.save(ctx, m.store, snap, id, values)
	})
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pending := m.confirm
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.confirm = nil
		label := "Deleted " + describe(pending.view, pending.id)
		return m, m.opCmd(label, false, func(ctx context.Context) error {
			return pending.view.remove(ctx, m.store, pending.id)
		})
	case key.Matches(msg, m.keys.Cancel):
		m.confirm = nil
	}
	return m, nil
}

func (m Model) switchTab(t tab) (tea.Model, tea.Cmd) {
	if !m.tabVisible(t) {
		return m, nil
	}
	m.setTab(t)
	m.savePrefs()
	if t == tabLogs {
		return m, readLogsCmd(m.logPath)
	}
	return m, nil
}

func (m *Model) setTab(t tab) {
	m.current = t
	m.prefs.Tab = t.String()
	m.setLocation(t.location())
	for tt, tbl := range m.tables {
		if tt == t {
			tbl.Focus()
		} else {
			tbl.Blur()
		}
		m.tables[tt] = tbl
	}
}

// hasRole reports whether the signed-in account carries role.
func (m Model) hasRole(role string) bool {
	return session.Credential{Role: m.role}.HasRole(role)
}

// tabVisible hides admin views from everyone else.
func (m Model) tabVisible(t tab) bool {
	return !t.adminOnly() || m.hasRole(state.RoleAdmin)
}

func (m Model) visibleTabs() []tab {
	tabs := make([]tab, 0, len(tabOrder))
	for _, t := range tabOrder {
		if m.tabVisible(t) {
			tabs = append(tabs, t)
		}
	}
	return tabs
}

// startTab is the remembered view, or the dashboard when the account may
// not open it.
func (m Model) startTab() tab {
	if t := parseTab(m.prefs.Tab); m.tabVisible(t) {
		return t
	}
	return tabDashboard
}

func (m Model) refresh() (tea.Model, tea.Cmd) {
	switch m.current {
	case tabLogs:
		return m, readLogsCmd(m.logPath)
	case tabDashboard:
		return m, m.refreshAllCmd()
	}
	v := m.views[m.current]
	return m, m.opCmd("Refreshed "+m.current.String(), false, func(ctx context.Context) error {
		return v.fetch(ctx, m.store)
	})
}

func (m Model) refreshAllCmd() tea.Cmd {
	return m.opCmd("Refreshed", false, m.store.RefreshAll)
}

// toLogin drops every loaded record and returns to the login screen.
func (m *Model) toLogin(message string) {
	m.store.Reset()
	m.loggedIn = false
	m.role = ""
	m.form = nil
	m.confirm = nil
	m.showHelp = false
	m.snapshot = m.store.Snapshot()
	m.rebuildTables()
	m.login = newLoginForm(m.prefs.User)
	m.setLocation(LocationLogin)
	m.flash(message, false)
}

func (m Model) handleOpResult(msg opResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("operation failed", zap.String("op", msg.label), zap.Error(msg.err))
	}
	if msg.fromForm && m.form != nil {
		if msg.err != nil {
			m.form.pending = false
			m.form.err = describeError(msg.err)
			return m, nil
		}
		m.form = nil
	}
	if msg.err != nil {
		if !api.IsSessionInvalidated(msg.err) {
			m.flash(describeError(msg.err), true)
		}
	} else {
		m.flash(msg.label, false)
	}
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
		m.rebuildTables()
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.uiTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.loggedIn && m.current == tabLogs && m.logs.follow {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}
	if m.toast != "" && time.Since(m.toastAt) > 5*time.Second {
		m.toast = ""
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) flash(message string, isErr bool) {
	m.toast = message
	m.toastErr = isErr
	m.toastAt = time.Now()
}

func (m *Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Debug("save prefs", zap.Error(err))
	}
}

func (m *Model) resize() {
	h := max(m.height-chromeHeight-2, 3)
	for t, tbl := range m.tables {
		tbl.SetHeight(h)
		tbl.SetWidth(max(m.width-2, 20))
		m.tables[t] = tbl
	}
	m.logs.viewport.Width = max(m.width-2, 20)
	m.logs.viewport.Height = h
	m.logs.render()
}

func (m *Model) rebuildTables() {
	for t, v := range m.views {
		ids, rows := v.rows(m.snapshot)
		tbl := m.tables[t]
		tbl.SetRows(rows)
		if c := tbl.Cursor(); c >= len(rows) && len(rows) > 0 {
			tbl.SetCursor(len(rows) - 1)
		}
		m.tables[t] = tbl
		m.ids[t] = ids
	}
}

func (m Model) selectedID() (int64, bool) {
	ids := m.ids[m.current]
	tbl, ok := m.tables[m.current]
	if !ok || len(ids) == 0 {
		return 0, false
	}
	c := tbl.Cursor()
	if c < 0 || c >= len(ids) {
		return 0, false
	}
	return ids[c], true
}

// renderMain renders header, tab bar, content and footer.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	content := m.renderContent()
	if m.form != nil {
		content = lipgloss.Place(m.width, max(m.height-chromeHeight, 1), lipgloss.Center, lipgloss.Center,
			m.form.render(m.theme.Styles(), m.width))
	} else if m.confirm != nil {
		content = lipgloss.Place(m.width, max(m.height-chromeHeight, 1), lipgloss.Center, lipgloss.Center,
			m.renderConfirm())
	}
	b.WriteString(lipgloss.NewStyle().Height(max(m.height-chromeHeight, 1)).Render(content))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.current {
	case tabDashboard:
		return m.renderDashboard()
	case tabLogs:
		return m.renderLogs()
	}
	tbl := m.tables[m.current]
	status := m.views[m.current].status(m.snapshot)
	if len(tbl.Rows()) == 0 {
		styles := m.theme.Styles()
		switch {
		case status.Loading:
			return styles.InfoText.Render("  Loading " + m.current.String() + "...")
		case status.Err != nil && !status.Loaded:
			return styles.DangerText.Render("  " + describeError(status.Err))
		case m.views[m.current].save == nil:
			return styles.MutedText.Render("  No " + m.current.String() + " yet.")
		default:
			return styles.MutedText.Render("  No " + m.current.String() + " yet. Press a to add one.")
		}
	}
	return tbl.View()
}

func (m Model) renderConfirm() string {
	styles := m.theme.Styles()
	text := fmt.Sprintf("Delete %s?", describe(m.confirm.view, m.confirm.id))
	return styles.Dialog.Render(styles.WarningText.Bold(true).Render(text) + "\n\n" +
		styles.FaintText.Render("y confirm  n cancel"))
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type changedMsg struct{}

type sessionExpiredMsg struct{}

type opResultMsg struct {
	label    string
	fromForm bool
	err      error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func waitChanged(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func waitExpired(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		<-ch
		return sessionExpiredMsg{}
	}
}

func (m Model) opCmd(label string, fromForm bool, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, OperationTimeout)
		defer cancel()
		return opResultMsg{label: label, fromForm: fromForm, err: fn(ctx)}
	}
}

// notifyChanged wakes the model after a collection transition without
// blocking the goroutine that caused it.
func (m Model) notifyChanged() {
	select {
	case m.changed <- struct{}{}:
	default:
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Store == nil || opts.Client == nil {
		return errors.New("ui requires a client and a store")
	}
	m := New(opts)
	opts.Store.OnChange(m.notifyChanged)

	teaOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		teaOpts = append(teaOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, teaOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
