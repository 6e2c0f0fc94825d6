// Package ui provides the single-page terminal interface: an auth form
// while signed out, the task view while signed in.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"taskpad/internal/service"
	"taskpad/internal/session"
	"taskpad/internal/tasklist"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	doneStyle   = lipgloss.NewStyle().Faint(true)
	selectStyle = lipgloss.NewStyle().Reverse(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// Run starts the TUI. It blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, gate *session.Gate, svc service.Service, logger *log.Logger) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("taskpad requires a TTY")
	}

	model := newModel(ctx, gate, svc, logger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	model.teardown()
	return err
}

type view int

const (
	viewLoading view = iota
	viewAuth
	viewTasks
)

// authEvent carries a backend auth transition into the program loop.
type authEvent struct {
	identity service.Identity
	ok       bool
}

type (
	sessionResolvedMsg struct {
		identity service.Identity
		ok       bool
		err      error
	}
	authChangeMsg authEvent
	authResultMsg struct {
		mode session.Mode
		err  error
	}
	loadedMsg struct{ err error }
	addedMsg  struct {
		added bool
		err   error
	}
	toggledMsg struct{ err error }
	deletedMsg struct{ err error }
)

type model struct {
	ctx    context.Context
	gate   *session.Gate
	svc    service.Service
	logger *log.Logger

	view   view
	authCh chan authEvent
	sub    *session.Subscription

	// auth form
	mode     session.Mode
	email    lineInput
	password lineInput
	focus    int // 0 email, 1 password
	authBusy bool

	// task view
	identity service.Identity
	sync     *tasklist.Synchronizer
	input    lineInput
	cursor   int

	notice string // dismissible error notice
	info   string // non-error status line
}

func newModel(ctx context.Context, gate *session.Gate, svc service.Service, logger *log.Logger) *model {
	m := &model{
		ctx:      ctx,
		gate:     gate,
		svc:      svc,
		logger:   logger,
		view:     viewLoading,
		authCh:   make(chan authEvent, 8),
		password: lineInput{masked: true},
	}
	m.sub = gate.Subscribe(func(id service.Identity, ok bool) {
		select {
		case m.authCh <- authEvent{identity: id, ok: ok}:
		default:
			// A full channel means the program loop is gone; drop.
		}
	})
	return m
}

// teardown releases the gate subscription. Safe to call more than once.
func (m *model) teardown() {
	m.sub.Unsubscribe()
	m.gate.Close()
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.resolveSession(), m.waitForAuth())
}

func (m *model) resolveSession() tea.Cmd {
	return func() tea.Msg {
		id, ok, err := m.gate.ResolveInitial(m.ctx)
		return sessionResolvedMsg{identity: id, ok: ok, err: err}
	}
}

// waitForAuth blocks on the auth-change channel and re-arms itself after
// each delivery.
func (m *model) waitForAuth() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.authCh
		if !ok {
			return nil
		}
		return authChangeMsg(ev)
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case sessionResolvedMsg:
		if msg.err != nil {
			m.logger.Error("initial session resolution failed", "err", msg.err)
			m.notice = service.UserMessage(msg.err)
		}
		if msg.ok {
			return m.enterTasks(msg.identity)
		}
		m.view = viewAuth
		return m, nil

	case authChangeMsg:
		m.logger.Debug("auth state change", "signed_in", msg.ok)
		if msg.ok {
			next, cmd := m.enterTasks(msg.identity)
			return next, tea.Batch(cmd, m.waitForAuth())
		}
		m.leaveTasks()
		return m, m.waitForAuth()

	case authResultMsg:
		m.authBusy = false
		if msg.err != nil {
			m.notice = service.UserMessage(msg.err)
			return m, nil
		}
		if msg.mode == session.SignUp {
			// Verification pending; no session yet.
			m.info = "account created, check your email to confirm"
		}
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.logger.Error("load failed", "err", msg.err)
			m.notice = service.UserMessage(msg.err)
		}
		return m, nil

	case addedMsg:
		if msg.err != nil {
			m.logger.Error("add failed", "err", msg.err)
			// Keep the uncommitted input text for retry.
			m.notice = service.UserMessage(msg.err)
			return m, nil
		}
		if msg.added {
			m.input.Clear()
		}
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			m.logger.Error("toggle failed", "err", msg.err)
			m.notice = service.UserMessage(msg.err)
		}
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.logger.Error("delete failed", "err", msg.err)
			m.notice = service.UserMessage(msg.err)
		}
		m.clampCursor()
		return m, nil
	}

	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.view {
	case viewAuth:
		return m.handleAuthKey(msg)
	case viewTasks:
		return m.handleTaskKey(msg)
	}
	return m, nil
}

func (m *model) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.notice = ""
		m.info = ""
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyDown, tea.KeyUp:
		// Two fields, so forward and backward are the same move.
		m.focus = (m.focus + 1) % 2
		return m, nil
	case tea.KeyCtrlR:
		if m.mode == session.SignIn {
			m.mode = session.SignUp
		} else {
			m.mode = session.SignIn
		}
		m.info = ""
		return m, nil
	case tea.KeyEnter:
		return m, m.submitCredentials()
	}

	if m.focus == 0 {
		m.email.handleKey(msg)
	} else {
		m.password.handleKey(msg)
	}
	return m, nil
}

func (m *model) submitCredentials() tea.Cmd {
	if m.authBusy {
		return nil
	}
	email := strings.TrimSpace(m.email.String())
	password := m.password.String()
	if email == "" || password == "" {
		m.notice = "email and password are required"
		return nil
	}

	m.authBusy = true
	m.notice = ""
	m.info = ""
	mode := m.mode
	return func() tea.Msg {
		err := m.gate.SubmitCredentials(m.ctx, email, password, mode)
		return authResultMsg{mode: mode, err: err}
	}
}

func (m *model) handleTaskKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.notice != "" || m.info != "" {
			m.notice = ""
			m.info = ""
			return m, nil
		}
		m.input.Clear()
		return m, nil
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.cursor < m.sync.TotalCount()-1 {
			m.cursor++
		}
		return m, nil
	case tea.KeyEnter:
		return m, m.addTask()
	case tea.KeyCtrlT:
		return m, m.toggleSelected()
	case tea.KeyCtrlD:
		return m, m.deleteSelected()
	case tea.KeyCtrlL:
		return m, m.loadTasks()
	case tea.KeyCtrlS:
		return m, m.signOut()
	}

	m.input.handleKey(msg)
	return m, nil
}

func (m *model) enterTasks(id service.Identity) (tea.Model, tea.Cmd) {
	if m.view == viewTasks && m.identity.UserID == id.UserID {
		// Token refresh for the same user; nothing to rebuild.
		m.identity = id
		return m, nil
	}
	m.identity = id
	m.sync = tasklist.New(m.svc, id)
	m.view = viewTasks
	m.cursor = 0
	m.notice = ""
	m.info = ""
	m.password.Clear()
	m.authBusy = false
	return m, m.loadTasks()
}

func (m *model) leaveTasks() {
	m.sync = nil
	m.identity = service.Identity{}
	m.view = viewAuth
	m.input.Clear()
	m.notice = ""
	m.info = ""
}

func (m *model) loadTasks() tea.Cmd {
	sync := m.sync
	return func() tea.Msg {
		return loadedMsg{err: sync.Load(m.ctx)}
	}
}

func (m *model) addTask() tea.Cmd {
	sync := m.sync
	text := m.input.String()
	return func() tea.Msg {
		_, added, err := sync.Add(m.ctx, text)
		return addedMsg{added: added, err: err}
	}
}

func (m *model) toggleSelected() tea.Cmd {
	task, ok := m.selectedTask()
	if !ok {
		return nil
	}
	sync := m.sync
	return func() tea.Msg {
		return toggledMsg{err: sync.Toggle(m.ctx, task.ID)}
	}
}

func (m *model) deleteSelected() tea.Cmd {
	task, ok := m.selectedTask()
	if !ok {
		return nil
	}
	sync := m.sync
	return func() tea.Msg {
		return deletedMsg{err: sync.Delete(m.ctx, task.ID)}
	}
}

func (m *model) signOut() tea.Cmd {
	return func() tea.Msg {
		// The transition arrives through the auth-change listener.
		if err := m.gate.SignOut(m.ctx); err != nil {
			m.logger.Error("sign out failed", "err", err)
		}
		return nil
	}
}

func (m *model) selectedTask() (service.Task, bool) {
	tasks := m.sync.Tasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return service.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *model) clampCursor() {
	if m.sync == nil {
		m.cursor = 0
		return
	}
	if n := m.sync.TotalCount(); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	} else if n == 0 {
		m.cursor = 0
	}
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("taskpad") + "\n\n")

	switch m.view {
	case viewLoading:
		b.WriteString("Loading...\n")
	case viewAuth:
		m.writeAuth(&b)
	case viewTasks:
		m.writeTasks(&b)
	}

	if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Render("error: "+m.notice) + helpStyle.Render("  (esc to dismiss)") + "\n")
	}
	if m.info != "" {
		b.WriteString("\n" + infoStyle.Render(m.info) + "\n")
	}
	return b.String()
}

func (m *model) writeAuth(b *strings.Builder) {
	switch m.mode {
	case session.SignUp:
		b.WriteString("Create account\n\n")
	default:
		b.WriteString("Sign in\n\n")
	}

	b.WriteString(m.field("email   ", m.email.Display(), m.focus == 0))
	b.WriteString(m.field("password", m.password.Display(), m.focus == 1))

	if m.authBusy {
		b.WriteString("\nSubmitting...\n")
	}
	b.WriteString("\n" + helpStyle.Render("enter submit | tab next field | ctrl+r switch sign-in/sign-up | ctrl+c quit") + "\n")
}

func (m *model) field(label, value string, focused bool) string {
	marker := "  "
	if focused {
		marker = "> "
	}
	return fmt.Sprintf("%s%s: %s\n", marker, label, value)
}

func (m *model) writeTasks(b *strings.Builder) {
	fmt.Fprintf(b, "%s\n\n", m.identity.Email)
	fmt.Fprintf(b, "new task: %s\n\n", m.input.Display())

	tasks := m.sync.Tasks()
	if len(tasks) == 0 {
		b.WriteString("  no tasks found\n")
	}
	for i, task := range tasks {
		line := FormatTaskLine(task)
		if task.Done {
			line = doneStyle.Render(line)
		}
		if i == m.cursor {
			line = selectStyle.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}

	b.WriteString("\n" + FormatStats(m.sync.CompletedCount(), m.sync.TotalCount(), m.sync.CompletionPercentage()) + "\n")
	b.WriteString("\n" + helpStyle.Render("enter add | ctrl+t toggle | ctrl+d delete | ctrl+l reload | ctrl+s sign out | ctrl+c quit") + "\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, _ := f.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}
