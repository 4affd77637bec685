// Package session holds the per-user conversational state: current menu,
// a context bag for in-progress workflows, and the back-stack that powers
// arbitrary-depth "back" navigation. Sessions live in memory only; login
// bindings are the one piece persisted elsewhere.
package session

import (
	"strconv"
	"sync"
)

// Context keys restored by "back" navigation. Everything else in the bag
// is workflow-transient and deliberately dropped when going back.
const (
	KeySubject     = "sel_subject"
	KeyLecture     = "sel_lecture"
	KeyFile        = "sel_file"
	KeyStudentCode = "sel_student_code"
	KeyAdminID     = "sel_admin_id"

	KeyComplaintsPage = "complaints_page"
	KeyStudentsPage   = "students_page"
	KeyAdminsPage     = "admins_page"
)

// snapshotKeys is the allow-list of context keys captured per stack frame.
var snapshotKeys = []string{
	KeySubject, KeyLecture, KeyFile,
	KeyStudentCode, KeyAdminID,
	KeyComplaintsPage, KeyStudentsPage, KeyAdminsPage,
}

// frame is one back-stack entry: the menu to return to plus the restored
// context subset.
type frame struct {
	menu Menu
	ctx  map[string]string
}

// Session is the conversational state of one user.
type Session struct {
	UserID int64
	Menu   Menu

	// Login binding. Empty Code means not logged in.
	Code        string
	StudentName string

	ctx       map[string]string
	stack     []frame
	restoring bool
}

// newSession creates a fresh session parked on the main menu.
func newSession(userID int64) *Session {
	return &Session{
		UserID: userID,
		Menu:   MenuMain,
		ctx:    map[string]string{},
	}
}

// LoggedIn reports whether a login binding is present.
func (s *Session) LoggedIn() bool {
	return s.Code != ""
}

// ── Context bag ─────────────────────────────────────────────────────────

// Set stores a context value.
func (s *Session) Set(key, value string) {
	s.ctx[key] = value
}

// Get returns a context value.
func (s *Session) Get(key string) string {
	return s.ctx[key]
}

// GetInt returns a context value parsed as int, or def.
func (s *Session) GetInt(key string, def int) int {
	v, err := strconv.Atoi(s.ctx[key])
	if err != nil {
		return def
	}
	return v
}

// GetInt64 returns a context value parsed as int64, or def.
func (s *Session) GetInt64(key string, def int64) int64 {
	v, err := strconv.ParseInt(s.ctx[key], 10, 64)
	if err != nil {
		return def
	}
	return v
}

// SetInt stores an int context value.
func (s *Session) SetInt(key string, value int) {
	s.ctx[key] = strconv.Itoa(value)
}

// SetInt64 stores an int64 context value.
func (s *Session) SetInt64(key string, value int64) {
	s.ctx[key] = strconv.FormatInt(value, 10)
}

// Delete removes a context value.
func (s *Session) Delete(key string) {
	delete(s.ctx, key)
}

// ── Navigation ──────────────────────────────────────────────────────────

// EnterMenu moves to a menu, pushing the previous screen onto the back
// stack. During a back-restore the push is suppressed so re-rendering the
// restored screen does not duplicate frames.
func (s *Session) EnterMenu(m Menu) {
	if m == s.Menu {
		return
	}
	if !s.restoring {
		s.stack = append(s.stack, frame{menu: s.Menu, ctx: s.snapshot()})
	}
	s.Menu = m
}

// GoBack pops the stack, restores the saved context subset and returns
// the menu to render. An empty stack lands on the main menu. The session
// is left in restoring state until EndRestore is called after the render.
func (s *Session) GoBack() Menu {
	if len(s.stack) == 0 {
		s.Menu = MenuMain
		s.clearSnapshotKeys()
		return s.Menu
	}

	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	s.clearSnapshotKeys()
	for k, v := range top.ctx {
		s.ctx[k] = v
	}
	s.Menu = top.menu
	s.restoring = true
	return s.Menu
}

// Restoring reports whether a back-restore is in flight.
func (s *Session) Restoring() bool {
	return s.restoring
}

// EndRestore clears the restore-suppression flag. Called once the
// restored screen has been rendered.
func (s *Session) EndRestore() {
	s.restoring = false
}

// StackDepth returns the back-stack depth.
func (s *Session) StackDepth() int {
	return len(s.stack)
}

// Reset drops the context, the stack and any restore flag, landing on
// the main menu. The login binding survives.
func (s *Session) Reset() {
	s.Menu = MenuMain
	s.ctx = map[string]string{}
	s.stack = nil
	s.restoring = false
}

// snapshot captures the allow-listed context subset.
func (s *Session) snapshot() map[string]string {
	snap := map[string]string{}
	for _, k := range snapshotKeys {
		if v, ok := s.ctx[k]; ok {
			snap[k] = v
		}
	}
	return snap
}

func (s *Session) clearSnapshotKeys() {
	for _, k := range snapshotKeys {
		delete(s.ctx, k)
	}
}

// ── Manager ─────────────────────────────────────────────────────────────

// Manager owns every live session and serializes event handling per
// user: two updates from the same account never interleave, updates from
// different accounts run concurrently.
type Manager struct {
	mu      sync.Mutex
	entries map[int64]*managed
}

type managed struct {
	lock sync.Mutex
	sess *Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{entries: map[int64]*managed{}}
}

func (m *Manager) entry(userID int64) *managed {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[userID]
	if !ok {
		e = &managed{sess: newSession(userID)}
		m.entries[userID] = e
	}
	return e
}

// Do runs fn with exclusive access to the user's session.
func (m *Manager) Do(userID int64, fn func(s *Session)) {
	e := m.entry(userID)
	e.lock.Lock()
	defer e.lock.Unlock()
	fn(e.sess)
}
