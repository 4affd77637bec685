package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_EnterMenuPushesStack(t *testing.T) {
	s := newSession(1)

	s.EnterMenu(MenuViewSubjects)
	s.Set(KeySubject, "Math")
	s.EnterMenu(MenuViewLectures)

	assert.Equal(t, MenuViewLectures, s.Menu)
	assert.Equal(t, 2, s.StackDepth())
}

func TestSession_EnterSameMenuDoesNotPush(t *testing.T) {
	s := newSession(1)

	s.EnterMenu(MenuViewSubjects)
	s.EnterMenu(MenuViewSubjects)

	assert.Equal(t, 1, s.StackDepth())
}

func TestSession_GoBackRestoresContextSubset(t *testing.T) {
	s := newSession(1)

	s.EnterMenu(MenuViewSubjects)
	s.Set(KeySubject, "Math")
	s.EnterMenu(MenuViewLectures)
	s.Set(KeyLecture, "L1")
	s.Set("pending_name", "transient")
	s.EnterMenu(MenuViewFiles)

	// Back to lectures: the subject chosen for that screen comes back,
	// the transient value does not.
	m := s.GoBack()
	assert.Equal(t, MenuViewLectures, m)
	assert.Equal(t, "Math", s.Get(KeySubject))
	assert.Equal(t, "", s.Get("pending_name"))
	assert.True(t, s.Restoring())
	s.EndRestore()

	m = s.GoBack()
	assert.Equal(t, MenuViewSubjects, m)
	assert.Equal(t, "", s.Get(KeySubject))
	s.EndRestore()

	// Empty stack lands on main.
	m = s.GoBack()
	assert.Equal(t, MenuMain, m)
}

func TestSession_RestoringSuppressesPush(t *testing.T) {
	s := newSession(1)

	s.EnterMenu(MenuViewSubjects)
	s.EnterMenu(MenuViewLectures)

	s.GoBack()
	require.True(t, s.Restoring())

	// Re-rendering the restored screen may re-enter a menu; no frame is
	// pushed while the restore is in flight.
	depth := s.StackDepth()
	s.EnterMenu(MenuViewSubjects)
	assert.Equal(t, depth, s.StackDepth())
	s.EndRestore()

	// After the restore finished, navigation pushes again.
	s.EnterMenu(MenuViewLectures)
	assert.Equal(t, depth+1, s.StackDepth())
}

func TestSession_Reset(t *testing.T) {
	s := newSession(1)
	s.Code = "12345"
	s.StudentName = "Ali"

	s.EnterMenu(MenuViewSubjects)
	s.Set(KeySubject, "Math")
	s.Set("pending", "x")

	s.Reset()

	assert.Equal(t, MenuMain, s.Menu)
	assert.Equal(t, 0, s.StackDepth())
	assert.Equal(t, "", s.Get(KeySubject))
	assert.Equal(t, "", s.Get("pending"))

	// Login binding survives a reset.
	assert.True(t, s.LoggedIn())
	assert.Equal(t, "Ali", s.StudentName)
}

func TestSession_IntHelpers(t *testing.T) {
	s := newSession(1)

	assert.Equal(t, 0, s.GetInt(KeyStudentsPage, 0))
	s.SetInt(KeyStudentsPage, 3)
	assert.Equal(t, 3, s.GetInt(KeyStudentsPage, 0))

	s.SetInt64(KeyAdminID, 123456789)
	assert.Equal(t, int64(123456789), s.GetInt64(KeyAdminID, 0))
	assert.Equal(t, int64(-1), s.GetInt64("missing", -1))
}

func TestManager_SerializesPerUser(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Do(7, func(s *Session) {
				counter++
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)

	// Same user id maps to the same session.
	m.Do(7, func(s *Session) {
		s.Code = "12345"
	})
	m.Do(7, func(s *Session) {
		assert.True(t, s.LoggedIn())
	})
}
