package complaint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_AppendAssignsSequentialIDs(t *testing.T) {
	l := NewLog()
	now := time.Now()

	first := l.Append(1, "Ali", "12345", "broken link", now)
	second := l.Append(2, "Sara", "", "suggestion", now)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, 2, l.Len())
}

func TestLog_NextIDSurvivesGaps(t *testing.T) {
	l := &Log{Complaints: []Complaint{{ID: 7}}}

	c := l.Append(1, "Ali", "", "text", time.Now())
	assert.Equal(t, 8, c.ID)
}

func TestLog_Find(t *testing.T) {
	l := NewLog()
	l.Append(1, "Ali", "", "first", time.Now())

	c, ok := l.Find(1)
	require.True(t, ok)
	assert.Equal(t, "first", c.Text)

	_, ok = l.Find(99)
	assert.False(t, ok)
}
