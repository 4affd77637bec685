package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDownload(t *testing.T) {
	s := New()

	s.RecordDownload("Math", "L1", "Slides")
	s.RecordDownload("Math", "L1", "Slides")
	s.RecordDownload("Physics", "L1", "Notes")

	assert.Equal(t, 3, s.DownloadsTotal)
	require.Len(t, s.FileDownloads, 2)
	assert.Equal(t, "Math|L1|Slides", s.FileDownloads[0].Key)
	assert.Equal(t, 2, s.FileDownloads[0].Count)
	assert.Equal(t, 1, s.FileDownloads[1].Count)
}

func TestTopFiles_StableOnTies(t *testing.T) {
	s := New()
	s.RecordDownload("A", "L", "first")
	s.RecordDownload("B", "L", "second")
	s.RecordDownload("C", "L", "third")

	// All tied at 1: ranking keeps first-download order.
	top := s.TopFiles(2)
	require.Len(t, top, 2)
	assert.Equal(t, "A|L|first", top[0].Key)
	assert.Equal(t, "B|L|second", top[1].Key)

	// A higher count moves ahead of earlier entries.
	s.RecordDownload("C", "L", "third")
	top = s.TopFiles(3)
	assert.Equal(t, "C|L|third", top[0].Key)
	assert.Equal(t, "A|L|first", top[1].Key)
}

func TestActiveWithin(t *testing.T) {
	s := New()
	now := time.Now()

	s.Touch(1, now)
	s.Touch(2, now.Add(-3*24*time.Hour))
	s.Touch(3, now.Add(-10*24*time.Hour))

	assert.Equal(t, 2, s.ActiveWithin(7))
}

func TestSummarize(t *testing.T) {
	s := New()
	s.RecordDownload("Math", "L1", "Slides")
	s.Touch(1, time.Now())

	sum := s.Summarize(50)
	assert.Equal(t, 50, sum.TotalUsers)
	assert.Equal(t, 1, sum.ActiveLast7Days)
	assert.Equal(t, 1, sum.DownloadsTotal)
	assert.Equal(t, 1, sum.FilesWithDownloads)
	require.Len(t, sum.TopFiles, 1)

	rendered := sum.Render()
	assert.Contains(t, rendered, "Math / L1 / Slides")
	assert.Contains(t, rendered, "50")
}

func TestSummarize_TopFiveCap(t *testing.T) {
	s := New()
	subjects := []string{"A", "B", "C", "D", "E", "F", "G"}
	for _, sub := range subjects {
		s.RecordDownload(sub, "L", "f")
	}

	sum := s.Summarize(0)
	assert.Len(t, sum.TopFiles, TopFilesLimit)
}
