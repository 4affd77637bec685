// Package stats tracks download counters and user activity. Per-file
// counters are kept as an insertion-ordered slice so repeated summaries
// rank equal counts in a stable order.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/campus-hub/campus-content-bot/pkg/timeutil"
)

// ActiveWindowDays is the trailing window used for the active-user count.
const ActiveWindowDays = 7

// TopFilesLimit caps the ranked file list in the summary.
const TopFilesLimit = 5

// FileCounter counts downloads of one catalog file. Key is the
// "subject|lecture|file" path.
type FileCounter struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Stats is the persisted counter document.
type Stats struct {
	DownloadsTotal int                  `json:"downloads_total"`
	FileDownloads  []FileCounter        `json:"file_downloads"`
	UserActivity   map[string]time.Time `json:"user_activity"`
}

// New returns an empty stats document.
func New() *Stats {
	return &Stats{
		FileDownloads: []FileCounter{},
		UserActivity:  map[string]time.Time{},
	}
}

// FileKey builds the counter key for a catalog path.
func FileKey(subject, lecture, file string) string {
	return subject + "|" + lecture + "|" + file
}

// RecordDownload bumps the total and the per-file counter. A new file is
// appended, preserving first-download order.
func (s *Stats) RecordDownload(subject, lecture, file string) {
	s.DownloadsTotal++
	key := FileKey(subject, lecture, file)
	for i := range s.FileDownloads {
		if s.FileDownloads[i].Key == key {
			s.FileDownloads[i].Count++
			return
		}
	}
	s.FileDownloads = append(s.FileDownloads, FileCounter{Key: key, Count: 1})
}

// Touch records user activity at the given time.
func (s *Stats) Touch(userID int64, at time.Time) {
	if s.UserActivity == nil {
		s.UserActivity = map[string]time.Time{}
	}
	s.UserActivity[fmt.Sprintf("%d", userID)] = at
}

// ActiveWithin counts users whose last activity falls inside the trailing
// window of the given number of days.
func (s *Stats) ActiveWithin(days int) int {
	n := 0
	for _, ts := range s.UserActivity {
		if timeutil.WithinDays(ts, days) {
			n++
		}
	}
	return n
}

// TopFiles returns up to limit counters ranked by count descending. Ties
// keep insertion order.
func (s *Stats) TopFiles(limit int) []FileCounter {
	ranked := make([]FileCounter, len(s.FileDownloads))
	copy(ranked, s.FileDownloads)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Summary is the rendered stats report.
type Summary struct {
	TotalUsers         int
	ActiveLast7Days    int
	DownloadsTotal     int
	FilesWithDownloads int
	TopFiles           []FileCounter
}

// Summarize builds the report. totalUsers comes from the all-time seen
// log, which this document does not own.
func (s *Stats) Summarize(totalUsers int) Summary {
	return Summary{
		TotalUsers:         totalUsers,
		ActiveLast7Days:    s.ActiveWithin(ActiveWindowDays),
		DownloadsTotal:     s.DownloadsTotal,
		FilesWithDownloads: len(s.FileDownloads),
		TopFiles:           s.TopFiles(TopFilesLimit),
	}
}

// Render formats the summary as the console message.
func (sum Summary) Render() string {
	var b strings.Builder
	b.WriteString("📊 إحصائيات البوت\n\n")
	fmt.Fprintf(&b, "👥 عدد المستخدمين الكلي: %d\n", sum.TotalUsers)
	fmt.Fprintf(&b, "🟢 النشطون خلال 7 أيام: %d\n", sum.ActiveLast7Days)
	fmt.Fprintf(&b, "📥 إجمالي التحميلات: %d\n", sum.DownloadsTotal)
	fmt.Fprintf(&b, "📁 ملفات تم تحميلها: %d\n", sum.FilesWithDownloads)
	if len(sum.TopFiles) > 0 {
		b.WriteString("\n🏆 الأكثر تحميلًا:\n")
		for i, fc := range sum.TopFiles {
			fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, strings.ReplaceAll(fc.Key, "|", " / "), fc.Count)
		}
	}
	return b.String()
}
