package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_LastRowWins(t *testing.T) {
	current := NewDirectory()

	next, res := Reconcile(current, []ImportRow{
		{Code: "1", Name: "x"},
		{Code: "1", Name: "y"},
	})

	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 0, res.Skipped)
	require.Equal(t, 1, next.Len())
	assert.Equal(t, "y", next.Records[0].Name)
}

func TestReconcile_Counters(t *testing.T) {
	current := NewDirectory()
	require.NoError(t, current.Add("11111", "Ali"))
	require.NoError(t, current.Add("22222", "Sara"))

	next, res := Reconcile(current, []ImportRow{
		{Code: "11111", Name: "Ali"},       // unchanged -> skipped
		{Code: "22222", Name: "Sara Omar"}, // renamed -> updated
		{Code: "33333", Name: "Nour"},      // new -> added
		{Code: "", Name: "Ghost"},          // empty code -> skipped
		{Code: "44444", Name: "  "},        // empty name -> skipped
	})

	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 3, res.Skipped)
	assert.Equal(t, 3, next.Len())
}

func TestReconcile_ReimportIsAllSkipped(t *testing.T) {
	current := NewDirectory()
	rows := []ImportRow{
		{Code: "1", Name: "y"},
	}

	first, res := Reconcile(current, rows)
	assert.Equal(t, 1, res.Added)

	_, res = Reconcile(first, rows)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 1, res.Skipped)
}

func TestReconcile_FullReplacementSortedByCode(t *testing.T) {
	current := NewDirectory()
	require.NoError(t, current.Add("99999", "Dropped"))

	next, _ := Reconcile(current, []ImportRow{
		{Code: "22222", Name: "B"},
		{Code: "11111", Name: "A"},
	})

	// Records absent from the import are gone; output is sorted by code.
	require.Equal(t, 2, next.Len())
	assert.Equal(t, "11111", next.Records[0].Code)
	assert.Equal(t, "22222", next.Records[1].Code)
	assert.False(t, next.Has("99999"))
}

func TestReconcile_NormalizesCodes(t *testing.T) {
	current := NewDirectory()
	require.NoError(t, current.Add("123456", "Ali"))

	// Arabic-Indic digits merge with the existing ASCII record.
	_, res := Reconcile(current, []ImportRow{
		{Code: "١٢٣٤٥٦", Name: "Ali"},
	})
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Added)
}
