package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ascii digits pass through", "12345", "12345"},
		{"arabic-indic digits folded", "٠١٢٣", "0123"},
		{"extended arabic-indic digits folded", "۱۲۳", "123"},
		{"mixed scripts and noise", "٠١٢٣-12a3", "0123123"},
		{"whitespace and punctuation dropped", " 12 34-56 ", "123456"},
		{"letters only", "abc", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCode(tt.input))
		})
	}
}

func TestNormalizeCode_Idempotent(t *testing.T) {
	once := NormalizeCode("٠١٢٣-12a3")
	assert.Equal(t, once, NormalizeCode(once))
}

func TestDirectory_Add(t *testing.T) {
	d := NewDirectory()

	require.NoError(t, d.Add("12345", "Ali"))
	assert.Equal(t, 1, d.Len())

	// Code is normalized on the way in.
	require.NoError(t, d.Add("٦٧٨٩٠", "Sara"))
	rec, err := d.Find("67890")
	require.NoError(t, err)
	assert.Equal(t, "Sara", rec.Name)

	// Duplicate code rejected, even through a different script.
	err = d.Add("١٢٣٤٥", "Other")
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	// Empty code and empty name rejected.
	assert.ErrorIs(t, d.Add("abc", "Name"), shared.ErrEmptyValue)
	assert.ErrorIs(t, d.Add("55555", "  "), shared.ErrEmptyValue)
}

func TestDirectory_RenameRecodeDelete(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Add("11111", "Ali"))
	require.NoError(t, d.Add("22222", "Sara"))

	require.NoError(t, d.Rename("11111", "Ali Hassan"))
	rec, err := d.Find("11111")
	require.NoError(t, err)
	assert.Equal(t, "Ali Hassan", rec.Name)

	// Recode keeps position and rejects collisions.
	assert.ErrorIs(t, d.Recode("11111", "22222"), shared.ErrAlreadyExists)
	require.NoError(t, d.Recode("11111", "33333"))
	assert.False(t, d.Has("11111"))
	assert.True(t, d.Has("33333"))
	assert.Equal(t, "33333", d.Records[0].Code)

	// Recode to self is allowed.
	require.NoError(t, d.Recode("22222", "22222"))

	require.NoError(t, d.Delete("33333"))
	assert.Equal(t, 1, d.Len())
	assert.ErrorIs(t, d.Delete("33333"), shared.ErrNotFound)
}

func TestDirectory_Find_NotFound(t *testing.T) {
	d := NewDirectory()
	_, err := d.Find("99999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
