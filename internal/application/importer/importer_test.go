package importer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/docstore"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/file"
)

func TestParse(t *testing.T) {
	data := []byte("code,name\n12345,Ali\n٦٧٨٩٠,Sara\n")

	rows, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "12345", rows[0].Code)
	assert.Equal(t, "Ali", rows[0].Name)
	assert.Equal(t, "٦٧٨٩٠", rows[1].Code)
}

func TestParse_StripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Code,Name\n12345,Ali\n")...)

	rows, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "12345", rows[0].Code)
}

func TestParse_ExtraColumnsAndShortRows(t *testing.T) {
	data := []byte("id,code,name\n1,12345,Ali\n2,22222\n")

	rows, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "22222", rows[1].Code)
	assert.Equal(t, "", rows[1].Name) // missing name skipped later by reconciliation
}

func TestParse_MissingHeader(t *testing.T) {
	_, err := Parse([]byte("id,student\n1,Ali\n"))
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)
}

func TestParse_EmptyFile(t *testing.T) {
	_, err := Parse([]byte(""))
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestImporter_Run(t *testing.T) {
	store := file.NewEnrollmentStore(
		filepath.Join(t.TempDir(), "codes.json"),
		docstore.DefaultLockOptions(),
	)
	ctx := context.Background()
	imp := New(store)

	res, err := imp.Run(ctx, []byte("code,name\n11111,Ali\n22222,Sara\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)

	// Re-running the same file skips everything.
	res, err = imp.Run(ctx, []byte("code,name\n11111,Ali\n22222,Sara\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 2, res.Skipped)

	d, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
}
