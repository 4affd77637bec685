package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
)

func buildCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := New()
	require.NoError(t, c.AddSubject("Math"))
	require.NoError(t, c.AddSubject("Physics"))
	require.NoError(t, c.AddLecture("Math", "Lecture 1"))
	require.NoError(t, c.AddLecture("Math", "Lecture 2"))
	require.NoError(t, c.AddFile("Math", "Lecture 1", "Slides", "file-id-1"))
	return c
}

func TestCatalog_InsertionOrderPreserved(t *testing.T) {
	c := buildCatalog(t)

	assert.Equal(t, []string{"Math", "Physics"}, c.SubjectNames())

	lectures, err := c.LectureNames("Math")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lecture 1", "Lecture 2"}, lectures)
}

func TestCatalog_SiblingUniqueness(t *testing.T) {
	c := buildCatalog(t)

	assert.ErrorIs(t, c.AddSubject("Math"), shared.ErrAlreadyExists)
	assert.ErrorIs(t, c.AddLecture("Math", "Lecture 1"), shared.ErrAlreadyExists)
	assert.ErrorIs(t, c.AddFile("Math", "Lecture 1", "Slides", "file-id-2"), shared.ErrAlreadyExists)

	// Same name is fine under a different parent.
	require.NoError(t, c.AddLecture("Physics", "Lecture 1"))
	require.NoError(t, c.AddFile("Math", "Lecture 2", "Slides", "file-id-3"))
}

func TestCatalog_RenameCollision(t *testing.T) {
	c := buildCatalog(t)

	assert.ErrorIs(t, c.RenameSubject("Math", "Physics"), shared.ErrAlreadyExists)
	assert.ErrorIs(t, c.RenameLecture("Math", "Lecture 1", "Lecture 2"), shared.ErrAlreadyExists)

	// Renaming to the current name is a no-op, not a collision.
	require.NoError(t, c.RenameSubject("Math", "Math"))

	require.NoError(t, c.RenameSubject("Math", "Algebra"))
	_, err := c.Subject("Algebra")
	require.NoError(t, err)
	_, err = c.Subject("Math")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// Children survive the rename.
	lectures, err := c.LectureNames("Algebra")
	require.NoError(t, err)
	assert.Len(t, lectures, 2)
}

func TestCatalog_RenameFileKeepsReference(t *testing.T) {
	c := buildCatalog(t)

	require.NoError(t, c.RenameFile("Math", "Lecture 1", "Slides", "Deck"))
	f, err := c.File("Math", "Lecture 1", "Deck")
	require.NoError(t, err)
	assert.Equal(t, "file-id-1", f.FileID)
}

func TestCatalog_DeleteCascades(t *testing.T) {
	c := buildCatalog(t)

	require.NoError(t, c.DeleteSubject("Math"))
	_, err := c.Lecture("Math", "Lecture 1")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, []string{"Physics"}, c.SubjectNames())

	assert.ErrorIs(t, c.DeleteSubject("Math"), shared.ErrNotFound)
}

func TestCatalog_DeleteLeafLevels(t *testing.T) {
	c := buildCatalog(t)

	require.NoError(t, c.DeleteFile("Math", "Lecture 1", "Slides"))
	files, err := c.FileNames("Math", "Lecture 1")
	require.NoError(t, err)
	assert.Empty(t, files)

	require.NoError(t, c.DeleteLecture("Math", "Lecture 1"))
	lectures, err := c.LectureNames("Math")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lecture 2"}, lectures)
}

func TestCatalog_EmptyNamesRejected(t *testing.T) {
	c := New()

	assert.ErrorIs(t, c.AddSubject("  "), shared.ErrEmptyValue)
	require.NoError(t, c.AddSubject("Math"))
	assert.ErrorIs(t, c.AddLecture("Math", ""), shared.ErrEmptyValue)
	require.NoError(t, c.AddLecture("Math", "L1"))
	assert.ErrorIs(t, c.AddFile("Math", "L1", "F", ""), shared.ErrEmptyValue)
}
