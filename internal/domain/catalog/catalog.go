// Package catalog models the subject → lecture → file content tree. The
// tree is an explicit owned structure with ordered slices at every level so
// listings render in the order admins created entries, and names are unique
// among siblings.
package catalog

import (
	"strings"

	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
)

// FileEntry is a leaf of the tree: a display name bound to a Telegram
// file reference.
type FileEntry struct {
	Name   string `json:"name"`
	FileID string `json:"file_id"`
}

// Lecture groups files under a subject.
type Lecture struct {
	Name  string       `json:"name"`
	Files []*FileEntry `json:"files"`
}

// Subject is a top-level branch of the catalog.
type Subject struct {
	Name     string     `json:"name"`
	Lectures []*Lecture `json:"lectures"`
}

// Catalog is the root of the content tree.
type Catalog struct {
	Subjects []*Subject `json:"subjects"`
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{Subjects: []*Subject{}}
}

// ── Lookup ──────────────────────────────────────────────────────────────

// Subject returns the subject with the given name.
func (c *Catalog) Subject(name string) (*Subject, error) {
	for _, s := range c.Subjects {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, shared.ErrSubjectNotFound
}

// Lecture returns the lecture under a subject.
func (c *Catalog) Lecture(subject, lecture string) (*Lecture, error) {
	s, err := c.Subject(subject)
	if err != nil {
		return nil, err
	}
	for _, l := range s.Lectures {
		if l.Name == lecture {
			return l, nil
		}
	}
	return nil, shared.ErrLectureNotFound
}

// File returns the file entry under a subject and lecture.
func (c *Catalog) File(subject, lecture, file string) (*FileEntry, error) {
	l, err := c.Lecture(subject, lecture)
	if err != nil {
		return nil, err
	}
	for _, f := range l.Files {
		if f.Name == file {
			return f, nil
		}
	}
	return nil, shared.ErrFileNotFound
}

// SubjectNames returns subject names in insertion order.
func (c *Catalog) SubjectNames() []string {
	names := make([]string, len(c.Subjects))
	for i, s := range c.Subjects {
		names[i] = s.Name
	}
	return names
}

// LectureNames returns lecture names under a subject in insertion order.
func (c *Catalog) LectureNames(subject string) ([]string, error) {
	s, err := c.Subject(subject)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(s.Lectures))
	for i, l := range s.Lectures {
		names[i] = l.Name
	}
	return names, nil
}

// FileNames returns file names under a lecture in insertion order.
func (c *Catalog) FileNames(subject, lecture string) ([]string, error) {
	l, err := c.Lecture(subject, lecture)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(l.Files))
	for i, f := range l.Files {
		names[i] = f.Name
	}
	return names, nil
}

// ── Mutation ────────────────────────────────────────────────────────────

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", shared.ErrNameEmpty
	}
	return name, nil
}

// AddSubject appends a new top-level subject.
func (c *Catalog) AddSubject(name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	if _, err := c.Subject(name); err == nil {
		return shared.ErrNameTaken
	}
	c.Subjects = append(c.Subjects, &Subject{Name: name, Lectures: []*Lecture{}})
	return nil
}

// AddLecture appends a lecture under an existing subject.
func (c *Catalog) AddLecture(subject, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	s, err := c.Subject(subject)
	if err != nil {
		return err
	}
	for _, l := range s.Lectures {
		if l.Name == name {
			return shared.ErrNameTaken
		}
	}
	s.Lectures = append(s.Lectures, &Lecture{Name: name, Files: []*FileEntry{}})
	return nil
}

// AddFile appends a file entry under an existing lecture.
func (c *Catalog) AddFile(subject, lecture, name, fileID string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	if fileID == "" {
		return shared.NewDomainError("catalog", "AddFile", shared.ErrEmptyValue, "file reference is empty")
	}
	l, err := c.Lecture(subject, lecture)
	if err != nil {
		return err
	}
	for _, f := range l.Files {
		if f.Name == name {
			return shared.ErrNameTaken
		}
	}
	l.Files = append(l.Files, &FileEntry{Name: name, FileID: fileID})
	return nil
}

// RenameSubject renames a subject, keeping its position.
func (c *Catalog) RenameSubject(oldName, newName string) error {
	newName, err := cleanName(newName)
	if err != nil {
		return err
	}
	s, err := c.Subject(oldName)
	if err != nil {
		return err
	}
	if newName != oldName {
		if _, err := c.Subject(newName); err == nil {
			return shared.ErrNameTaken
		}
	}
	s.Name = newName
	return nil
}

// RenameLecture renames a lecture within its subject.
func (c *Catalog) RenameLecture(subject, oldName, newName string) error {
	newName, err := cleanName(newName)
	if err != nil {
		return err
	}
	l, err := c.Lecture(subject, oldName)
	if err != nil {
		return err
	}
	if newName != oldName {
		if _, err := c.Lecture(subject, newName); err == nil {
			return shared.ErrNameTaken
		}
	}
	l.Name = newName
	return nil
}

// RenameFile renames a file entry within its lecture. The file reference
// is untouched.
func (c *Catalog) RenameFile(subject, lecture, oldName, newName string) error {
	newName, err := cleanName(newName)
	if err != nil {
		return err
	}
	f, err := c.File(subject, lecture, oldName)
	if err != nil {
		return err
	}
	if newName != oldName {
		if _, err := c.File(subject, lecture, newName); err == nil {
			return shared.ErrNameTaken
		}
	}
	f.Name = newName
	return nil
}

// DeleteSubject removes a subject and everything under it.
func (c *Catalog) DeleteSubject(name string) error {
	for i, s := range c.Subjects {
		if s.Name == name {
			c.Subjects = append(c.Subjects[:i], c.Subjects[i+1:]...)
			return nil
		}
	}
	return shared.ErrSubjectNotFound
}

// DeleteLecture removes a lecture and its files.
func (c *Catalog) DeleteLecture(subject, name string) error {
	s, err := c.Subject(subject)
	if err != nil {
		return err
	}
	for i, l := range s.Lectures {
		if l.Name == name {
			s.Lectures = append(s.Lectures[:i], s.Lectures[i+1:]...)
			return nil
		}
	}
	return shared.ErrLectureNotFound
}

// DeleteFile removes a single file entry.
func (c *Catalog) DeleteFile(subject, lecture, name string) error {
	l, err := c.Lecture(subject, lecture)
	if err != nil {
		return err
	}
	for i, f := range l.Files {
		if f.Name == name {
			l.Files = append(l.Files[:i], l.Files[i+1:]...)
			return nil
		}
	}
	return shared.ErrFileNotFound
}
