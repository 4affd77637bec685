// Package enrollment models the student directory: enrollment codes, the
// digit normalization applied to every code entering the system, bulk import
// reconciliation and suspension records.
package enrollment

import (
	"sort"
	"strings"

	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
)

// MinCodeLength is the minimum number of digits a code must carry after
// normalization to be accepted at login.
const MinCodeLength = 5

// NormalizeCode folds Arabic-Indic digits to ASCII and strips every
// non-digit rune. The result contains only '0'-'9'. Idempotent.
func NormalizeCode(raw string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r >= 0x0660 && r <= 0x0669: // Arabic-Indic digits
			return '0' + (r - 0x0660)
		case r >= 0x06F0 && r <= 0x06F9: // Extended Arabic-Indic digits
			return '0' + (r - 0x06F0)
		default:
			return -1
		}
	}, raw)
}

// Record binds one enrollment code to a student name.
type Record struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Directory is the ordered set of enrollment records. Order is preserved so
// paginated admin listings stay stable between saves.
type Directory struct {
	Records []Record `json:"records"`
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{Records: []Record{}}
}

// index returns the position of the record holding the given normalized
// code, or -1.
func (d *Directory) index(code string) int {
	for i, r := range d.Records {
		if r.Code == code {
			return i
		}
	}
	return -1
}

// Find returns the record for a code. The code is normalized before lookup.
func (d *Directory) Find(code string) (Record, error) {
	norm := NormalizeCode(code)
	if i := d.index(norm); i >= 0 {
		return d.Records[i], nil
	}
	return Record{}, shared.ErrCodeNotFound
}

// Has reports whether the normalized code is enrolled.
func (d *Directory) Has(code string) bool {
	return d.index(NormalizeCode(code)) >= 0
}

// Len returns the number of records.
func (d *Directory) Len() int {
	return len(d.Records)
}

// Add appends a new record. The code is normalized; empty codes, empty
// names and duplicate codes are rejected.
func (d *Directory) Add(code, name string) error {
	norm := NormalizeCode(code)
	name = strings.TrimSpace(name)
	if norm == "" {
		return shared.ErrCodeEmpty
	}
	if name == "" {
		return shared.NewDomainError("enrollment", "Add", shared.ErrEmptyValue, "student name is empty")
	}
	if d.index(norm) >= 0 {
		return shared.ErrCodeExists
	}
	d.Records = append(d.Records, Record{Code: norm, Name: name})
	return nil
}

// Rename changes the name bound to a code in place.
func (d *Directory) Rename(code, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return shared.NewDomainError("enrollment", "Rename", shared.ErrEmptyValue, "student name is empty")
	}
	i := d.index(NormalizeCode(code))
	if i < 0 {
		return shared.ErrCodeNotFound
	}
	d.Records[i].Name = newName
	return nil
}

// Recode replaces a student's code, keeping the record's position. The new
// code must normalize to a non-empty, unused value.
func (d *Directory) Recode(oldCode, newCode string) error {
	oldNorm := NormalizeCode(oldCode)
	newNorm := NormalizeCode(newCode)
	if newNorm == "" {
		return shared.ErrCodeEmpty
	}
	i := d.index(oldNorm)
	if i < 0 {
		return shared.ErrCodeNotFound
	}
	if newNorm != oldNorm && d.index(newNorm) >= 0 {
		return shared.ErrCodeExists
	}
	d.Records[i].Code = newNorm
	return nil
}

// Delete removes the record for a code.
func (d *Directory) Delete(code string) error {
	i := d.index(NormalizeCode(code))
	if i < 0 {
		return shared.ErrCodeNotFound
	}
	d.Records = append(d.Records[:i], d.Records[i+1:]...)
	return nil
}

// SortByCode orders records lexicographically by code. Used after bulk
// import so the replaced directory has a deterministic layout.
func (d *Directory) SortByCode() {
	sort.SliceStable(d.Records, func(i, j int) bool {
		return d.Records[i].Code < d.Records[j].Code
	})
}
