// Package importer turns an uploaded CSV into a reconciled student
// directory. The file must carry "code" and "name" header columns;
// everything else about the layout is forgiving.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/campus-hub/campus-content-bot/internal/domain/enrollment"
	"github.com/campus-hub/campus-content-bot/internal/domain/shared"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/file"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse decodes CSV bytes into import rows. The UTF-8 BOM spreadsheet
// exports prepend is stripped; header matching is case-insensitive;
// short rows are tolerated.
func Parse(data []byte) ([]enrollment.ImportRow, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, shared.NewDomainError("importer", "Parse", shared.ErrValidation, "file is empty")
		}
		return nil, shared.WrapError("importer", "Parse", shared.ErrInvalidFormat, "reading header", err)
	}

	codeCol, nameCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "code":
			codeCol = i
		case "name":
			nameCol = i
		}
	}
	if codeCol < 0 || nameCol < 0 {
		return nil, shared.NewDomainError("importer", "Parse", shared.ErrInvalidFormat,
			"header must contain code and name columns")
	}

	var rows []enrollment.ImportRow
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, shared.WrapError("importer", "Parse", shared.ErrInvalidFormat, "reading row", err)
		}

		row := enrollment.ImportRow{}
		if codeCol < len(record) {
			row.Code = record[codeCol]
		}
		if nameCol < len(record) {
			row.Name = record[nameCol]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Importer parses uploaded CSV files and applies them to the directory.
type Importer struct {
	enrollment *file.EnrollmentStore
}

// New creates an importer over the enrollment store.
func New(store *file.EnrollmentStore) *Importer {
	return &Importer{enrollment: store}
}

// Run parses the upload and replaces the directory with the reconciled
// result, returning the added/updated/skipped counters.
func (i *Importer) Run(ctx context.Context, data []byte) (enrollment.ImportResult, error) {
	rows, err := Parse(data)
	if err != nil {
		return enrollment.ImportResult{}, err
	}
	return i.enrollment.ReconcileImport(ctx, rows)
}
