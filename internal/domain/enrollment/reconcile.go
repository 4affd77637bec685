package enrollment

import "strings"

// ImportRow is one raw row of a bulk import before normalization.
type ImportRow struct {
	Code string
	Name string
}

// ImportResult summarizes a reconciliation pass.
type ImportResult struct {
	Added   int
	Updated int
	Skipped int
}

// Reconcile merges a batch of import rows into the directory and returns
// the replacement directory plus counters. Rules:
//
//   - codes are normalized; rows with an empty code or name are skipped
//   - a repeated code within the batch keeps only the last row
//   - existing code with a different name counts as updated
//   - existing code with the same name counts as skipped
//   - unknown code counts as added
//
// The result is a full replacement of the directory, sorted by code.
func Reconcile(current *Directory, rows []ImportRow) (*Directory, ImportResult) {
	var res ImportResult

	// Last row wins within the batch.
	merged := make(map[string]string)
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		code := NormalizeCode(row.Code)
		name := strings.TrimSpace(row.Name)
		if code == "" || name == "" {
			res.Skipped++
			continue
		}
		if _, seen := merged[code]; !seen {
			order = append(order, code)
		}
		merged[code] = name
	}

	existing := make(map[string]string, current.Len())
	for _, r := range current.Records {
		existing[r.Code] = r.Name
	}

	next := NewDirectory()
	for _, code := range order {
		name := merged[code]
		if oldName, ok := existing[code]; ok {
			if oldName == name {
				res.Skipped++
			} else {
				res.Updated++
			}
		} else {
			res.Added++
		}
		next.Records = append(next.Records, Record{Code: code, Name: name})
	}

	next.SortByCode()
	return next, res
}
