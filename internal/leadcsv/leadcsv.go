// Package leadcsv reads lead lists exported as CSV.
package leadcsv

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/evidence-cli/internal/model"
)

// headerAliases maps accepted header spellings to lead columns.
var headerAliases = map[string]string{
	"lead_id":     "lead_id",
	"id":          "lead_id",
	"evidence_id": "evidence_id",
	"lead_name":   "lead_name",
	"name":        "lead_name",
	"lead_firm":   "lead_firm",
	"firm":        "lead_firm",
	"company":     "lead_firm",
	"lead_city":   "lead_city",
	"city":        "lead_city",
}

var requiredColumns = []string{"lead_id", "evidence_id", "lead_name"}

// mapRow pairs each known header with the corresponding value in the row.
// Missing trailing values become empty strings.
func mapRow(columns []string, row []string) map[string]string {
	result := make(map[string]string, len(columns))
	for i, c := range columns {
		if c == "" {
			continue
		}
		if i < len(row) {
			result[c] = strings.TrimSpace(row[i])
		} else {
			result[c] = ""
		}
	}
	return result
}

// Read parses leads from r. The header row decides column order. Rows
// without an id or name are skipped, and a repeated (lead_id, evidence_id)
// keeps its first occurrence.
func Read(r io.Reader) ([]model.Lead, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "leadcsv: read csv")
	}
	if len(records) == 0 {
		return nil, nil
	}

	columns := make([]string, len(records[0]))
	present := make(map[string]bool)
	for i, h := range records[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if col, ok := headerAliases[key]; ok && !present[col] {
			columns[i] = col
			present[col] = true
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("leadcsv: missing required columns: %s", strings.Join(missing, ", "))
	}

	type key struct{ lead, evidence string }
	seen := make(map[key]struct{})
	var leads []model.Lead

	for _, row := range records[1:] {
		m := mapRow(columns, row)
		l := model.Lead{
			LeadID:     m["lead_id"],
			EvidenceID: m["evidence_id"],
			Name:       m["lead_name"],
			Firm:       m["lead_firm"],
			City:       m["lead_city"],
		}
		if l.LeadID == "" || l.EvidenceID == "" || l.Name == "" {
			continue
		}
		k := key{l.LeadID, l.EvidenceID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		leads = append(leads, l)
	}
	return leads, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) ([]model.Lead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "leadcsv: open %s", path)
	}
	defer f.Close() //nolint:errcheck
	return Read(f)
}
