package sheets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"eventdash/internal/core"
)

var errMissingColumns = errors.New("unexpected events header")

// Columns are located by header name so the sheet can be reordered freely.
var requiredColumns = []string{"ID", "Name", "Category", "Date"}

// parseEventRows converts a values matrix (header row first) into events.
// Rows that fail validation are skipped and counted.
func parseEventRows(values [][]interface{}) ([]core.Event, int, error) {
	if len(values) == 0 {
		return []core.Event{}, 0, nil
	}
	headers := toStrings(values[0])
	var missing []string
	for _, name := range requiredColumns {
		if indexOf(headers, name) == -1 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("%w: missing %s; got headers=%v", errMissingColumns, strings.Join(missing, ","), headers)
	}

	col := func(name string) int { return indexOf(headers, name) }
	var (
		colID           = col("ID")
		colName         = col("Name")
		colCompany      = col("Company")
		colCategory     = col("Category")
		colDate         = col("Date")
		colPlace        = col("Place")
		colDescription  = col("Description")
		colParticipants = col("Participants")
		colRequirements = col("Requirements")
		colNotes        = col("Notes")
		colImage        = col("Image")
		colRecurrence   = col("Recurrence")
	)

	out := make([]core.Event, 0, len(values)-1)
	seen := map[string]bool{}
	skipped := 0
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		id := safeGet(row, colID)
		if id == "" && strings.Join(row, "") == "" {
			continue
		}
		date, err := core.ParseDate(safeGet(row, colDate))
		if err != nil || seen[id] {
			skipped++
			continue
		}
		participants := 0
		if raw := safeGet(row, colParticipants); raw != "" {
			n, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
			if err != nil {
				skipped++
				continue
			}
			participants = n
		}
		e := core.Event{
			ID:           id,
			Name:         safeGet(row, colName),
			Company:      safeGet(row, colCompany),
			Category:     safeGet(row, colCategory),
			Date:         date,
			Place:        safeGet(row, colPlace),
			Description:  safeGet(row, colDescription),
			Participants: participants,
			Requirements: safeGet(row, colRequirements),
			Notes:        safeGet(row, colNotes),
			Image:        safeGet(row, colImage),
			Recurrence:   safeGet(row, colRecurrence),
		}
		if id == "" || e.Validate() != nil {
			skipped++
			continue
		}
		seen[id] = true
		out = append(out, e)
	}
	return out, skipped, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
