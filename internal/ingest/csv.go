// Package ingest is the file-format boundary: it turns CSV exports into
// strict typed records with all defaulting applied, so nothing downstream
// ever re-interprets loose field values.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// Header names recognized in delivery exports, after normalization.
const (
	colCampaignName = "campaign name"
	colContentTitle = "content title"
	colNetworkName  = "content network name"
	colImpression   = "impression"
	colQuartile100  = "quartile100"
)

// Record is one source row with defaulting rules already applied: counts are
// 0 when absent or unparsable, text fields are as received.
type Record struct {
	CampaignNameSrc string
	ContentTitle    string
	NetworkName     string
	Impressions     int64
	Quartile100     int64
}

// Parse reads a CSV export. Headers are matched after trimming and
// lower-casing, so column-name casing differences between supply paths do
// not matter. Rows shorter than the header are padded with empty fields;
// fully empty rows are skipped and counted.
func Parse(r io.Reader) ([]Record, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var records []Record
	skipped := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read row: %w", err)
		}

		if isEmptyRow(fields) {
			skipped++
			continue
		}

		records = append(records, Record{
			CampaignNameSrc: field(fields, index, colCampaignName),
			ContentTitle:    field(fields, index, colContentTitle),
			NetworkName:     field(fields, index, colNetworkName),
			Impressions:     ParseCount(field(fields, index, colImpression)),
			Quartile100:     ParseCount(field(fields, index, colQuartile100)),
		})
	}

	return records, skipped, nil
}

// ParseCount parses a non-negative count column. Malformed analytics exports
// are common, so a value that does not parse (or is negative) becomes 0
// rather than failing the row.
func ParseCount(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// CampaignName derives a campaign name from an uploaded file name: extension
// stripped, underscores and dashes turned into spaces.
func CampaignName(fileName string) string {
	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return name
}

func field(fields []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(fields) {
		return ""
	}
	return fields[i]
}

func isEmptyRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
