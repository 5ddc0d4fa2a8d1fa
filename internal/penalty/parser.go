package penalty

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dataset file names expected under the data directory.
const (
	TrafficDatasetFile = "traffic_penalties.txt"
	RailwayDatasetFile = "railway_penalties.txt"
)

// ParseTraffic parses the traffic penalties dataset. Each data line is
// "code, description[, penalty]"; the title line and lines with fewer
// than two fields are skipped.
func ParseTraffic(lines []string) []Record {
	var records []Record
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "traffic penalties") {
			continue
		}

		parts := splitFields(line)
		if len(parts) < 2 {
			continue
		}

		rec := Record{
			Code:        parts[0],
			Description: parts[1],
			Category:    CategoryTraffic,
		}
		if len(parts) == 3 {
			rec.Penalty = parts[2]
		}
		records = append(records, rec)
	}
	return records
}

// ParseRailway parses the railway penalties dataset. A marker line
// reading "other offences" (any case) flips the category of all
// subsequent rows to railway-other. A single-field line is a
// description with no code; rows that end up without a description are
// dropped.
func ParseRailway(lines []string) []Record {
	var records []Record
	category := CategoryRailway

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		normalized := strings.ToLower(line)
		if strings.HasPrefix(normalized, "railway penalties") {
			continue
		}
		if normalized == "other offences" {
			category = CategoryRailwayOther
			continue
		}

		parts := splitFields(line)
		var rec Record
		if len(parts) == 1 {
			rec = Record{Description: parts[0], Category: category}
		} else {
			rec = Record{Code: parts[0], Description: parts[1], Category: category}
			if len(parts) > 2 {
				rec.Penalty = parts[2]
			}
		}

		if rec.Description == "" && rec.Code != "" {
			rec.Description = rec.Code
			rec.Code = ""
		}
		if rec.Description == "" {
			continue
		}

		records = append(records, rec)
	}
	return records
}

// splitFields splits a line into at most 3 trimmed comma-separated fields.
func splitFields(line string) []string {
	parts := strings.SplitN(line, ",", 3)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// LoadRecords reads and parses both dataset files from dir. The result
// is traffic records in file order followed by railway records in file
// order; this ordering is the canonical index space for the embedding
// matrix and is stable across restarts given identical files.
func LoadRecords(dir string) ([]Record, error) {
	trafficLines, err := readLines(filepath.Join(dir, TrafficDatasetFile))
	if err != nil {
		return nil, err
	}
	railwayLines, err := readLines(filepath.Join(dir, RailwayDatasetFile))
	if err != nil {
		return nil, err
	}

	records := ParseTraffic(trafficLines)
	records = append(records, ParseRailway(railwayLines)...)

	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	return records, nil
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetMissing, path)
		}
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	return strings.Split(string(data), "\n"), nil
}
