package penalty

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

var trafficFixture = []string{
	"Traffic Penalties (Motor Vehicles Act)",
	"177, General offence, Rs 500",
	"129, Riding without helmet, Rs 500 and licence suspension",
	"malformed line without commas",
	"",
	"184, Dangerous driving",
}

var railwayFixture = []string{
	"Railway Penalties (Railways Act)",
	"137, Travelling without ticket, Fine up to Rs 1000",
	"Travelling on roof of train",
	"Other Offences",
	"145, Nuisance and littering, Rs 500",
	"Trespassing on railway premises",
}

func TestParseTraffic(t *testing.T) {
	records := ParseTraffic(trafficFixture)

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.Code != "177" || first.Description != "General offence" || first.Penalty != "Rs 500" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.Category != CategoryTraffic {
		t.Errorf("expected category traffic, got %s", first.Category)
	}

	// Two-field line has no penalty.
	if records[2].Code != "184" || records[2].Penalty != "" {
		t.Errorf("unexpected third record: %+v", records[2])
	}
}

func TestParseTraffic_MalformedLineDropped(t *testing.T) {
	records := ParseTraffic([]string{"only one field"})
	if len(records) != 0 {
		t.Errorf("expected malformed line to be dropped, got %d records", len(records))
	}
}

func TestParseRailway_CategorySwitch(t *testing.T) {
	records := ParseRailway(railwayFixture)

	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}

	for i, want := range []Category{CategoryRailway, CategoryRailway, CategoryRailwayOther, CategoryRailwayOther} {
		if records[i].Category != want {
			t.Errorf("record %d: expected category %s, got %s", i, want, records[i].Category)
		}
	}

	// Single-field lines become code-less descriptions.
	if records[1].Code != "" || records[1].Description != "Travelling on roof of train" {
		t.Errorf("unexpected single-field record: %+v", records[1])
	}
}

func TestParseRailway_MarkerIsCaseInsensitive(t *testing.T) {
	records := ParseRailway([]string{"oThEr OfFeNcEs", "Ticket touting"})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Category != CategoryRailwayOther {
		t.Errorf("expected railway-other, got %s", records[0].Category)
	}
}

func TestParser_Deterministic(t *testing.T) {
	a := append(ParseTraffic(trafficFixture), ParseRailway(railwayFixture)...)
	b := append(ParseTraffic(trafficFixture), ParseRailway(railwayFixture)...)

	if !reflect.DeepEqual(a, b) {
		t.Error("repeated parses produced different record lists")
	}
	for i := range a {
		if a[i].SearchableText() != b[i].SearchableText() {
			t.Errorf("record %d: searchable text differs between runs", i)
		}
	}
}

func TestSearchableText(t *testing.T) {
	rec := Record{Code: "129", Description: "Riding without helmet", Penalty: "Rs 500", Category: CategoryTraffic}
	want := "traffic | 129 | Riding without helmet | Penalty: Rs 500"
	if got := rec.SearchableText(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	// Empty code and penalty are skipped entirely.
	rec = Record{Description: "Trespassing", Category: CategoryRailwayOther}
	want = "railway-other | Trespassing"
	if got := rec.SearchableText(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func writeDatasets(t *testing.T, traffic, railway string) string {
	t.Helper()
	dir := t.TempDir()
	if traffic != "" {
		if err := os.WriteFile(filepath.Join(dir, TrafficDatasetFile), []byte(traffic), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if railway != "" {
		if err := os.WriteFile(filepath.Join(dir, RailwayDatasetFile), []byte(railway), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadRecords(t *testing.T) {
	dir := writeDatasets(t,
		"Traffic Penalties\n177, General offence, Rs 500\n",
		"Railway Penalties\n137, Ticketless travel, Rs 1000\n")

	records, err := LoadRecords(dir)
	if err != nil {
		t.Fatalf("LoadRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Traffic records come first, railway after.
	if records[0].Category != CategoryTraffic || records[1].Category != CategoryRailway {
		t.Errorf("unexpected ordering: %+v", records)
	}
}

func TestLoadRecords_MissingFile(t *testing.T) {
	dir := writeDatasets(t, "Traffic Penalties\n177, General offence\n", "")

	_, err := LoadRecords(dir)
	if !errors.Is(err, ErrDatasetMissing) {
		t.Errorf("expected ErrDatasetMissing, got %v", err)
	}
}

func TestLoadRecords_EmptyDataset(t *testing.T) {
	dir := writeDatasets(t, "Traffic Penalties\n", "Railway Penalties\n")

	_, err := LoadRecords(dir)
	if !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
}
