// Package fare serves official Mumbai road transport tariffs and metro
// fares from the reference tables shipped in the data directory.
// Vehicle types and station names are resolved with fuzzy matching so
// callers can be sloppy about spelling.
package fare

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xrash/smetrics"
)

// Data file names expected under the data directory.
const (
	RoadFaresFile  = "fares.csv"
	MetroFaresFile = "metro_fares.csv"
)

// minFuzzyScore is the Jaro-Winkler score below which a fuzzy lookup is
// rejected rather than silently matched.
const minFuzzyScore = 0.85

// ErrNotFound is returned when a vehicle type or station cannot be
// resolved, or no fare exists for the requested pair.
var ErrNotFound = errors.New("fare entry not found")

// Variant selects between the old and revised tariff cards.
type Variant string

const (
	VariantOld     Variant = "old"
	VariantRevised Variant = "revised"
)

// TimePeriod selects the normal or midnight tariff band.
type TimePeriod string

const (
	PeriodNormal   TimePeriod = "normal"
	PeriodMidnight TimePeriod = "midnight"
)

// RoadRecord is one distance slab of a vehicle's tariff card.
type RoadRecord struct {
	VehicleType     string  `json:"vehicle_type"`
	DistanceKM      float64 `json:"distance_km"`
	OldNormal       float64 `json:"old_normal"`
	RevisedNormal   float64 `json:"revised_normal"`
	OldMidnight     float64 `json:"old_midnight"`
	RevisedMidnight float64 `json:"revised_midnight"`
}

// RoadFare is a resolved road fare lookup.
type RoadFare struct {
	VehicleType string     `json:"vehicle_type"`
	DistanceKM  float64    `json:"distance_km"`
	Variant     Variant    `json:"fare_variant"`
	TimePeriod  TimePeriod `json:"time_period"`
	FareRS      float64    `json:"fare_rs"`
	Record      RoadRecord `json:"full_record"`
}

// Service answers fare lookups against the loaded tariff tables.
type Service struct {
	road  map[string][]RoadRecord // lowercased vehicle type -> slabs sorted by distance
	metro *metroNetwork
}

// NewService loads the road and metro fare tables from dir.
func NewService(dir string) (*Service, error) {
	road, err := loadRoadFares(filepath.Join(dir, RoadFaresFile))
	if err != nil {
		return nil, err
	}
	metro, err := loadMetroNetwork(filepath.Join(dir, MetroFaresFile))
	if err != nil {
		return nil, err
	}
	return &Service{road: road, metro: metro}, nil
}

// VehicleTypes returns the canonical vehicle type names, sorted.
func (s *Service) VehicleTypes() []string {
	types := make([]string, 0, len(s.road))
	for _, slabs := range s.road {
		types = append(types, slabs[0].VehicleType)
	}
	sort.Strings(types)
	return types
}

// RoadFare resolves the fare for a vehicle and distance. The charged
// slab is the greatest tabulated distance not exceeding distanceKM.
func (s *Service) RoadFare(vehicleType string, distanceKM float64, variant Variant, period TimePeriod) (*RoadFare, error) {
	if vehicleType == "" {
		return nil, errors.New("vehicle_type is required")
	}
	if distanceKM <= 0 {
		return nil, errors.New("distance_km must be positive")
	}
	switch variant {
	case VariantOld, VariantRevised:
	default:
		return nil, fmt.Errorf("fare_variant must be %q or %q", VariantOld, VariantRevised)
	}
	switch period {
	case PeriodNormal, PeriodMidnight:
	default:
		return nil, fmt.Errorf("time_period must be %q or %q", PeriodNormal, PeriodMidnight)
	}

	keys := make([]string, 0, len(s.road))
	for key := range s.road {
		keys = append(keys, key)
	}
	matched, score := bestMatch(vehicleType, keys)
	if matched == "" || score < minFuzzyScore {
		return nil, fmt.Errorf("%w: vehicle type %q not recognised, available types: %s",
			ErrNotFound, vehicleType, strings.Join(s.VehicleTypes(), ", "))
	}

	slabs := s.road[matched]
	if distanceKM < slabs[0].DistanceKM {
		return nil, fmt.Errorf("%w: distance %.2fkm is below the minimum of %.2fkm for %s",
			ErrNotFound, distanceKM, slabs[0].DistanceKM, slabs[0].VehicleType)
	}

	slab := slabs[0]
	for _, rec := range slabs {
		if rec.DistanceKM <= distanceKM {
			slab = rec
		} else {
			break
		}
	}

	return &RoadFare{
		VehicleType: slab.VehicleType,
		DistanceKM:  distanceKM,
		Variant:     variant,
		TimePeriod:  period,
		FareRS:      selectFare(slab, variant, period),
		Record:      slab,
	}, nil
}

func selectFare(rec RoadRecord, variant Variant, period TimePeriod) float64 {
	switch {
	case variant == VariantOld && period == PeriodNormal:
		return rec.OldNormal
	case variant == VariantOld && period == PeriodMidnight:
		return rec.OldMidnight
	case variant == VariantRevised && period == PeriodNormal:
		return rec.RevisedNormal
	default:
		return rec.RevisedMidnight
	}
}

func loadRoadFares(path string) (map[string][]RoadRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening road fare table: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing road fare table: %w", err)
	}
	if len(rows) < 2 {
		return nil, errors.New("road fare table has no data rows")
	}

	table := make(map[string][]RoadRecord)
	for _, row := range rows[1:] {
		if len(row) != 6 {
			return nil, fmt.Errorf("invalid road fare row: %v", row)
		}
		rec := RoadRecord{VehicleType: strings.TrimSpace(row[0])}
		fields := []*float64{&rec.DistanceKM, &rec.OldNormal, &rec.RevisedNormal, &rec.OldMidnight, &rec.RevisedMidnight}
		for i, dst := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid road fare row %v: %w", row, err)
			}
			*dst = v
		}
		key := strings.ToLower(rec.VehicleType)
		table[key] = append(table[key], rec)
	}

	for key := range table {
		slabs := table[key]
		sort.Slice(slabs, func(i, j int) bool { return slabs[i].DistanceKM < slabs[j].DistanceKM })
		table[key] = slabs
	}
	return table, nil
}

// bestMatch returns the candidate with the highest Jaro-Winkler
// similarity to query, compared case-insensitively.
func bestMatch(query string, candidates []string) (string, float64) {
	q := strings.ToLower(strings.TrimSpace(query))
	best, bestScore := "", -1.0
	for _, c := range candidates {
		score := smetrics.JaroWinkler(q, strings.ToLower(c), 0.7, 4)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore
}
