package fare

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Metro line names as they appear in the fare matrix.
const (
	LineBlue     = "Line 1 (Blue Line)"
	LineYellow   = "Line 2A & 7"
	LineAqualine = "Line 3 (Aqualine)"
)

// interchange is a walkable transfer between two metro lines. The
// transfer itself costs nothing, the rider buys a fresh ticket on the
// second line.
type interchange struct {
	stations map[string]string // line -> station name on that line
}

var metroInterchanges = []interchange{
	{stations: map[string]string{LineBlue: "Marol Naka", LineAqualine: "Marol Naka"}},
	{stations: map[string]string{LineBlue: "Western Express Highway", LineYellow: "Gundavali"}},
	{stations: map[string]string{LineBlue: "DN Nagar", LineYellow: "DN Nagar"}},
}

// MetroSegment is one ticketed ride on a single line.
type MetroSegment struct {
	Line        string `json:"line"`
	FromStation string `json:"from_station"`
	ToStation   string `json:"to_station"`
	FareRS      int    `json:"fare_rs"`
}

// MetroRoute is a resolved metro journey, either a direct ride or a
// two-segment journey through an interchange.
type MetroRoute struct {
	FromStation string         `json:"from_station"`
	ToStation   string         `json:"to_station"`
	TotalFareRS int            `json:"total_fare_rs"`
	Interchange string         `json:"interchange,omitempty"`
	Segments    []MetroSegment `json:"segments"`
}

// metroNetwork indexes the fare matrix by line and station.
type metroNetwork struct {
	fares    map[string]map[string]map[string]int // line -> from -> to -> fare
	stations map[string][]string                  // lowercased station -> lines serving it
	names    map[string]string                    // lowercased station -> canonical name
}

func loadMetroNetwork(path string) (*metroNetwork, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening metro fare table: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing metro fare table: %w", err)
	}
	if len(rows) < 2 {
		return nil, errors.New("metro fare table has no data rows")
	}

	n := &metroNetwork{
		fares:    make(map[string]map[string]map[string]int),
		stations: make(map[string][]string),
		names:    make(map[string]string),
	}
	for _, row := range rows[1:] {
		if len(row) != 4 {
			return nil, fmt.Errorf("invalid metro fare row: %v", row)
		}
		line := strings.TrimSpace(row[0])
		from := strings.TrimSpace(row[1])
		to := strings.TrimSpace(row[2])
		fare, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil {
			return nil, fmt.Errorf("invalid metro fare row %v: %w", row, err)
		}

		if n.fares[line] == nil {
			n.fares[line] = make(map[string]map[string]int)
		}
		if n.fares[line][from] == nil {
			n.fares[line][from] = make(map[string]int)
		}
		n.fares[line][from][to] = fare
		n.indexStation(line, from)
		n.indexStation(line, to)
	}
	return n, nil
}

func (n *metroNetwork) indexStation(line, station string) {
	key := strings.ToLower(station)
	n.names[key] = station
	for _, have := range n.stations[key] {
		if have == line {
			return
		}
	}
	n.stations[key] = append(n.stations[key], line)
}

// resolveStation fuzzy-matches name against every known station and
// returns the canonical name with the lines serving it.
func (n *metroNetwork) resolveStation(name string) (string, []string, error) {
	keys := make([]string, 0, len(n.stations))
	for key := range n.stations {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	matched, score := bestMatch(name, keys)
	if matched == "" || score < minFuzzyScore {
		return "", nil, fmt.Errorf("%w: metro station %q not recognised", ErrNotFound, name)
	}
	return n.names[matched], n.stations[matched], nil
}

func (n *metroNetwork) fare(line, from, to string) (int, bool) {
	fare, ok := n.fares[line][from][to]
	return fare, ok
}

// MetroFare resolves the cheapest metro route between two stations.
// Stations on the same line ride direct, otherwise every known
// interchange is tried and the cheapest combination wins.
func (s *Service) MetroFare(from, to string) (*MetroRoute, error) {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return nil, errors.New("both from_station and to_station are required")
	}

	fromName, fromLines, err := s.metro.resolveStation(from)
	if err != nil {
		return nil, err
	}
	toName, toLines, err := s.metro.resolveStation(to)
	if err != nil {
		return nil, err
	}

	if fromName == toName {
		return nil, fmt.Errorf("origin and destination are both %s", fromName)
	}

	// Direct ride when a single line serves both stations.
	for _, line := range fromLines {
		for _, other := range toLines {
			if line != other {
				continue
			}
			fare, ok := s.metro.fare(line, fromName, toName)
			if !ok {
				continue
			}
			return &MetroRoute{
				FromStation: fromName,
				ToStation:   toName,
				TotalFareRS: fare,
				Segments: []MetroSegment{
					{Line: line, FromStation: fromName, ToStation: toName, FareRS: fare},
				},
			}, nil
		}
	}

	best := s.cheapestInterchangeRoute(fromName, fromLines, toName, toLines)
	if best == nil {
		return nil, fmt.Errorf("%w: no metro route between %s and %s", ErrNotFound, fromName, toName)
	}
	return best, nil
}

func (s *Service) cheapestInterchangeRoute(fromName string, fromLines []string, toName string, toLines []string) *MetroRoute {
	var best *MetroRoute
	for _, ic := range metroInterchanges {
		for _, lineA := range fromLines {
			stopA, ok := ic.stations[lineA]
			if !ok {
				continue
			}
			for _, lineB := range toLines {
				if lineB == lineA {
					continue
				}
				stopB, ok := ic.stations[lineB]
				if !ok {
					continue
				}
				fareA, okA := s.metro.fare(lineA, fromName, stopA)
				fareB, okB := s.metro.fare(lineB, stopB, toName)
				if !okA || !okB {
					continue
				}
				route := &MetroRoute{
					FromStation: fromName,
					ToStation:   toName,
					TotalFareRS: fareA + fareB,
					Interchange: stopA,
					Segments: []MetroSegment{
						{Line: lineA, FromStation: fromName, ToStation: stopA, FareRS: fareA},
						{Line: lineB, FromStation: stopB, ToStation: toName, FareRS: fareB},
					},
				}
				if best == nil || route.TotalFareRS < best.TotalFareRS {
					best = route
				}
			}
		}
	}
	return best
}
