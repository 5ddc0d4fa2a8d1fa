package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/fare"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/ferry"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/railradar"
)

const roadFaresFixture = `VehicleType,Distance_KM,OldFare_Normal_RS,RevisedFare_Normal_RS,OldFare_Midnight_RS,RevisedFare_Midnight_RS
Auto Rickshaw,1.5,23.00,26.00,28.75,32.50
Auto Rickshaw,2.0,31.00,35.00,38.75,43.75
`

const metroFaresFixture = `Line,FromStation,ToStation,Fare_RS
Line 1 (Blue Line),Versova,DN Nagar,10
Line 1 (Blue Line),DN Nagar,Versova,10
`

const ferryTripsFixture = `[
  {"from_location": "Gateway of India", "to_location": "Mandwa",
   "origin_first_departure": "06:15", "origin_last_departure": "20:00",
   "destination_first_departure": "07:00", "destination_last_departure": "20:45",
   "frequency": "Every 30 mins", "journey_time": "1 hour", "fare": "Rs 150",
   "availability": "365 Days", "bikes_allowed": true, "bike_details": "Rs 150 per bike"}
]`

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		fare.RoadFaresFile:  roadFaresFixture,
		fare.MetroFaresFile: metroFaresFixture,
		ferry.TripsFile:     ferryTripsFixture,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	fares, err := fare.NewService(dir)
	if err != nil {
		t.Fatalf("fare.NewService failed: %v", err)
	}
	ferries, err := ferry.NewService(dir)
	if err != nil {
		t.Fatalf("ferry.NewService failed: %v", err)
	}
	return &Handler{fares: fares, ferries: ferries}
}

func TestHello(t *testing.T) {
	h := &Handler{}

	result, output, err := h.Hello(context.Background(), nil, HelloInput{})
	if err != nil {
		t.Fatalf("Hello failed: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success result")
	}
	if !strings.Contains(output.Message, "traveller") {
		t.Errorf("expected default greeting, got %q", output.Message)
	}

	_, output, _ = h.Hello(context.Background(), nil, HelloInput{Name: "Asha"})
	if !strings.Contains(output.Message, "Asha") {
		t.Errorf("expected personalised greeting, got %q", output.Message)
	}
}

func TestFareLookup_Road(t *testing.T) {
	h := newTestHandler(t)

	result, output, err := h.FareLookup(context.Background(), nil, FareLookupInput{
		Mode: "road", VehicleType: "auto rickshaw", DistanceKM: 1.8,
	})
	if err != nil {
		t.Fatalf("FareLookup failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result)
	}
	// Defaults to the revised tariff in the normal band.
	if output.Road == nil || output.Road.FareRS != 26.00 {
		t.Errorf("unexpected road fare: %+v", output.Road)
	}
}

func TestFareLookup_Metro(t *testing.T) {
	h := newTestHandler(t)

	result, output, err := h.FareLookup(context.Background(), nil, FareLookupInput{
		Mode: "metro", FromStation: "Versova", ToStation: "DN Nagar",
	})
	if err != nil {
		t.Fatalf("FareLookup failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result)
	}
	if output.Metro == nil || output.Metro.TotalFareRS != 10 {
		t.Errorf("unexpected metro route: %+v", output.Metro)
	}
}

func TestFareLookup_InvalidMode(t *testing.T) {
	h := newTestHandler(t)

	result, _, err := h.FareLookup(context.Background(), nil, FareLookupInput{Mode: "hovercraft"})
	if err != nil {
		t.Fatalf("FareLookup failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected an error result for an unknown mode")
	}
}

func TestFerryLookup(t *testing.T) {
	h := newTestHandler(t)

	result, output, err := h.FerryLookup(context.Background(), nil, FerryLookupInput{FromLocation: "gateway"})
	if err != nil {
		t.Fatalf("FerryLookup failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result)
	}
	if output.Result.Metadata.Returned != 1 || output.Result.Trips[0].ToLocation != "Mandwa" {
		t.Errorf("unexpected ferry output: %+v", output.Result)
	}
	if output.Result.Filters.FromLocation != "gateway" {
		t.Errorf("expected applied filters to be echoed, got %+v", output.Result.Filters)
	}

	// No matches come back as a friendly text result, not an error.
	result, output, err = h.FerryLookup(context.Background(), nil, FerryLookupInput{FromLocation: "goa"})
	if err != nil {
		t.Fatalf("FerryLookup failed: %v", err)
	}
	if result.IsError || output.Result.Metadata.Returned != 0 {
		t.Errorf("unexpected empty-match behaviour: %+v", result)
	}
}

func TestFerryLookup_BikeFilter(t *testing.T) {
	h := newTestHandler(t)

	denied := false
	result, output, err := h.FerryLookup(context.Background(), nil, FerryLookupInput{AllowsBikes: &denied})
	if err != nil {
		t.Fatalf("FerryLookup failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result)
	}
	// The only fixture trip carries bikes, so filtering on false
	// matches nothing.
	if output.Result.Metadata.Total != 0 {
		t.Errorf("expected no matches, got %+v", output.Result.Metadata)
	}
}

func TestStationBoard_UnknownStationIsToolError(t *testing.T) {
	h := &Handler{rail: railradar.NewClient(nil)}

	result, _, err := h.StationBoard(context.Background(), nil, StationBoardInput{Station: "Pune"})
	if err != nil {
		t.Fatalf("StationBoard failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected an error result for an unsupported station")
	}
}

func TestStationBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("nextMinutes"); got != "120" {
			t.Errorf("expected default window of 120, got %q", got)
		}
		w.Write([]byte(`{"live": [{"Train": "96214 Thane Local", "Expected": "14:08", "Current": "On Time", "PF": "2"}]}`))
	}))
	defer srv.Close()

	h := &Handler{rail: railradar.NewClient(srv.Client()).WithBoardURL(srv.URL)}

	result, output, err := h.StationBoard(context.Background(), nil, StationBoardInput{})
	if err != nil {
		t.Fatalf("StationBoard failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result)
	}
	// The station defaults to Dadar.
	if output.Board.StationCode != "DR" || output.Board.Summary.TotalTrains != 1 {
		t.Errorf("unexpected board: %+v", output.Board)
	}
}
