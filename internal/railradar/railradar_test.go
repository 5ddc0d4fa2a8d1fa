package railradar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveStation(t *testing.T) {
	cases := []struct {
		input string
		code  string
	}{
		{"DR", "DR"},
		{"dadar", "DR"},
		{"  Thane  ", "TNA"},
		{"vt", "CSMT"},
		{"Chhatrapati Shivaji Maharaj Terminus", "CSMT"},
		{"lokmanya tilak", "LTT"},
	}
	for _, tc := range cases {
		st, err := ResolveStation(tc.input)
		if err != nil {
			t.Errorf("ResolveStation(%q) failed: %v", tc.input, err)
			continue
		}
		if st.Code != tc.code {
			t.Errorf("ResolveStation(%q) = %s, want %s", tc.input, st.Code, tc.code)
		}
	}
}

func TestResolveStation_Unknown(t *testing.T) {
	_, err := ResolveStation("Pune Junction")
	if !errors.Is(err, ErrUnknownStation) {
		t.Fatalf("expected ErrUnknownStation, got %v", err)
	}

	if _, err := ResolveStation("   "); !errors.Is(err, ErrUnknownStation) {
		t.Errorf("expected ErrUnknownStation for blank input, got %v", err)
	}
}

func TestBucketStatus(t *testing.T) {
	cases := []struct {
		status string
		bucket string
	}{
		{"", StatusUnknown},
		{"Arriving shortly", StatusArrived},
		{"Departed at 14:02", StatusDeparted},
		{"Left the station", StatusDeparted},
		{"Running On Time", StatusOnTime},
		{"Right Time", StatusOnTime},
		{"Running Late by 20 mins", StatusDelayed},
		{"Delayed", StatusDelayed},
		{"Cancelled today", StatusCancelled},
		{"Diverted via Panvel", StatusOther},
	}
	for _, tc := range cases {
		if got := bucketStatus(tc.status); got != tc.bucket {
			t.Errorf("bucketStatus(%q) = %s, want %s", tc.status, got, tc.bucket)
		}
	}
}

func TestStationBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("stn"); got != "DR" {
			t.Errorf("expected stn=DR, got %q", got)
		}
		if got := r.URL.Query().Get("nextMinutes"); got != "60" {
			t.Errorf("expected nextMinutes=60, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"nextMinutes": 60,
			"live": [
				{"Train": "12051 Janshatabdi", "Expected": "14:05", "Current": "On Time", "PF": "3"},
				{"Train": "11007 Deccan Exp", "Expected": "14:20", "Current": "Late by 15 mins", "PF": "5"},
				{"Train": "", "Expected": "", "Current": "", "PF": ""},
				{"Train": "96214 Thane Local", "Expected": "14:08", "Current": "Departed", "PF": ""}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client()).WithBoardURL(srv.URL)
	board, err := client.StationBoard(context.Background(), "dadar", 60)
	if err != nil {
		t.Fatalf("StationBoard failed: %v", err)
	}

	if board.StationCode != "DR" || board.StationName != "Dadar" {
		t.Errorf("unexpected station metadata: %+v", board)
	}
	// The all-empty row is dropped.
	if len(board.Entries) != 3 {
		t.Fatalf("expected 3 board entries, got %d", len(board.Entries))
	}
	if board.Entries[1].StatusBucket != StatusDelayed {
		t.Errorf("expected delayed bucket, got %s", board.Entries[1].StatusBucket)
	}
	if board.Summary.TotalTrains != 3 {
		t.Errorf("expected summary over 3 trains, got %d", board.Summary.TotalTrains)
	}
	if got := board.Summary.StatusBreakdown[StatusOnTime]; got != 1 {
		t.Errorf("expected 1 on-time train, got %d", got)
	}
	if len(board.Summary.PlatformsAnnounced) != 2 {
		t.Errorf("expected platforms 3 and 5, got %v", board.Summary.PlatformsAnnounced)
	}
	if board.ReportedWindowMinutes == nil || *board.ReportedWindowMinutes != 60 {
		t.Errorf("expected reported window of 60, got %v", board.ReportedWindowMinutes)
	}
}

func TestStationBoard_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.Client()).WithBoardURL(srv.URL)
	_, err := client.StationBoard(context.Background(), "DR", 0)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestStationBoard_NegativeWindow(t *testing.T) {
	client := NewClient(nil)
	if _, err := client.StationBoard(context.Background(), "DR", -5); err == nil {
		t.Error("expected error for negative window")
	}
}

const liveMapFixture = `{
	"success": true,
	"data": [
		{"train_number": "96214", "train_name": "Thane Fast Local", "type": "EMU - Mumbai",
		 "current_station_name": "Ghatkopar", "current_station_code": "GC",
		 "speed": 52.5, "delay": 4, "lat": 19.08, "lon": 72.91},
		{"train_number": "90441", "train_name": "Andheri Local", "type": "EMU - Mumbai",
		 "current_station_name": "Bandra", "current_station_code": "BA"},
		{"train_number": "12051", "train_name": "Janshatabdi Express", "type": "Express",
		 "current_station_name": "Dadar", "current_station_code": "DR"}
	]
}`

func newLiveMapClient(t *testing.T, body string) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	return NewClient(srv.Client()).WithLiveMapURL(srv.URL), srv.Close
}

func TestLiveTrains_FiltersToMumbaiEMU(t *testing.T) {
	client, done := newLiveMapClient(t, liveMapFixture)
	defer done()

	status, err := client.LiveTrains(context.Background(), TrainFilter{})
	if err != nil {
		t.Fatalf("LiveTrains failed: %v", err)
	}
	// The express service is excluded.
	if status.TotalFound != 2 {
		t.Fatalf("expected 2 EMU trains, got %d", status.TotalFound)
	}
	first := status.Trains[0]
	if first.TrainNumber != "96214" || first.DelayMinutes == nil || *first.DelayMinutes != 4 {
		t.Errorf("unexpected first train: %+v", first)
	}
	if status.Trains[1].Speed != nil {
		t.Errorf("expected absent speed to stay nil, got %v", *status.Trains[1].Speed)
	}
}

func TestLiveTrains_Filters(t *testing.T) {
	client, done := newLiveMapClient(t, liveMapFixture)
	defer done()

	status, err := client.LiveTrains(context.Background(), TrainFilter{TrainNumber: "90441"})
	if err != nil {
		t.Fatalf("LiveTrains failed: %v", err)
	}
	if status.TotalFound != 1 || status.Trains[0].TrainName != "Andheri Local" {
		t.Errorf("unexpected number filter result: %+v", status)
	}

	status, err = client.LiveTrains(context.Background(), TrainFilter{TrainNameQuery: "thane"})
	if err != nil {
		t.Fatalf("LiveTrains failed: %v", err)
	}
	if status.TotalFound != 1 || status.Trains[0].TrainNumber != "96214" {
		t.Errorf("unexpected name filter result: %+v", status)
	}

	status, err = client.LiveTrains(context.Background(), TrainFilter{CurrentStationQuery: "bandra"})
	if err != nil {
		t.Fatalf("LiveTrains failed: %v", err)
	}
	if status.TotalFound != 1 || status.Trains[0].TrainNumber != "90441" {
		t.Errorf("unexpected station filter result: %+v", status)
	}
}

func TestLiveTrains_UnsuccessfulPayload(t *testing.T) {
	client, done := newLiveMapClient(t, `{"success": false}`)
	defer done()

	if _, err := client.LiveTrains(context.Background(), TrainFilter{}); !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}
