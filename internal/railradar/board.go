package railradar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Status buckets a board entry can be classified into.
const (
	StatusArrived   = "arrived"
	StatusDeparted  = "departed"
	StatusOnTime    = "on_time"
	StatusDelayed   = "delayed"
	StatusCancelled = "cancelled"
	StatusOther     = "other"
	StatusUnknown   = "unknown"
)

// BoardEntry is one train on a station's live board.
type BoardEntry struct {
	TrainName    string `json:"train_name,omitempty"`
	ExpectedTime string `json:"expected_time,omitempty"`
	Status       string `json:"status,omitempty"`
	Platform     string `json:"platform,omitempty"`
	StatusBucket string `json:"status_bucket"`
}

// BoardSummary aggregates a board by status bucket and platform.
type BoardSummary struct {
	TotalTrains        int            `json:"total_trains"`
	StatusBreakdown    map[string]int `json:"status_breakdown"`
	PlatformsAnnounced []string       `json:"platforms_announced"`
}

// Board is the live arrival and departure board for one station.
type Board struct {
	StationCode            string       `json:"station_code"`
	StationName            string       `json:"station_name"`
	Aliases                []string     `json:"aliases"`
	RequestedWindowMinutes int          `json:"requested_window_minutes,omitempty"`
	ReportedWindowMinutes  *int         `json:"reported_window_minutes,omitempty"`
	Source                 string       `json:"source"`
	Summary                BoardSummary `json:"summary"`
	Entries                []BoardEntry `json:"board"`
}

type boardPayload struct {
	Live []struct {
		Train    string `json:"Train"`
		Expected string `json:"Expected"`
		Current  string `json:"Current"`
		PF       string `json:"PF"`
	} `json:"live"`
	NextMinutes json.Number `json:"nextMinutes"`
}

// StationBoard fetches the live board for a station. nextMinutes
// bounds the look-ahead window, zero leaves the upstream default.
func (c *Client) StationBoard(ctx context.Context, station string, nextMinutes int) (*Board, error) {
	st, err := ResolveStation(station)
	if err != nil {
		return nil, err
	}
	if nextMinutes < 0 {
		return nil, fmt.Errorf("next_minutes must be greater than zero")
	}

	params := url.Values{"stn": {st.Code}}
	if nextMinutes > 0 {
		params.Set("nextMinutes", strconv.Itoa(nextMinutes))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.boardURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building board request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: board feed returned %s", ErrUpstream, resp.Status)
	}

	var payload boardPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding board response: %v", ErrUpstream, err)
	}

	entries := make([]BoardEntry, 0, len(payload.Live))
	for _, item := range payload.Live {
		entry := BoardEntry{
			TrainName:    strings.TrimSpace(item.Train),
			ExpectedTime: strings.TrimSpace(item.Expected),
			Status:       strings.TrimSpace(item.Current),
			Platform:     strings.TrimSpace(item.PF),
		}
		if entry == (BoardEntry{}) {
			continue
		}
		entry.StatusBucket = bucketStatus(entry.Status)
		entries = append(entries, entry)
	}

	board := &Board{
		StationCode:            st.Code,
		StationName:            st.Name,
		Aliases:                st.Aliases,
		RequestedWindowMinutes: nextMinutes,
		Source:                 c.boardURL,
		Summary:                summariseBoard(entries),
		Entries:                entries,
	}
	if reported, err := payload.NextMinutes.Int64(); err == nil {
		minutes := int(reported)
		board.ReportedWindowMinutes = &minutes
	}
	return board, nil
}

// bucketStatus maps a free-form board status onto a fixed bucket.
func bucketStatus(status string) string {
	if status == "" {
		return StatusUnknown
	}
	lower := strings.ToLower(status)
	switch {
	case strings.Contains(lower, "arriv"):
		return StatusArrived
	case strings.Contains(lower, "depart"), strings.Contains(lower, "left"):
		return StatusDeparted
	case strings.Contains(lower, "on time"), strings.Contains(lower, "right time"):
		return StatusOnTime
	case strings.Contains(lower, "late"), strings.Contains(lower, "delay"):
		return StatusDelayed
	case strings.Contains(lower, "cancel"):
		return StatusCancelled
	default:
		return StatusOther
	}
}

func summariseBoard(entries []BoardEntry) BoardSummary {
	counts := make(map[string]int)
	platformSet := make(map[string]struct{})
	for _, entry := range entries {
		counts[entry.StatusBucket]++
		if entry.Platform != "" {
			platformSet[entry.Platform] = struct{}{}
		}
	}
	platforms := make([]string, 0, len(platformSet))
	for pf := range platformSet {
		platforms = append(platforms, pf)
	}
	sort.Strings(platforms)
	return BoardSummary{
		TotalTrains:        len(entries),
		StatusBreakdown:    counts,
		PlatformsAnnounced: platforms,
	}
}
