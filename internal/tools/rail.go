package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/railradar"
)

// StationBoardInput defines the input schema for station_board_lookup
type StationBoardInput struct {
	Station     string `json:"station,omitempty" jsonschema_description:"Station code, name or alias, e.g. DR, Dadar, CSMT, VT (default: DR)"`
	NextMinutes int    `json:"next_minutes,omitempty" jsonschema_description:"Look-ahead window in minutes (default: 120)"`
}

// StationBoardOutput defines the output schema for station_board_lookup
type StationBoardOutput struct {
	Board *railradar.Board `json:"board"`
}

func (h *Handler) StationBoard(ctx context.Context, req *mcp.CallToolRequest, input StationBoardInput) (*mcp.CallToolResult, StationBoardOutput, error) {
	station := input.Station
	if station == "" {
		station = "DR"
	}
	nextMinutes := input.NextMinutes
	if nextMinutes == 0 {
		nextMinutes = 120
	}

	board, err := h.rail.StationBoard(ctx, station, nextMinutes)
	if err != nil {
		if errors.Is(err, railradar.ErrUnknownStation) {
			return errorResult(err.Error()), StationBoardOutput{}, nil
		}
		return errorResult(fmt.Sprintf("station board lookup failed: %v", err)), StationBoardOutput{}, nil
	}

	text, ok := jsonResult(board)
	if !ok {
		return text, StationBoardOutput{}, nil
	}
	return text, StationBoardOutput{Board: board}, nil
}

// LocalTrainStatusInput defines the input schema for mumbai_local_train_status
type LocalTrainStatusInput struct {
	TrainNumber         string `json:"train_number,omitempty" jsonschema_description:"Exact train number, e.g. 96214"`
	TrainNameQuery      string `json:"train_name_query,omitempty" jsonschema_description:"Case-insensitive substring of the train name"`
	CurrentStationQuery string `json:"current_station_query,omitempty" jsonschema_description:"Case-insensitive substring of the current station"`
}

// LocalTrainStatusOutput defines the output schema for mumbai_local_train_status
type LocalTrainStatusOutput struct {
	Status *railradar.TrainStatus `json:"status"`
}

func (h *Handler) LocalTrainStatus(ctx context.Context, req *mcp.CallToolRequest, input LocalTrainStatusInput) (*mcp.CallToolResult, LocalTrainStatusOutput, error) {
	status, err := h.rail.LiveTrains(ctx, railradar.TrainFilter{
		TrainNumber:         input.TrainNumber,
		TrainNameQuery:      input.TrainNameQuery,
		CurrentStationQuery: input.CurrentStationQuery,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("local train lookup failed: %v", err)), LocalTrainStatusOutput{}, nil
	}

	if status.TotalFound == 0 {
		return textResult("No live Mumbai local trains matched the given filters."), LocalTrainStatusOutput{Status: status}, nil
	}
	text, ok := jsonResult(status)
	if !ok {
		return text, LocalTrainStatusOutput{}, nil
	}
	return text, LocalTrainStatusOutput{Status: status}, nil
}
