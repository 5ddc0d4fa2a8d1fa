package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/fare"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/ferry"
)

// FareLookupInput defines the input schema for fare_lookup
type FareLookupInput struct {
	Mode        string  `json:"mode" jsonschema:"required" jsonschema_description:"Transport mode: road or metro"`
	VehicleType string  `json:"vehicle_type,omitempty" jsonschema_description:"Road mode: vehicle type, e.g. Auto Rickshaw or Black & Yellow Taxi (fuzzy matched)"`
	DistanceKM  float64 `json:"distance_km,omitempty" jsonschema_description:"Road mode: trip distance in kilometres"`
	FareVariant string  `json:"fare_variant,omitempty" jsonschema_description:"Road mode: old or revised tariff card (default: revised)"`
	TimePeriod  string  `json:"time_period,omitempty" jsonschema_description:"Road mode: normal or midnight band (default: normal)"`
	FromStation string  `json:"from_station,omitempty" jsonschema_description:"Metro mode: origin station name (fuzzy matched)"`
	ToStation   string  `json:"to_station,omitempty" jsonschema_description:"Metro mode: destination station name (fuzzy matched)"`
}

// FareLookupOutput defines the output schema for fare_lookup
type FareLookupOutput struct {
	Road  *fare.RoadFare   `json:"road,omitempty"`
	Metro *fare.MetroRoute `json:"metro,omitempty"`
}

func (h *Handler) FareLookup(ctx context.Context, req *mcp.CallToolRequest, input FareLookupInput) (*mcp.CallToolResult, FareLookupOutput, error) {
	switch strings.ToLower(input.Mode) {
	case "road":
		variant := fare.Variant(input.FareVariant)
		if variant == "" {
			variant = fare.VariantRevised
		}
		period := fare.TimePeriod(input.TimePeriod)
		if period == "" {
			period = fare.PeriodNormal
		}
		result, err := h.fares.RoadFare(input.VehicleType, input.DistanceKM, variant, period)
		if err != nil {
			return errorResult(fmt.Sprintf("fare lookup failed: %v", err)), FareLookupOutput{}, nil
		}
		text, ok := jsonResult(result)
		if !ok {
			return text, FareLookupOutput{}, nil
		}
		return text, FareLookupOutput{Road: result}, nil

	case "metro":
		result, err := h.fares.MetroFare(input.FromStation, input.ToStation)
		if err != nil {
			return errorResult(fmt.Sprintf("metro fare lookup failed: %v", err)), FareLookupOutput{}, nil
		}
		text, ok := jsonResult(result)
		if !ok {
			return text, FareLookupOutput{}, nil
		}
		return text, FareLookupOutput{Metro: result}, nil

	default:
		return errorResult(`mode must be "road" or "metro"`), FareLookupOutput{}, nil
	}
}

// FerryLookupInput defines the input schema for ferry_schedule_lookup
type FerryLookupInput struct {
	FromLocation string `json:"from_location,omitempty" jsonschema_description:"Filter by origin (case-insensitive substring)"`
	ToLocation   string `json:"to_location,omitempty" jsonschema_description:"Filter by destination (case-insensitive substring)"`
	AllowsBikes  *bool  `json:"allows_bikes,omitempty" jsonschema_description:"Filter by bike carriage: true for services that take bikes, false for those that do not"`
	Availability string `json:"availability,omitempty" jsonschema_description:"Filter by availability note (case-insensitive substring, e.g. 365 Days)"`
	SortBy       string `json:"sort_by,omitempty" jsonschema_description:"Sort field: from_location, to_location, frequency, or journey_time"`
	Limit        int    `json:"limit,omitempty" jsonschema_description:"Maximum trips to return (default: 10, max: 50)"`
	Offset       int    `json:"offset,omitempty" jsonschema_description:"Skip this many trips for pagination"`
}

// FerryLookupOutput defines the output schema for ferry_schedule_lookup
type FerryLookupOutput struct {
	Result *ferry.Result `json:"result"`
}

func (h *Handler) FerryLookup(ctx context.Context, req *mcp.CallToolRequest, input FerryLookupInput) (*mcp.CallToolResult, FerryLookupOutput, error) {
	result, err := h.ferries.Search(ferry.Query{
		FromLocation: input.FromLocation,
		ToLocation:   input.ToLocation,
		AllowsBikes:  input.AllowsBikes,
		Availability: input.Availability,
		SortBy:       input.SortBy,
		Limit:        input.Limit,
		Offset:       input.Offset,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("ferry lookup failed: %v", err)), FerryLookupOutput{}, nil
	}

	output := FerryLookupOutput{Result: result}
	if result.Metadata.Returned == 0 {
		return textResult("No ferry services matched the given filters."), output, nil
	}
	text, ok := jsonResult(result)
	if !ok {
		return text, FerryLookupOutput{}, nil
	}
	return text, output, nil
}
