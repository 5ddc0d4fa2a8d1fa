package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/fare"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/ferry"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/flightradar"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/penalty"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/railradar"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/reddit"
)

// Handler holds dependencies for tool handlers
type Handler struct {
	penalties *penalty.Store
	fares     *fare.Service
	ferries   *ferry.Service
	rail      *railradar.Client
	flights   *flightradar.Client
	reddit    *reddit.Client
}

// Deps collects the services the tools are built on.
type Deps struct {
	Penalties *penalty.Store
	Fares     *fare.Service
	Ferries   *ferry.Service
	Rail      *railradar.Client
	Flights   *flightradar.Client
	Reddit    *reddit.Client
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

func jsonResult(v any) (*mcp.CallToolResult, bool) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to format response: %v", err)), false
	}
	return textResult(string(encoded)), true
}

// Register adds all travel assistant tools to the MCP server
func Register(server *mcp.Server, deps Deps) {
	h := &Handler{
		penalties: deps.Penalties,
		fares:     deps.Fares,
		ferries:   deps.Ferries,
		rail:      deps.Rail,
		flights:   deps.Flights,
		reddit:    deps.Reddit,
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "penalty_semantic_lookup",
		Description: "Semantic search over Mumbai traffic and railway penalty records",
	}, h.PenaltyLookup)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "fare_lookup",
		Description: "Official fares for Mumbai road transport (auto, taxi, cool cab) and metro journeys",
	}, h.FareLookup)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ferry_schedule_lookup",
		Description: "Timetable of Mumbai ferry and RoRo services with filtering and sorting",
	}, h.FerryLookup)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "station_board_lookup",
		Description: "Live train board for major Mumbai railway stations",
	}, h.StationBoard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "mumbai_local_train_status",
		Description: "Live status of Mumbai suburban (local) EMU trains",
	}, h.LocalTrainStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "flight_tracker_lookup",
		Description: "Live aircraft positions from FlightRadar24, filterable by bounds, zone or point",
	}, h.FlightTracker)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "airport_schedule_lookup",
		Description: "Arrivals and departures for Mumbai's Chhatrapati Shivaji Maharaj International Airport (VABB)",
	}, h.AirportSchedule)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "traffic_sentiment_search",
		Description: "Recent Mumbai traffic chatter from Reddit with a keyword sentiment summary",
	}, h.TrafficSentiment)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "hello",
		Description: "Simple liveness check that greets the caller",
	}, h.Hello)
}

// PenaltyLookupInput defines the input schema for penalty_semantic_lookup
type PenaltyLookupInput struct {
	Query    string `json:"query" jsonschema:"required" jsonschema_description:"Free-text description of the offence to look up"`
	TopK     int    `json:"top_k,omitempty" jsonschema_description:"Maximum number of matches (default: 5)"`
	Category string `json:"category,omitempty" jsonschema_description:"Restrict to a category: traffic, railway, or railway-other"`
}

// PenaltyLookupOutput defines the output schema for penalty_semantic_lookup
type PenaltyLookupOutput struct {
	Result *penalty.Result `json:"result"`
}

func (h *Handler) PenaltyLookup(ctx context.Context, req *mcp.CallToolRequest, input PenaltyLookupInput) (*mcp.CallToolResult, PenaltyLookupOutput, error) {
	topK := input.TopK
	if topK == 0 {
		topK = 5
	}

	result, err := h.penalties.Search(ctx, input.Query, topK, input.Category)
	if err != nil {
		if errors.Is(err, penalty.ErrInvalidInput) {
			return errorResult(err.Error()), PenaltyLookupOutput{}, nil
		}
		return errorResult(fmt.Sprintf("penalty lookup failed: %v", err)), PenaltyLookupOutput{}, nil
	}

	text, ok := jsonResult(result)
	if !ok {
		return text, PenaltyLookupOutput{}, nil
	}
	return text, PenaltyLookupOutput{Result: result}, nil
}

// HelloInput defines the input schema for hello
type HelloInput struct {
	Name string `json:"name,omitempty" jsonschema_description:"Name to greet (default: traveller)"`
}

// HelloOutput defines the output schema for hello
type HelloOutput struct {
	Message string `json:"message"`
}

func (h *Handler) Hello(ctx context.Context, req *mcp.CallToolRequest, input HelloInput) (*mcp.CallToolResult, HelloOutput, error) {
	name := input.Name
	if name == "" {
		name = "traveller"
	}
	msg := fmt.Sprintf("Hello, %s! The Mumbai travel assistant is up.", name)
	return textResult(msg), HelloOutput{Message: msg}, nil
}
