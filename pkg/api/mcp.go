package api

import (
	"log/slog"

	"github.com/hazyhaar/namestat/pkg/kit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the namestat MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, d Deps, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	registerFetchNames(srv, d, logger)
	registerTrending(srv, d, logger)
}

func registerFetchNames(srv *server.MCPServer, d Deps, logger *slog.Logger) {
	tool := mcp.NewTool("fetch_names",
		mcp.WithDescription("Fetch Norwegian first-name statistics for one gender, with origin, meaning, popularity (1-100), length and categories per name. Falls back to sample data when the live source is unavailable."),
		mcp.WithString("gender", mcp.Required(), mcp.Description("girl or boy")),
		mcp.WithString("years", mcp.Description("Comma-separated years (e.g. 2022,2023). Defaults to the configured range.")),
	)
	ep := kit.Chain(kit.RequestID(), kit.Logging(logger, "fetch_names"))(namesEndpoint(d))
	kit.RegisterMCPTool(srv, tool, ep, decodeNames)
}

func registerTrending(srv *server.MCPServer, d Deps, logger *slog.Logger) {
	tool := mcp.NewTool("trending",
		mcp.WithDescription("Per-year counts and rankings of the most popular names for one gender."),
		mcp.WithString("gender", mcp.Required(), mcp.Description("girl or boy")),
		mcp.WithString("years", mcp.Description("Comma-separated years")),
		mcp.WithNumber("top", mcp.Description("Ranking depth (default 10, max 100)")),
	)
	ep := kit.Chain(kit.RequestID(), kit.Logging(logger, "trending"))(trendingEndpoint(d))
	kit.RegisterMCPTool(srv, tool, ep, decodeTrending)
}

func decodeNames(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	args := req.GetArguments()
	gender, _ := args["gender"].(string)
	years, _ := args["years"].(string)
	return &kit.MCPDecodeResult{Request: &namesReq{Gender: gender, Years: splitList(years)}}, nil
}

func decodeTrending(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	args := req.GetArguments()
	gender, _ := args["gender"].(string)
	years, _ := args["years"].(string)
	r := &trendingReq{Gender: gender, Years: splitList(years)}
	if top, ok := args["top"].(float64); ok {
		r.Top = int(top)
	}
	return &kit.MCPDecodeResult{Request: r}, nil
}
