package core

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikimd_tool_calls_total",
			Help: "Number of MCP tool calls.",
		},
		[]string{
			"tool",
		},
	)
	metricToolErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikimd_tool_errors_total",
			Help: "Number of MCP tool calls that returned an error.",
		},
		[]string{
			"tool",
		},
	)
)

// instrument counts calls and errors of a tool handler.
func instrument[In any](name string, h func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error)) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args In) (*mcp.CallToolResult, any, error) {
		metricToolCalls.WithLabelValues(name).Inc()
		res, out, err := h(ctx, req, args)
		if err != nil {
			metricToolErrors.WithLabelValues(name).Inc()
		}
		return res, out, err
	}
}
