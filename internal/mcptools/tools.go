// Package mcptools exposes the evidence pipeline as MCP tools so assistants can pull
// first-aid context without going through the HTTP API.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/Ayash-Bera/aidline/internal/services"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

const (
	ServerName    = "aidline"
	ServerVersion = "1.0.0"

	maxQueryLength = 2000
)

// Pipeline is the part of the evidence service the tools call.
type Pipeline interface {
	Classify(query string) models.ConditionTag
	Build(ctx context.Context, query string) (models.EvidenceContext, services.BuildStats)
}

type Tools struct {
	service Pipeline
	logger  *logrus.Logger
}

func New(service Pipeline, logger *logrus.Logger) *Tools {
	return &Tools{service: service, logger: logger}
}

// NewServer registers every tool on a fresh MCP server.
func (t *Tools) NewServer() *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(mcp.NewTool("classify_condition",
		mcp.WithDescription("Map a first-aid question to one condition category"),
		mcp.WithString("query", mcp.Required(), mcp.Description("The user's question")),
	), t.HandleClassify)

	s.AddTool(mcp.NewTool("build_evidence_context",
		mcp.WithDescription("Retrieve, filter and assemble cited first-aid evidence for a question"),
		mcp.WithString("query", mcp.Required(), mcp.Description("The user's question")),
	), t.HandleEvidence)

	return s
}

func (t *Tools) HandleClassify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, errResult := queryArg(req)
	if errResult != nil {
		return errResult, nil
	}

	condition := t.service.Classify(query)
	return jsonResult(map[string]interface{}{
		"query":     query,
		"condition": condition,
		"emergency": condition.IsEmergency(),
	})
}

func (t *Tools) HandleEvidence(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, errResult := queryArg(req)
	if errResult != nil {
		return errResult, nil
	}

	ec, stats := t.service.Build(ctx, query)
	t.logger.WithFields(logrus.Fields{
		"condition": ec.Condition,
		"passages":  len(ec.Passages),
		"cache_hit": stats.CacheHit,
	}).Info("MCP evidence request served")

	return jsonResult(ec)
}

func queryArg(req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	query, err := req.RequireString("query")
	if err != nil {
		return "", mcp.NewToolResultError(err.Error())
	}
	if len(query) > maxQueryLength {
		return "", mcp.NewToolResultError(fmt.Sprintf("query exceeds %d characters", maxQueryLength))
	}
	return query, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
