package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/xful-bep/crysknife/internal/analyzer"
	"github.com/xful-bep/crysknife/internal/audit"
	"github.com/xful-bep/crysknife/internal/log"
)

func newMcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the Model Context Protocol (MCP) server",
		Long: `Starts a JSON-RPC server implementing the Model Context Protocol (MCP)
over stdio. This allows AI assistants to use crysknife as a tool.`,
		Args: cobra.NoArgs,
		RunE: runMcpServer,
	}
}

// mcpTools binds the tool handlers to one runner.
type mcpTools struct {
	runner *audit.Runner
}

func runMcpServer(cmd *cobra.Command, args []string) error {
	runner, err := audit.NewRunner(auditConfig(), log.Quiet())
	if err != nil {
		return err
	}
	if err := server.ServeStdio(newMCPServer(runner)); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

func newMCPServer(runner *audit.Runner) *server.MCPServer {
	s := server.NewMCPServer(
		"crysknife",
		version,
		server.WithLogging(),
	)
	tools := &mcpTools{runner: runner}

	analyzeTool := mcp.NewTool("analyze",
		mcp.WithDescription("Check a GitHub account, npm account, npm package, leaked JSON, base64 payload or package.json for Shai-Hulud compromise. Returns the sanitized report as JSON."),
		mcp.WithString("kind",
			mcp.Description("Analysis kind: "+kindList()),
			mcp.Required(),
		),
		mcp.WithString("query",
			mcp.Description("Account name, package spec (name@version), or the JSON/base64 content itself"),
			mcp.Required(),
		),
	)
	s.AddTool(analyzeTool, tools.handleAnalyze)

	checkTool := mcp.NewTool("check_package",
		mcp.WithDescription("Look up an npm package in the infected package registry without network access"),
		mcp.WithString("name",
			mcp.Description("The package name, e.g. '@ctrl/tinycolor'"),
			mcp.Required(),
		),
		mcp.WithString("version",
			mcp.Description("Optional exact version to check"),
		),
	)
	s.AddTool(checkTool, tools.handleCheckPackage)

	return s
}

func toolArgs(request mcp.CallToolRequest) (map[string]interface{}, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("arguments must be a map")
	}
	return args, nil
}

func (t *mcpTools) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kindName, ok := args["kind"].(string)
	if !ok {
		return mcp.NewToolResultError("kind must be a string"), nil
	}
	query, ok := args["query"].(string)
	if !ok {
		return mcp.NewToolResultError("query must be a string"), nil
	}
	kind, err := analyzer.ParseKind(kindName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, err := t.runner.Run(ctx, kind, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Analysis failed: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (t *mcpTools) handleCheckPackage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name must be a non-empty string"), nil
	}
	pkgVersion, _ := args["version"].(string)

	reg := t.runner.Registry()
	check := reg.IsPackageInfected(name, pkgVersion)
	result := map[string]any{
		"name":     name,
		"version":  pkgVersion,
		"listed":   reg.Has(name),
		"infected": check.Infected,
		"versions": check.InfectedVersions,
		"exactHit": check.SpecificVersion,
		"category": "",
	}
	if p, ok := reg.Lookup(name); ok {
		result["category"] = p.Category
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
