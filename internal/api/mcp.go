package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/autoreply/internal/analysis"
	"github.com/kalambet/autoreply/internal/conversation"
	"github.com/kalambet/autoreply/internal/profile"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Replier  Replier
	Analyzer *analysis.Analyzer
	Profile  *profile.Manager
}

// NewMCPServer creates an MCP server with the autoreply tools and resources registered.
func NewMCPServer(deps MCPDeps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"autoreply",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("autoreply drafts short replies to chat messages in the account owner's own style."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("generate_reply",
			mcp.WithDescription("Draft a reply to an incoming chat message, matching the owner's communication style."),
			mcp.WithString("message", mcp.Description("The incoming message text"), mcp.Required()),
			mcp.WithString("contact", mcp.Description("Display name of the sender"), mcp.Required()),
			mcp.WithString("history", mcp.Description("JSON array of {text, fromMe} objects, oldest first")),
		),
		mcpGenerateReply(deps),
	)

	s.AddTool(
		mcp.NewTool("analyze_message",
			mcp.WithDescription("Classify an incoming message by urgency, sentiment and question type."),
			mcp.WithString("message", mcp.Description("The message text"), mcp.Required()),
		),
		mcpAnalyzeMessage(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"style://profile",
			"Communication Style",
			mcp.WithResourceDescription("Learned communication style of the account owner as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfile(deps),
	)

	return s
}

func mcpGenerateReply(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}
		contact, err := req.RequireString("contact")
		if err != nil {
			return mcpError("contact is required"), nil
		}

		history, err := conversation.ParseHistory(req.GetString("history", ""))
		if err != nil {
			return mcpError(fmt.Sprintf("invalid history JSON: %v", err)), nil
		}

		res := deps.Replier.Generate(ctx, message, contact, history)
		return mcpText(res.Text), nil
	}
}

func mcpAnalyzeMessage(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}

		b, err := json.Marshal(deps.Analyzer.Analyze(message))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal analysis: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceProfile(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		p, err := deps.Profile.GetProfile()
		if err != nil {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}

		b, err := json.Marshal(profileResponse{Profile: p, Summary: profile.Summarize(p)})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
