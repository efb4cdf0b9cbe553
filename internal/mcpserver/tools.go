package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var stringItems = map[string]any{"type": "string"}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list-commands",
			mcp.WithDescription("List stored command templates, optionally filtered"),
			mcp.WithString("namespace", mcp.Description("Only list commands of this namespace")),
			mcp.WithString("tag", mcp.Description("Only list commands carrying this tag")),
			mcp.WithString("query", mcp.Description("Case-insensitive text to search for")),
		),
		s.handleListCommands,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get-command",
			mcp.WithDescription("Get a stored command template and its parameter count"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Command name")),
			mcp.WithString("namespace", mcp.Description("Namespace (default namespace when omitted)")),
		),
		s.handleGetCommand,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("add-command",
			mcp.WithDescription("Store a new command template"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Command name")),
			mcp.WithString("command", mcp.Required(), mcp.Description("Template text with parameter tokens")),
			mcp.WithString("namespace", mcp.Description("Namespace (default namespace when omitted)")),
			mcp.WithString("description", mcp.Description("Markdown description")),
			mcp.WithArray("tags", mcp.Description("Tags"), mcp.Items(stringItems)),
		),
		s.handleAddCommand,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("fill-command",
			mcp.WithDescription("Resolve a stored command template with one value per parameter, in order"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Command name")),
			mcp.WithString("namespace", mcp.Description("Namespace (default namespace when omitted)")),
			mcp.WithArray("values", mcp.Required(), mcp.Description("Parameter values, first parameter first"), mcp.Items(stringItems)),
		),
		s.handleFillCommand,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("count-parameters",
			mcp.WithDescription("Count the parameters of a template text"),
			mcp.WithString("command", mcp.Required(), mcp.Description("Template text")),
		),
		s.handleCountParameters,
	)
}
