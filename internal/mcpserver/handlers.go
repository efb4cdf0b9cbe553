package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/trove/internal/fill"
	"github.com/mark3labs/trove/internal/template"
	"github.com/mark3labs/trove/internal/trove"
)

// commandView is a command as returned by the tools.
type commandView struct {
	*trove.Command
	Parameters int `json:"parameters"`
}

func (s *Server) view(cmd *trove.Command) commandView {
	return commandView{Command: cmd, Parameters: template.Count(cmd.Command, s.tokens.Start)}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// stringArg returns args[key] when it is a string.
func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// stringsArg returns args[key] as a string slice. mcp-go decodes JSON
// arrays as []any.
func stringsArg(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("'%s' is not an array", key)
	}
	out := make([]string, 0, len(arr))
	for i, item := range arr {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("'%s' item %d is not a string", key, i)
		}
		out = append(out, str)
	}
	return out, nil
}

func (s *Server) namespaceArg(args map[string]any) string {
	if ns := stringArg(args, "namespace"); ns != "" {
		return ns
	}
	return s.namespace
}

func (s *Server) handleListCommands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	cmds, err := s.store.List(ctx, trove.ListParams{
		Namespace: stringArg(args, "namespace"),
		Tag:       stringArg(args, "tag"),
		Query:     stringArg(args, "query"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list commands: %v", err)), nil
	}

	views := make([]commandView, 0, len(cmds))
	for _, c := range cmds {
		views = append(views, s.view(c))
	}
	return jsonResult(views)
}

func (s *Server) handleGetCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name := stringArg(args, "name")
	if name == "" {
		return mcp.NewToolResultError("missing 'name' parameter"), nil
	}

	cmd, err := s.store.Get(ctx, s.namespaceArg(args), name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.view(cmd))
}

func (s *Server) handleAddCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}

	tags, err := stringsArg(args, "tags")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cmd, err := s.store.Add(ctx, trove.AddParams{
		Name:        stringArg(args, "name"),
		Namespace:   s.namespaceArg(args),
		Command:     stringArg(args, "command"),
		Description: stringArg(args, "description"),
		Tags:        tags,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.view(cmd))
}

func (s *Server) handleFillCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name := stringArg(args, "name")
	if name == "" {
		return mcp.NewToolResultError("missing 'name' parameter"), nil
	}

	values, err := stringsArg(args, "values")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cmd, err := s.store.Get(ctx, s.namespaceArg(args), name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved, err := fill.Resolve(cmd.Command, s.tokens, values)
	switch {
	case errors.Is(err, fill.ErrMissingValue), errors.Is(err, fill.ErrUnusedValues):
		return mcp.NewToolResultError(fmt.Sprintf("%v (command has %d parameters)",
			err, template.Count(cmd.Command, s.tokens.Start))), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("failed to fill command: %v", err)), nil
	}
	return mcp.NewToolResultText(resolved), nil
}

func (s *Server) handleCountParameters(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command := stringArg(request.GetArguments(), "command")
	return jsonResult(map[string]any{
		"parameters": template.Count(command, s.tokens.Start),
		"segments":   template.SplitInclusive(command, " "),
	})
}
