package tool

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/habiliai/spoar/errors"
	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

type (
	MCPServer struct {
		Name    string
		Command string
		Args    []string
		Env     map[string]string
		// Tools limits the exposed tools. Empty exposes every tool.
		Tools []string
	}

	// mcpCaller is the part of an MCP client a registered tool calls into.
	mcpCaller interface {
		CallTool(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error)
	}
)

// RegisterMCPServer starts the server over stdio, registers the tools it
// lists and ties the client's lifetime to the registry.
func RegisterMCPServer(ctx context.Context, r *Registry, server MCPServer) error {
	envs := make([]string, 0, len(server.Env))
	for key, val := range server.Env {
		envs = append(envs, fmt.Sprintf("%s=%s", key, val))
	}

	c, err := mcpclient.NewStdioMCPClient(server.Command, envs, server.Args...)
	if err != nil {
		return errors.Wrapf(err, "failed to create MCP client for %s", server.Name)
	}
	if stderr, ok := mcpclient.GetStderr(c); ok {
		go drainStderr(r.logger, server.Name, stderr)
	}

	initRequest := mcpgo.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcpgo.Implementation{Name: "spoar", Version: "0.1.0"}
	if _, err := c.Initialize(ctx, initRequest); err != nil {
		_ = c.Close()
		return errors.Wrapf(err, "failed to initialize MCP server %s", server.Name)
	}

	listed, err := c.ListTools(ctx, mcpgo.ListToolsRequest{})
	if err != nil {
		_ = c.Close()
		return errors.Wrapf(err, "failed to list tools of %s", server.Name)
	}

	r.AddCloser(c)
	return registerMCPTools(r, server, listed.Tools, c)
}

func registerMCPTools(r *Registry, server MCPServer, tools []mcpgo.Tool, caller mcpCaller) error {
	for _, t := range tools {
		if len(server.Tools) > 0 && !contains(server.Tools, t.Name) {
			continue
		}
		if r.Has(t.Name) {
			r.logger.Info("tool already registered", "tool", t.Name, "server", server.Name)
			continue
		}

		args := make([]string, 0, len(t.InputSchema.Properties))
		for name := range t.InputSchema.Properties {
			args = append(args, name)
		}
		sort.Strings(args)

		description := t.Description
		if len(args) > 0 {
			description = fmt.Sprintf("%s Args: %s.", strings.TrimSpace(description), strings.Join(args, ", "))
		}

		if err := r.add(Tool{
			Name:        t.Name,
			Description: description,
			Args:        args,
			Capability:  mcpCapability(caller, t.Name),
		}); err != nil {
			return err
		}
	}
	return nil
}

func mcpCapability(caller mcpCaller, name string) Capability {
	return func(ctx context.Context, args map[string]any) (string, error) {
		req := mcpgo.CallToolRequest{
			Request: mcpgo.Request{
				Method: "tools/call",
			},
		}
		req.Params.Name = name
		req.Params.Arguments = args

		res, err := caller.CallTool(ctx, req)
		if err != nil {
			return "", errors.Wrapf(err, "failed to call MCP tool %s", name)
		}

		text := mcpText(res)
		if res.IsError {
			return "", errors.New(text)
		}
		return text, nil
	}
}

func mcpText(res *mcpgo.CallToolResult) string {
	if res == nil {
		return ""
	}

	parts := make([]string, 0, len(res.Content))
	for _, c := range res.Content {
		switch v := c.(type) {
		case mcpgo.TextContent:
			parts = append(parts, v.Text)
		case *mcpgo.TextContent:
			parts = append(parts, v.Text)
		default:
			parts = append(parts, fmt.Sprintf("[non-text content: %T]", c))
		}
	}
	return strings.Join(parts, "\n")
}

func drainStderr(logger *slog.Logger, serverName string, stderr io.Reader) {
	if stderr == nil {
		return
	}

	rd := bufio.NewReader(stderr)
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			if err != io.EOF && !strings.Contains(err.Error(), "already closed") {
				logger.Error("failed to read MCP stderr", "err", err, "server", serverName)
			}
			return
		}
		logger.Warn("[MCP] "+strings.TrimSpace(line), "server", serverName)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
