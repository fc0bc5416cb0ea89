package tool

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/habiliai/spoar/errors"
	"github.com/habiliai/spoar/internal/mylog"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMCP struct {
	requests []mcpgo.CallToolRequest
	result   *mcpgo.CallToolResult
	err      error
}

func (f *fakeMCP) CallTool(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	f.requests = append(f.requests, req)
	return f.result, f.err
}

func TestRegisterMCPTools(t *testing.T) {
	r := NewRegistry(mylog.Discard())
	caller := &fakeMCP{
		result: &mcpgo.CallToolResult{
			Content: []mcpgo.Content{
				mcpgo.NewTextContent("file1.txt"),
				mcpgo.NewTextContent("file2.txt"),
			},
		},
	}

	server := MCPServer{Name: "filesystem", Tools: []string{"list_directory", "read_file"}}
	tools := []mcpgo.Tool{
		{
			Name:        "list_directory",
			Description: "List a directory.",
			InputSchema: mcpgo.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{"path": map[string]any{"type": "string"}},
			},
		},
		{Name: "read_file", Description: "Read a file."},
		{Name: "delete_file", Description: "Delete a file."},
	}
	require.NoError(t, registerMCPTools(r, server, tools, caller))

	assert.Equal(t, []string{"list_directory", "read_file"}, r.Names())
	assert.Equal(t, "- list_directory: List a directory. Args: path.\n- read_file: Read a file.", r.DescribeAll())

	out := r.Invoke(context.Background(), "list_directory", map[string]any{"path": "."})
	assert.Equal(t, "file1.txt\nfile2.txt", out)
	require.Len(t, caller.requests, 1)
	assert.Equal(t, "tools/call", caller.requests[0].Method)
	assert.Equal(t, "list_directory", caller.requests[0].Params.Name)

	caller.result = &mcpgo.CallToolResult{
		Content: []mcpgo.Content{mcpgo.NewTextContent("permission denied")},
		IsError: true,
	}
	assert.Equal(t, "ERROR: permission denied", r.Invoke(context.Background(), "read_file", nil))

	caller.err = errors.New("broken pipe")
	assert.Contains(t, r.Invoke(context.Background(), "read_file", nil), "broken pipe")

	// a second server exposing the same tool does not replace it
	require.NoError(t, registerMCPTools(r, MCPServer{Name: "other"}, tools[:1], caller))
	assert.Len(t, r.Names(), 2)
}

func TestDrainStderr(t *testing.T) {
	var buf bytes.Buffer
	logger := mylog.NewLoggerTo(&buf, "debug", "json")

	drainStderr(logger, "filesystem", strings.NewReader("server started\nlistening on stdio\n"))

	out := buf.String()
	assert.Contains(t, out, `"msg":"[MCP] server started"`)
	assert.Contains(t, out, `"msg":"[MCP] listening on stdio"`)
	assert.Contains(t, out, `"server":"filesystem"`)
	assert.NotContains(t, out, "failed to read MCP stderr")

	buf.Reset()
	drainStderr(logger, "filesystem", nil)
	assert.Empty(t, buf.String())
}
