// Package mcptool imports tools from MCP servers into the tool registry.
// Each imported tool becomes a regular registry entry whose handler proxies
// the call over the server session.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"

	"github.com/loomworks/loom/internal/domain/tool"
)

// ServerConfig describes one MCP server to import tools from. Exactly one of
// Command or URL must be set. Transport selects the HTTP flavor for URL
// servers: "streamable" (default) or "sse".
type ServerConfig struct {
	Name      string `yaml:"name"`
	Command   string `yaml:"command,omitempty"`
	URL       string `yaml:"url,omitempty"`
	Transport string `yaml:"transport,omitempty"`
}

type serversFile struct {
	Servers []ServerConfig `yaml:"servers"`
}

// LoadServers reads the MCP server list from a YAML file.
func LoadServers(path string) ([]ServerConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mcp servers: read %s: %w", path, err)
	}
	var doc serversFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("mcp servers: parse %s: %w", path, err)
	}
	for i, s := range doc.Servers {
		if s.Name == "" {
			return nil, fmt.Errorf("mcp servers: server %d has no name", i)
		}
		if (s.Command == "") == (s.URL == "") {
			return nil, fmt.Errorf("mcp servers: %q must set exactly one of command or url", s.Name)
		}
	}
	return doc.Servers, nil
}

// Importer connects to MCP servers and registers their tools. Sessions stay
// open for the life of the process; imported handlers call through them.
type Importer struct {
	client   *mcp.Client
	sessions []*mcp.ClientSession
}

// NewImporter creates an importer with this process's client identity.
func NewImporter() *Importer {
	return &Importer{
		client: mcp.NewClient(&mcp.Implementation{Name: "loom", Version: "1.0.0"}, nil),
	}
}

// ImportAll connects to every configured server and registers its tools as
// "<server>_<tool>". A server that fails to connect fails the whole import —
// a missing tool at plan time is worse than a loud startup error.
func (im *Importer) ImportAll(ctx context.Context, servers []ServerConfig, reg *tool.Registry) (int, error) {
	total := 0
	for _, cfg := range servers {
		n, err := im.importServer(ctx, cfg, reg)
		if err != nil {
			return total, fmt.Errorf("mcp import %q: %w", cfg.Name, err)
		}
		total += n
	}
	return total, nil
}

// Close terminates all open sessions.
func (im *Importer) Close() error {
	var firstErr error
	for _, s := range im.sessions {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (im *Importer) importServer(ctx context.Context, cfg ServerConfig, reg *tool.Registry) (int, error) {
	transport, err := buildTransport(cfg)
	if err != nil {
		return 0, err
	}

	session, err := im.client.Connect(ctx, transport, nil)
	if err != nil {
		return 0, fmt.Errorf("connect: %w", err)
	}
	im.sessions = append(im.sessions, session)

	count := 0
	var cursor string
	for {
		res, err := session.ListTools(ctx, &mcp.ListToolsParams{Cursor: cursor})
		if err != nil {
			return count, fmt.Errorf("list tools: %w", err)
		}
		for _, t := range res.Tools {
			if err := reg.Register(remoteDescriptor(cfg.Name, t, session)); err != nil {
				return count, fmt.Errorf("register %s: %w", t.Name, err)
			}
			count++
		}
		if res.NextCursor == "" {
			break
		}
		cursor = res.NextCursor
	}
	return count, nil
}

func buildTransport(cfg ServerConfig) (mcp.Transport, error) {
	if cfg.Command != "" {
		parts := strings.Fields(cfg.Command)
		cmd := exec.Command(parts[0], parts[1:]...)
		return &mcp.CommandTransport{Command: cmd}, nil
	}
	switch cfg.Transport {
	case "", "streamable":
		return &mcp.StreamableClientTransport{Endpoint: cfg.URL}, nil
	case "sse":
		return &mcp.SSEClientTransport{Endpoint: cfg.URL}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

// remoteDescriptor wraps one remote tool as a registry entry. Remote calls
// are network-bound, so handlers are marked Blocking.
func remoteDescriptor(server string, t *mcp.Tool, session *mcp.ClientSession) tool.Descriptor {
	name := server + "_" + t.Name
	return tool.Descriptor{
		Name:        name,
		Description: t.Description,
		Parameters:  schemaToMap(t.InputSchema),
		Blocking:    true,
		Handler: tool.HandlerFunc(func(ctx context.Context, args map[string]any) (any, error) {
			res, err := session.CallTool(ctx, &mcp.CallToolParams{
				Name:      t.Name,
				Arguments: args,
			})
			if err != nil {
				return nil, fmt.Errorf("mcp call %s: %w", name, err)
			}
			out := flattenResult(res)
			if res.IsError {
				return nil, fmt.Errorf("mcp call %s: %v", name, out)
			}
			return out, nil
		}),
	}
}

// schemaToMap converts the SDK's schema type into the registry's plain map
// form by round-tripping through JSON.
func schemaToMap(schema any) map[string]any {
	if schema == nil {
		return map[string]any{"type": "object"}
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{"type": "object"}
	}
	return m
}

// flattenResult prefers structured output, falling back to concatenated text
// content.
func flattenResult(res *mcp.CallToolResult) any {
	if res.StructuredContent != nil {
		return res.StructuredContent
	}
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
