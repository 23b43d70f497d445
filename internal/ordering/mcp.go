package ordering

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Vatsa10/Zomatooo/internal/domain"
	"github.com/Vatsa10/Zomatooo/internal/logging"
	"github.com/Vatsa10/Zomatooo/internal/version"
)

// MCPService is the production Service backed by the mcp-go client over
// streamable HTTP.
type MCPService struct {
	client *mcpclient.Client
	log    *logging.Logger
}

// Connect dials the MCP endpoint and runs the protocol handshake.
// A non-empty bearer token is attached to every request.
func Connect(ctx context.Context, endpoint, bearerToken string, log *logging.Logger) (*MCPService, error) {
	var opts []transport.StreamableHTTPCOption
	if bearerToken != "" {
		opts = append(opts, transport.WithHTTPHeaders(map[string]string{
			"Authorization": "Bearer " + bearerToken,
		}))
	}

	c, err := mcpclient.NewStreamableHttpClient(endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating MCP client: %w", err)
	}

	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting MCP transport: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "zomatooo",
		Version: version.Version,
	}

	info, err := c.Initialize(ctx, initReq)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("MCP initialize: %w", err)
	}

	log.Info().
		Str("endpoint", endpoint).
		Str("server", info.ServerInfo.Name).
		Str("serverVersion", info.ServerInfo.Version).
		Msg("connected to ordering service")

	return &MCPService{client: c, log: log.Sub("ordering")}, nil
}

// Tools fetches the advertised tool catalog.
func (s *MCPService) Tools(ctx context.Context) ([]domain.ToolDescriptor, error) {
	res, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}

	descriptors := make([]domain.ToolDescriptor, 0, len(res.Tools))
	for _, t := range res.Tools {
		raw, err := json.Marshal(t.InputSchema)
		if err != nil {
			s.log.Warn().Str("tool", t.Name).Err(err).Msg("unreadable input schema, skipping tool")
			continue
		}
		var schemaMap map[string]any
		if err := json.Unmarshal(raw, &schemaMap); err != nil {
			s.log.Warn().Str("tool", t.Name).Err(err).Msg("input schema is not a mapping, skipping tool")
			continue
		}
		descriptors = append(descriptors, domain.ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schemaMap,
		})
	}
	return descriptors, nil
}

// Call invokes one tool and decodes the response content.
func (s *MCPService) Call(ctx context.Context, name string, args map[string]any) (*Result, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := s.client.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("calling tool %s: %w", name, err)
	}

	var b strings.Builder
	for _, item := range res.Content {
		switch c := item.(type) {
		case mcp.TextContent:
			b.WriteString(c.Text)
		case *mcp.TextContent:
			b.WriteString(c.Text)
		}
	}

	text := b.String()
	if text == "" {
		text = "Success."
	}
	return decodeResult(text, res.IsError), nil
}

// Close shuts down the MCP connection.
func (s *MCPService) Close() error {
	return s.client.Close()
}
