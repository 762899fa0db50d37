package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"autogenmcp/gateway"
	logger "autogenmcp/logger/v2"
	"autogenmcp/schema"
)

// ServerName and ServerVersion identify the gateway in initialize
// responses and health pages.
const (
	ServerName      = "autogen-mcp-gateway"
	ServerVersion   = "1.0.0"
	protocolVersion = "2024-11-05"
)

// Router maps MCP methods onto the gateway service. It is shared by
// every transport; transports only frame bytes.
type Router struct {
	svc *gateway.Service
	log logger.Logger
}

// NewRouter creates a router over svc.
func NewRouter(svc *gateway.Service, log logger.Logger) *Router {
	return &Router{svc: svc, log: log}
}

// Handle dispatches one JSON-RPC request. It returns nil for
// notifications, which expect no response.
func (rt *Router) Handle(ctx context.Context, req jsonrpcRequest) *jsonrpcResponse {
	if req.isNotification() {
		// notifications/initialized and friends carry no id.
		return nil
	}

	switch req.Method {
	case "initialize":
		return rpcOK(req.ID, map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools":     map[string]interface{}{"listChanged": false},
				"prompts":   map[string]interface{}{"listChanged": false},
				"resources": map[string]interface{}{"subscribe": true, "listChanged": false},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": ServerVersion,
			},
		})

	case "ping":
		return rpcOK(req.ID, map[string]interface{}{})

	case "tools/list":
		return rpcOK(req.ID, map[string]interface{}{"tools": schema.ToolList()})

	case "tools/call":
		return rt.handleToolCall(ctx, req)

	case "prompts/list":
		return rpcOK(req.ID, map[string]interface{}{"prompts": schema.Prompts()})

	case "prompts/get":
		return rt.handlePromptGet(req)

	case "resources/list":
		return rpcOK(req.ID, map[string]interface{}{"resources": schema.Resources()})

	case "resources/read":
		return rt.handleResourceRead(ctx, req)

	case "resources/subscribe":
		uri, resp := rt.uriParam(req)
		if resp != nil {
			return resp
		}
		rt.svc.Subscribe(ctx, uri)
		return rpcOK(req.ID, map[string]interface{}{})

	case "resources/unsubscribe":
		uri, resp := rt.uriParam(req)
		if resp != nil {
			return resp
		}
		rt.svc.Unsubscribe(uri)
		return rpcOK(req.ID, map[string]interface{}{})

	default:
		return rpcError(req.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

type callToolParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
	Meta      *struct {
		ProgressToken interface{} `json:"progressToken"`
	} `json:"_meta,omitempty"`
}

func (rt *Router) handleToolCall(ctx context.Context, req jsonrpcRequest) *jsonrpcResponse {
	var params callToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return rpcError(req.ID, codeInvalidParams, "tools/call requires a tool name")
	}

	token := normalizeToken(params.Meta)
	result, err := rt.svc.CallTool(ctx, params.Name, params.Arguments, token)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrUnknownTool), errors.Is(err, gateway.ErrDuplicateToken):
			return rpcError(req.ID, codeInvalidParams, err.Error())
		default:
			return rpcError(req.ID, codeToolError, err.Error())
		}
	}
	return rpcOK(req.ID, mcp.NewToolResultText(string(result)))
}

func (rt *Router) handlePromptGet(req jsonrpcRequest) *jsonrpcResponse {
	var params struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return rpcError(req.ID, codeInvalidParams, "prompts/get requires a prompt name")
	}
	result, err := schema.RenderPrompt(params.Name, params.Arguments)
	if err != nil {
		return rpcError(req.ID, codeInvalidParams,
			fmt.Errorf("%w: %s", gateway.ErrUnknownPrompt, params.Name).Error())
	}
	return rpcOK(req.ID, result)
}

func (rt *Router) handleResourceRead(ctx context.Context, req jsonrpcRequest) *jsonrpcResponse {
	uri, resp := rt.uriParam(req)
	if resp != nil {
		return resp
	}
	data, err := rt.svc.ReadResource(ctx, uri)
	if err != nil {
		if errors.Is(err, gateway.ErrUnknownResource) {
			return rpcError(req.ID, codeInvalidParams, err.Error())
		}
		return rpcError(req.ID, codeToolError, err.Error())
	}
	return rpcOK(req.ID, map[string]interface{}{
		"contents": []mcp.TextResourceContents{
			{URI: uri, MIMEType: "application/json", Text: string(data)},
		},
	})
}

func (rt *Router) uriParam(req jsonrpcRequest) (string, *jsonrpcResponse) {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil || params.URI == "" {
		return "", rpcError(req.ID, codeInvalidParams, "request requires a resource uri")
	}
	return params.URI, nil
}

// normalizeToken renders the client's progress token as a string.
// Numeric tokens are legal on the wire.
func normalizeToken(meta *struct {
	ProgressToken interface{} `json:"progressToken"`
}) string {
	if meta == nil || meta.ProgressToken == nil {
		return ""
	}
	return fmt.Sprintf("%v", meta.ProgressToken)
}
