// Package schema holds the static tool, prompt, and resource tables the
// gateway declares to clients. The tables carry no behavior beyond
// deterministic prompt rendering; execution lives in the gateway and
// backend packages.
package schema

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// Category determines how the orchestrator drives a tool call.
type Category int

const (
	// CategoryDefault tools delegate to the backend with a single
	// midpoint progress notification.
	CategoryDefault Category = iota

	// CategoryStreaming tools drive a multi-step progress sequence and
	// broadcast their result as a streaming update.
	CategoryStreaming

	// CategoryBroadcast tools update shared gateway state and return
	// without a backend call.
	CategoryBroadcast
)

// ToolDef pairs an MCP tool descriptor with its execution category.
type ToolDef struct {
	Tool     mcp.Tool
	Category Category
}

// ToolStreamingWorkflow is the only streaming-category tool.
const ToolStreamingWorkflow = "create_streaming_workflow"

// ToolPingConnections is the only broadcast-category tool.
const ToolPingConnections = "ping_connections"

var toolDefs = buildTools()

func buildTools() []ToolDef {
	defs := []ToolDef{
		{Tool: mcp.NewTool("create_agent",
			mcp.WithDescription("Create a new AutoGen agent"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Unique agent name")),
			mcp.WithString("type", mcp.Required(), mcp.Description("Agent type: assistant, user_proxy, conversable, teachable, retrievable")),
			mcp.WithString("system_message", mcp.Description("System message defining the agent's role")),
			mcp.WithObject("llm_config", mcp.Description("LLM configuration overrides")),
		)},
		{Tool: mcp.NewTool("create_workflow",
			mcp.WithDescription("Create a multi-agent workflow definition"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Workflow name")),
			mcp.WithString("type", mcp.Required(), mcp.Description("Workflow type: sequential, group_chat, nested, swarm, hierarchical")),
			mcp.WithString("task", mcp.Required(), mcp.Description("Task the workflow accomplishes")),
		)},
		{Tool: mcp.NewTool("execute_chat",
			mcp.WithDescription("Execute a chat between two agents"),
			mcp.WithString("initiator", mcp.Required(), mcp.Description("Agent that starts the conversation")),
			mcp.WithString("responder", mcp.Required(), mcp.Description("Agent that responds")),
			mcp.WithString("message", mcp.Required(), mcp.Description("Initial message")),
		)},
		{Tool: mcp.NewToolWithRawSchema("execute_group_chat",
			"Execute a group chat across multiple agents",
			json.RawMessage(`{
				"type": "object",
				"properties": {
					"agent_names": {"type": "array", "items": {"type": "string"}, "description": "Agents participating in the chat"},
					"initiator": {"type": "string", "description": "Agent that starts the conversation"},
					"message": {"type": "string", "description": "Initial message"},
					"max_round": {"type": "number", "description": "Maximum chat rounds"}
				},
				"required": ["agent_names", "initiator", "message"]
			}`),
		)},
		{Tool: mcp.NewToolWithRawSchema("execute_nested_chat",
			"Execute a nested chat where agents delegate sub-conversations",
			json.RawMessage(`{
				"type": "object",
				"properties": {
					"outer_agent": {"type": "string", "description": "Agent owning the outer conversation"},
					"nested_agents": {"type": "array", "items": {"type": "string"}, "description": "Agents handling nested conversations"},
					"message": {"type": "string", "description": "Initial message"}
				},
				"required": ["outer_agent", "nested_agents", "message"]
			}`),
		)},
		{Tool: mcp.NewToolWithRawSchema("execute_swarm",
			"Execute a swarm-style handoff conversation",
			json.RawMessage(`{
				"type": "object",
				"properties": {
					"agent_names": {"type": "array", "items": {"type": "string"}, "description": "Agents in the swarm"},
					"initial_agent": {"type": "string", "description": "Agent receiving the first message"},
					"message": {"type": "string", "description": "Initial message"},
					"context_variables": {"type": "object", "description": "Shared context passed between handoffs"}
				},
				"required": ["agent_names", "initial_agent", "message"]
			}`),
		)},
		{Tool: mcp.NewTool("execute_workflow",
			mcp.WithDescription("Execute a predefined workflow"),
			mcp.WithString("workflow_name", mcp.Required(), mcp.Description("Name of the workflow to run")),
			mcp.WithObject("input_data", mcp.Required(), mcp.Description("Workflow input payload")),
		)},
		{Tool: mcp.NewTool("manage_agent_memory",
			mcp.WithDescription("Read, write, or clear an agent's persistent memory"),
			mcp.WithString("agent_name", mcp.Required(), mcp.Description("Target agent")),
			mcp.WithString("action", mcp.Required(), mcp.Description("Memory action: get, set, clear")),
			mcp.WithObject("data", mcp.Description("Payload for set actions")),
		)},
		{Tool: mcp.NewTool("configure_teachability",
			mcp.WithDescription("Enable or tune teachability for an agent"),
			mcp.WithString("agent_name", mcp.Required(), mcp.Description("Target agent")),
			mcp.WithBoolean("enabled", mcp.Description("Whether teachability is enabled")),
			mcp.WithNumber("max_num_retrievals", mcp.Description("Maximum memories retrieved per turn")),
		)},
		{Tool: mcp.NewTool("get_agent_status",
			mcp.WithDescription("Get status for one agent or all agents"),
			mcp.WithString("agent_name", mcp.Description("Agent to inspect; omit for all agents")),
			mcp.WithBoolean("include_metrics", mcp.Description("Include runtime metrics")),
			mcp.WithBoolean("include_memory", mcp.Description("Include memory summaries")),
		)},
		{Tool: mcp.NewTool("get_resource",
			mcp.WithDescription("Read a gateway resource by URI"),
			mcp.WithString("uri", mcp.Required(), mcp.Description("Resource URI, e.g. autogen://agents/list")),
		)},
		{
			Tool: mcp.NewTool(ToolStreamingWorkflow,
				mcp.WithDescription("Create and run a workflow with incremental streaming output"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Workflow name")),
				mcp.WithString("task", mcp.Required(), mcp.Description("Task the workflow accomplishes")),
				mcp.WithBoolean("streaming", mcp.Description("Broadcast incremental output to connected clients")),
			),
			Category: CategoryStreaming,
		},
		{
			Tool: mcp.NewTool(ToolPingConnections,
				mcp.WithDescription("Record gateway activity and notify metric subscribers"),
			),
			Category: CategoryBroadcast,
		},
	}
	return defs
}

// Tools returns every declared tool definition in listing order.
func Tools() []ToolDef {
	return toolDefs
}

// ToolList returns the MCP tool descriptors for tools/list.
func ToolList() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(toolDefs))
	for _, def := range toolDefs {
		tools = append(tools, def.Tool)
	}
	return tools
}

// LookupTool returns the definition for name.
func LookupTool(name string) (ToolDef, bool) {
	for _, def := range toolDefs {
		if def.Tool.Name == name {
			return def, true
		}
	}
	return ToolDef{}, false
}
