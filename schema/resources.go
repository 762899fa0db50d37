package schema

import "github.com/mark3labs/mcp-go/mcp"

// Resource URIs. The system and subscription resources are answered by
// the gateway itself; the rest delegate to the backend through a
// synthetic get_resource tool call.
const (
	URISystemMetrics     = "autogen://system/metrics"
	URISubscriptionsList = "autogen://subscriptions/list"
	URIAgentsList        = "autogen://agents/list"
	URIWorkflowTemplates = "autogen://workflows/templates"
	URIChatHistory       = "autogen://chat/history"
	URIConfigCurrent     = "autogen://config/current"
)

var resourceDefs = []mcp.Resource{
	{URI: URISystemMetrics, Name: "System Metrics", Description: "Gateway uptime, connections, and in-flight calls", MIMEType: "application/json"},
	{URI: URISubscriptionsList, Name: "Active Subscriptions", Description: "Resource URIs with registered interest", MIMEType: "application/json"},
	{URI: URIAgentsList, Name: "Active Agents", Description: "Agents registered in the backend", MIMEType: "application/json"},
	{URI: URIWorkflowTemplates, Name: "Workflow Templates", Description: "Built-in workflow templates", MIMEType: "application/json"},
	{URI: URIChatHistory, Name: "Chat History", Description: "Recent agent conversations", MIMEType: "application/json"},
	{URI: URIConfigCurrent, Name: "Current Configuration", Description: "Backend configuration snapshot", MIMEType: "application/json"},
}

// Resources returns the declared resource descriptors for resources/list.
func Resources() []mcp.Resource {
	return resourceDefs
}

// IsLocalResource reports whether uri is answered by the gateway without
// a backend call.
func IsLocalResource(uri string) bool {
	return uri == URISystemMetrics || uri == URISubscriptionsList
}
