package schema

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

var promptDefs = []mcp.Prompt{
	{
		Name:        "autogen-workflow",
		Description: "Design a multi-agent workflow for a task",
		Arguments: []mcp.PromptArgument{
			{Name: "task", Description: "The task to accomplish", Required: true},
			{Name: "agents_count", Description: "Number of agents to involve"},
			{Name: "workflow_type", Description: "Workflow style: sequential, group_chat, swarm"},
		},
	},
	{
		Name:        "code-review",
		Description: "Review code with a multi-agent panel",
		Arguments: []mcp.PromptArgument{
			{Name: "code", Description: "The code to review", Required: true},
			{Name: "language", Description: "Programming language"},
			{Name: "focus_areas", Description: "Comma-separated review focus areas"},
		},
	},
	{
		Name:        "research-analysis",
		Description: "Research a topic with specialized analyst agents",
		Arguments: []mcp.PromptArgument{
			{Name: "topic", Description: "The topic to research", Required: true},
			{Name: "depth", Description: "Research depth: overview, detailed, comprehensive"},
		},
	},
}

// Prompts returns the declared prompt descriptors for prompts/list.
func Prompts() []mcp.Prompt {
	return promptDefs
}

// HasPrompt reports whether name is a declared prompt.
func HasPrompt(name string) bool {
	for _, p := range promptDefs {
		if p.Name == name {
			return true
		}
	}
	return false
}

// RenderPrompt produces the message list for prompts/get. Rendering is
// deterministic and local; the backend is never consulted.
func RenderPrompt(name string, args map[string]string) (*mcp.GetPromptResult, error) {
	arg := func(key, fallback string) string {
		if v, ok := args[key]; ok && v != "" {
			return v
		}
		return fallback
	}

	var description, text string
	switch name {
	case "autogen-workflow":
		description = "Multi-agent workflow design"
		text = fmt.Sprintf(
			"Design a %s workflow using %s AutoGen agents to accomplish the following task:\n\n%s\n\n"+
				"For each agent, specify its name, type, and system message. "+
				"Describe the conversation flow and the termination condition.",
			arg("workflow_type", "sequential"), arg("agents_count", "3"), arg("task", ""))
	case "code-review":
		description = "Multi-agent code review"
		text = fmt.Sprintf(
			"Review the following %s code focusing on %s:\n\n```\n%s\n```\n\n"+
				"Use a reviewer agent for correctness, a security agent for vulnerabilities, "+
				"and a style agent for maintainability. Summarize consolidated findings.",
			arg("language", "unknown"), arg("focus_areas", "correctness, security, style"), arg("code", ""))
	case "research-analysis":
		description = "Multi-agent research analysis"
		text = fmt.Sprintf(
			"Research the topic %q at %s depth. "+
				"Coordinate a researcher agent gathering sources, an analyst agent extracting findings, "+
				"and a writer agent producing the final report.",
			arg("topic", ""), arg("depth", "detailed"))
	default:
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{Role: mcp.RoleUser, Content: mcp.NewTextContent(text)},
		},
	}, nil
}
