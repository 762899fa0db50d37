package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestToolCategories(t *testing.T) {
	streaming, ok := LookupTool(ToolStreamingWorkflow)
	if !ok || streaming.Category != CategoryStreaming {
		t.Fatalf("streaming tool misclassified: %+v", streaming)
	}
	broadcast, ok := LookupTool(ToolPingConnections)
	if !ok || broadcast.Category != CategoryBroadcast {
		t.Fatalf("broadcast tool misclassified: %+v", broadcast)
	}

	for _, name := range []string{"create_agent", "execute_workflow", "execute_swarm", "get_resource"} {
		def, ok := LookupTool(name)
		if !ok {
			t.Fatalf("tool %s not declared", name)
		}
		if def.Category != CategoryDefault {
			t.Fatalf("tool %s must be default category", name)
		}
	}

	if _, ok := LookupTool("delete_everything"); ok {
		t.Fatal("undeclared tool resolved")
	}
}

func TestToolNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range Tools() {
		if seen[def.Tool.Name] {
			t.Fatalf("duplicate tool name %s", def.Tool.Name)
		}
		seen[def.Tool.Name] = true
	}
}

func TestRenderPromptFillsArguments(t *testing.T) {
	result, err := RenderPrompt("code-review", map[string]string{
		"code":     "func main() {}",
		"language": "go",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(result.Messages) != 1 {
		t.Fatalf("expected one message, got %d", len(result.Messages))
	}
	text := contentText(t, result.Messages[0].Content)
	if !strings.Contains(text, "func main() {}") || !strings.Contains(text, "go") {
		t.Fatalf("arguments not rendered: %q", text)
	}
}

// contentText extracts the text payload from a content item via its
// wire form, so it holds for both value and pointer content.
func contentText(t *testing.T, c mcp.Content) string {
	t.Helper()
	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("content not marshalable: %v", err)
	}
	var tc struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &tc); err != nil {
		t.Fatalf("content not text shaped: %v", err)
	}
	if tc.Type != "text" {
		t.Fatalf("expected text content, got %q", tc.Type)
	}
	return tc.Text
}

func TestRenderPromptDefaults(t *testing.T) {
	result, err := RenderPrompt("research-analysis", map[string]string{"topic": "LLM agents"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if result.Description == "" {
		t.Fatal("description must be set")
	}
}

func TestRenderUnknownPrompt(t *testing.T) {
	if _, err := RenderPrompt("nope", nil); err == nil {
		t.Fatal("unknown prompt rendered")
	}
	if HasPrompt("nope") {
		t.Fatal("unknown prompt reported as declared")
	}
}

func TestLocalResourceClassification(t *testing.T) {
	if !IsLocalResource(URISystemMetrics) || !IsLocalResource(URISubscriptionsList) {
		t.Fatal("system resources must be local")
	}
	for _, uri := range []string{URIAgentsList, URIWorkflowTemplates, URIChatHistory, URIConfigCurrent} {
		if IsLocalResource(uri) {
			t.Fatalf("%s must delegate to the backend", uri)
		}
	}

	declared := map[string]bool{}
	for _, r := range Resources() {
		declared[r.URI] = true
	}
	for _, uri := range []string{URISystemMetrics, URISubscriptionsList, URIAgentsList} {
		if !declared[uri] {
			t.Fatalf("%s missing from resources list", uri)
		}
	}
}
