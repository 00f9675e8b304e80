package server

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/HendryAvila/cca/internal/config"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tmc/langchaingo/llms"
)

// silentModel answers every turn with a fixed text and never calls tools.
type silentModel struct{}

func (silentModel) GenerateContent(context.Context, []llms.MessageContent, ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "nothing to report"}}}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		BaseDir: t.TempDir(),
		Agents: config.AgentsConfig{
			ExplorerMaxSteps: 5,
			WriterMaxSteps:   5,
			SearcherMaxSteps: 5,
			UpdaterMaxSteps:  5,
		},
	}
}

// rpc sends one JSON-RPC request to the server and returns the encoded response.
func rpc(t *testing.T, s *server.MCPServer, method, params string) string {
	t.Helper()
	msg := `{"jsonrpc":"2.0","id":1,"method":"` + method + `","params":` + params + `}`
	resp := s.HandleMessage(context.Background(), json.RawMessage(msg))
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return string(data)
}

func TestNew_RegistersSurface(t *testing.T) {
	svc := NewCapture(testConfig(t), silentModel{}, nil)
	handler := New(svc, nil)

	tools := rpc(t, handler, "tools/list", "{}")
	for _, name := range []string{"init_project", "search_context", "update_context", "list_projects"} {
		if !strings.Contains(tools, `"name":"`+name+`"`) {
			t.Errorf("tool %s not registered: %s", name, tools)
		}
	}

	prompts := rpc(t, handler, "prompts/list", "{}")
	for _, name := range []string{"cca-start", "cca-status"} {
		if !strings.Contains(prompts, `"name":"`+name+`"`) {
			t.Errorf("prompt %s not registered: %s", name, prompts)
		}
	}

	resources := rpc(t, handler, "resources/list", "{}")
	if !strings.Contains(resources, "cca://projects") {
		t.Errorf("projects resource not registered: %s", resources)
	}
	templates := rpc(t, handler, "resources/templates/list", "{}")
	if !strings.Contains(templates, "cca://projects/{project}/tree") {
		t.Errorf("tree template not registered: %s", templates)
	}
}

func TestNew_SearchThroughServer(t *testing.T) {
	cfg := testConfig(t)
	svc := NewCapture(cfg, silentModel{}, nil)
	if _, err := svc.Store().Write("api", "Security", "auth", "JWT"); err != nil {
		t.Fatal(err)
	}
	handler := New(svc, nil)

	out := rpc(t, handler, "tools/call", `{"name":"search_context","arguments":{"query":"auth","projectName":"api"}}`)
	if !strings.Contains(out, "nothing to report") {
		t.Errorf("unexpected response: %s", out)
	}

	out = rpc(t, handler, "tools/call", `{"name":"search_context","arguments":{"query":"auth","projectName":"ghost"}}`)
	if !strings.Contains(out, `No context exists for project \"ghost\"`) || !strings.Contains(out, `"isError":true`) {
		t.Errorf("unexpected response: %s", out)
	}
}

func TestServerInstructions(t *testing.T) {
	text := serverInstructions()
	for _, name := range []string{"init_project", "search_context", "update_context", "list_projects"} {
		if !strings.Contains(text, name) {
			t.Errorf("instructions do not mention %s", name)
		}
	}
	if strings.Contains(text, "from scratch") {
		t.Error("instructions promise a from-scratch rebuild that init_project does not do")
	}
}
