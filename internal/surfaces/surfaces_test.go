package surfaces

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HendryAvila/cca/internal/agent"
	"github.com/HendryAvila/cca/internal/knowledge"
	"github.com/HendryAvila/cca/internal/source"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

const testProject = "demo"

// newBinding returns a Binding over a temp store and a temp codebase.
func newBinding(t *testing.T) (Binding, string) {
	t.Helper()
	codebase := t.TempDir()
	root, err := source.NewRoot(codebase)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	return Binding{
		Store:   knowledge.New(t.TempDir(), zap.NewNop()),
		Project: testProject,
		Source:  root,
	}, codebase
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// call finds a tool by name in a surface and invokes it.
func call(t *testing.T, tools []agent.Tool, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	for _, tool := range tools {
		if tool.Definition().Name != name {
			continue
		}
		res, err := tool.Handle(context.Background(), makeReq(args))
		if err != nil {
			t.Fatalf("%s returned Go error: %v", name, err)
		}
		return res
	}
	t.Fatalf("tool %q not in surface", name)
	return nil
}

func writeSource(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func names(tools []agent.Tool) []string {
	out := make([]string, len(tools))
	for i, tool := range tools {
		out[i] = tool.Definition().Name
	}
	return out
}

// ─── Surface composition ─────────────────────────────────────────────────────

func TestSurfaces_ToolNames(t *testing.T) {
	b, _ := newBinding(t)

	tests := []struct {
		name  string
		tools []agent.Tool
		want  []string
	}{
		{"explorer", Explorer(b), []string{
			"read_agent_context", "find_key_files", "read_file", "list_directory",
			"search_files", "write_exploration", "update_exploration",
		}},
		{"writer", Writer(b), []string{
			"read_exploration", "write_context", "update_context", "list_context", "read_context",
		}},
		{"searcher", Searcher(b), []string{
			"list_context_tree", "read_topic", "search_topics",
		}},
		{"updater", Updater(b), []string{
			"list_context_tree", "read_topic", "search_topics", "update_topic", "create_topic",
			"create_domain", "delete_topic", "delete_domain", "read_source_file", "list_source_directory",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(tt.tools)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("tools = %v, want %v", got, tt.want)
			}
		})
	}
}

// ─── Explorer ────────────────────────────────────────────────────────────────

func TestExplorer_ReadAgentContext(t *testing.T) {
	b, dir := newBinding(t)
	tools := Explorer(b)

	res := call(t, tools, "read_agent_context", nil)
	if agent.ResultText(res) != "No existing AI agent context files found." {
		t.Errorf("unexpected text: %q", agent.ResultText(res))
	}

	writeSource(t, dir, "CLAUDE.md", "Use make test.")
	writeSource(t, dir, ".cursor/rules/style.mdc", "Tabs only.")

	res = call(t, tools, "read_agent_context", nil)
	text := agent.ResultText(res)
	for _, want := range []string{"Found 2 agent context file(s).", "## CLAUDE.md", "Use make test.", "## .cursor/rules/style.mdc"} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %q:\n%s", want, text)
		}
	}
}

func TestExplorer_ReadFile(t *testing.T) {
	b, dir := newBinding(t)
	b.Limits.PreviewChars = 5
	tools := Explorer(b)
	writeSource(t, dir, "main.go", "package main")
	writeSource(t, dir, "empty.txt", "")

	res := call(t, tools, "read_file", map[string]interface{}{"file_path": "main.go"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", agent.ResultText(res))
	}
	if agent.ResultText(res) != "packa"+source.TruncatedMarker {
		t.Errorf("preview = %q", agent.ResultText(res))
	}

	res = call(t, tools, "read_file", map[string]interface{}{"file_path": "empty.txt"})
	if res.IsError || agent.ResultText(res) != "empty.txt is empty." {
		t.Errorf("empty file result = %q (error=%v)", agent.ResultText(res), res.IsError)
	}

	res = call(t, tools, "read_file", map[string]interface{}{"file_path": "../outside.txt"})
	if !res.IsError || !strings.Contains(agent.ResultText(res), "outside the project directory") {
		t.Errorf("escape not rejected: %q", agent.ResultText(res))
	}

	res = call(t, tools, "read_file", map[string]interface{}{"file_path": "missing.go"})
	if !res.IsError || !strings.Contains(agent.ResultText(res), "does not exist") {
		t.Errorf("missing file: %q", agent.ResultText(res))
	}
}

func TestExplorer_ListDirectory(t *testing.T) {
	b, dir := newBinding(t)
	tools := Explorer(b)
	writeSource(t, dir, "cmd/app/main.go", "package main")
	writeSource(t, dir, "go.mod", "module x")
	writeSource(t, dir, "node_modules/pkg/index.js", "")

	res := call(t, tools, "list_directory", map[string]interface{}{})
	text := agent.ResultText(res)
	if !strings.Contains(text, "📁 cmd/") || !strings.Contains(text, "📄 go.mod") {
		t.Errorf("flat listing:\n%s", text)
	}
	if strings.Contains(text, "node_modules") {
		t.Errorf("ignored entry listed:\n%s", text)
	}

	res = call(t, tools, "list_directory", map[string]interface{}{"recursive": true, "max_depth": float64(3)})
	text = agent.ResultText(res)
	if !strings.Contains(text, "    📄 main.go") {
		t.Errorf("recursive listing lacks nested file:\n%s", text)
	}
}

func TestExplorer_SearchFiles(t *testing.T) {
	b, dir := newBinding(t)
	tools := Explorer(b)
	writeSource(t, dir, "auth/login.go", "package auth\n\nfunc Login() {}\n")
	writeSource(t, dir, "README.md", "Login flow docs\n")

	res := call(t, tools, "search_files", map[string]interface{}{"pattern": "login", "file_pattern": "**/*.go"})
	text := agent.ResultText(res)
	if !strings.Contains(text, "auth/login.go:\n  3: func Login() {}") {
		t.Errorf("unexpected output:\n%s", text)
	}
	if strings.Contains(text, "README.md") {
		t.Errorf("glob not applied:\n%s", text)
	}

	res = call(t, tools, "search_files", map[string]interface{}{"pattern": "nothing-here"})
	if agent.ResultText(res) != "No matches found" {
		t.Errorf("no-match text = %q", agent.ResultText(res))
	}

	res = call(t, tools, "search_files", map[string]interface{}{"pattern": "("})
	if !res.IsError {
		t.Error("invalid regex should be an error result")
	}
}

func TestExplorer_Exploration(t *testing.T) {
	b, _ := newBinding(t)
	tools := Explorer(b)

	res := call(t, tools, "update_exploration", map[string]interface{}{"content": "v2"})
	if !res.IsError || !strings.Contains(agent.ResultText(res), "Use write_exploration") {
		t.Errorf("update before write: %q", agent.ResultText(res))
	}

	res = call(t, tools, "write_exploration", map[string]interface{}{"content": "# Overview"})
	if res.IsError || !strings.HasPrefix(agent.ResultText(res), "Exploration saved to: ") {
		t.Fatalf("write_exploration: %q", agent.ResultText(res))
	}

	res = call(t, tools, "update_exploration", map[string]interface{}{"content": "# Overview v2"})
	if res.IsError {
		t.Fatalf("update_exploration: %q", agent.ResultText(res))
	}
	got, _, _ := b.Store.ReadExploration(testProject)
	if got != "# Overview v2" {
		t.Errorf("exploration = %q", got)
	}
}

func TestExplorer_NoSource(t *testing.T) {
	b, _ := newBinding(t)
	b.Source = nil
	res := call(t, Explorer(b), "find_key_files", nil)
	if !res.IsError {
		t.Error("expected error result without a codebase")
	}
}

// ─── Writer ──────────────────────────────────────────────────────────────────

func TestWriter_WriteListRead(t *testing.T) {
	b, _ := newBinding(t)
	tools := Writer(b)

	res := call(t, tools, "list_context", nil)
	if agent.ResultText(res) != "No context tree exists yet." {
		t.Errorf("list before init = %q", agent.ResultText(res))
	}

	res = call(t, tools, "read_exploration", nil)
	if !res.IsError {
		t.Error("read_exploration without a file should fail")
	}

	res = call(t, tools, "write_context", map[string]interface{}{
		"domain": "Architecture", "topic": "overview", "content": "Layers.",
	})
	if agent.ResultText(res) != "Context written: Architecture/overview.md" {
		t.Errorf("write_context = %q", agent.ResultText(res))
	}
	if _, err := b.Store.CreateDomain(testProject, "Empty"); err != nil {
		t.Fatal(err)
	}

	res = call(t, tools, "list_context", nil)
	want := "📁 Architecture/\n   📄 overview.md\n📁 Empty/"
	if agent.ResultText(res) != want {
		t.Errorf("list_context =\n%s\nwant\n%s", agent.ResultText(res), want)
	}

	res = call(t, tools, "read_context", map[string]interface{}{"domain": "Architecture", "topic": "overview"})
	if agent.ResultText(res) != "Layers." {
		t.Errorf("read_context = %q", agent.ResultText(res))
	}
}

func TestWriter_UpdateMissing(t *testing.T) {
	b, _ := newBinding(t)
	res := call(t, Writer(b), "update_context", map[string]interface{}{
		"domain": "API", "topic": "routes", "content": "x",
	})
	if !res.IsError || agent.ResultText(res) != "API/routes.md does not exist. Use write_context to create it." {
		t.Errorf("update_context = %q", agent.ResultText(res))
	}
}

func TestWriter_RejectsTraversal(t *testing.T) {
	b, _ := newBinding(t)
	res := call(t, Writer(b), "write_context", map[string]interface{}{
		"domain": "../escape", "topic": "x", "content": "x",
	})
	if !res.IsError || !strings.Contains(agent.ResultText(res), "Invalid name") {
		t.Errorf("write_context = %q", agent.ResultText(res))
	}
}

// ─── Searcher ────────────────────────────────────────────────────────────────

func TestSearcher_ListContextTree(t *testing.T) {
	b, _ := newBinding(t)
	tools := Searcher(b)

	res := call(t, tools, "list_context_tree", nil)
	if agent.ResultText(res) != "No context tree exists for this project." {
		t.Errorf("missing project = %q", agent.ResultText(res))
	}

	if _, err := b.Store.CreateDomain(testProject, "Empty"); err != nil {
		t.Fatal(err)
	}
	res = call(t, tools, "list_context_tree", nil)
	if agent.ResultText(res) != "Context tree is empty. No domains or topics found." {
		t.Errorf("empty tree = %q", agent.ResultText(res))
	}

	mustWrite(t, b, "API", "routes", "GET /users")
	mustWrite(t, b, "API", "auth", "JWT")
	res = call(t, tools, "list_context_tree", nil)
	want := "API/\n  ├── auth.md\n  ├── routes.md"
	if agent.ResultText(res) != want {
		t.Errorf("tree =\n%s\nwant\n%s", agent.ResultText(res), want)
	}
}

func TestSearcher_ReadTopic(t *testing.T) {
	b, _ := newBinding(t)
	tools := Searcher(b)
	mustWrite(t, b, "API", "routes", "GET /users")

	res := call(t, tools, "read_topic", map[string]interface{}{"domain": "API", "topic": "routes"})
	if agent.ResultText(res) != "GET /users" {
		t.Errorf("read_topic = %q", agent.ResultText(res))
	}

	res = call(t, tools, "read_topic", map[string]interface{}{"domain": "API", "topic": "nope"})
	if !res.IsError || agent.ResultText(res) != "API/nope.md does not exist." {
		t.Errorf("missing topic = %q", agent.ResultText(res))
	}

	res = call(t, tools, "read_topic", map[string]interface{}{"domain": "API"})
	if !res.IsError || agent.ResultText(res) != "'topic' is required" {
		t.Errorf("missing arg = %q", agent.ResultText(res))
	}
}

func TestSearcher_SearchTopics(t *testing.T) {
	b, _ := newBinding(t)
	tools := Searcher(b)
	mustWrite(t, b, "Security", "authentication", "Tokens are signed JWTs refreshed hourly.")
	mustWrite(t, b, "Frontend", "styling", "Tailwind utility classes.")

	res := call(t, tools, "search_topics", map[string]interface{}{"query": "JWT tokens"})
	text := agent.ResultText(res)
	if !strings.Contains(text, "Security/authentication.md") {
		t.Errorf("search result:\n%s", text)
	}
	if strings.Contains(text, "Frontend/styling.md") {
		t.Errorf("unrelated topic matched:\n%s", text)
	}

	res = call(t, tools, "search_topics", map[string]interface{}{"query": "kubernetes"})
	if agent.ResultText(res) != `No topics match "kubernetes".` {
		t.Errorf("no match = %q", agent.ResultText(res))
	}

	res = call(t, tools, "search_topics", map[string]interface{}{"query": "  "})
	if !res.IsError {
		t.Error("blank query should be an error result")
	}
}

// ─── Updater ─────────────────────────────────────────────────────────────────

func TestUpdater_UpdateTopic(t *testing.T) {
	b, _ := newBinding(t)
	tools := Updater(b)
	mustWrite(t, b, "API", "routes", "GET /users")

	res := call(t, tools, "update_topic", map[string]interface{}{
		"domain": "API", "topic": "routes", "content": "POST /users", "append_mode": true,
	})
	if agent.ResultText(res) != "Successfully appended to API/routes.md" {
		t.Errorf("append = %q", agent.ResultText(res))
	}
	got, _, _ := b.Store.ReadTopic(testProject, "API", "routes")
	if got != "GET /users\n\nPOST /users" {
		t.Errorf("content after append = %q", got)
	}

	res = call(t, tools, "update_topic", map[string]interface{}{
		"domain": "API", "topic": "routes", "content": "replaced",
	})
	if agent.ResultText(res) != "Successfully updated API/routes.md" {
		t.Errorf("replace = %q", agent.ResultText(res))
	}

	res = call(t, tools, "update_topic", map[string]interface{}{
		"domain": "API", "topic": "ghost", "content": "x",
	})
	if !res.IsError || agent.ResultText(res) != "API/ghost.md does not exist. Use create_topic instead." {
		t.Errorf("missing = %q", agent.ResultText(res))
	}
	if b.Store.TopicExists(testProject, "API", "ghost") {
		t.Error("update_topic must not create topics")
	}
}

func TestUpdater_CreateTopic(t *testing.T) {
	b, _ := newBinding(t)
	tools := Updater(b)

	res := call(t, tools, "create_topic", map[string]interface{}{
		"domain": "API", "topic": "routes", "content": "x",
	})
	want := `Domain "API" does not exist. Use create_domain first or specify an existing domain.`
	if !res.IsError || agent.ResultText(res) != want {
		t.Errorf("missing domain = %q", agent.ResultText(res))
	}
	if b.Store.DomainExists(testProject, "API") {
		t.Error("create_topic must not create domains")
	}

	mustWrite(t, b, "API", "routes", "original")
	res = call(t, tools, "create_topic", map[string]interface{}{
		"domain": "API", "topic": "routes", "content": "new",
	})
	if !res.IsError || agent.ResultText(res) != "API/routes.md already exists. Use update_topic instead." {
		t.Errorf("existing topic = %q", agent.ResultText(res))
	}
	got, _, _ := b.Store.ReadTopic(testProject, "API", "routes")
	if got != "original" {
		t.Errorf("existing topic overwritten: %q", got)
	}

	res = call(t, tools, "create_topic", map[string]interface{}{
		"domain": "API", "topic": "errors", "content": "RFC 7807",
	})
	if agent.ResultText(res) != "Successfully created API/errors.md" {
		t.Errorf("create = %q", agent.ResultText(res))
	}
}

func TestUpdater_CreateDomain(t *testing.T) {
	b, _ := newBinding(t)
	tools := Updater(b)

	res := call(t, tools, "create_domain", map[string]interface{}{
		"domain": "Billing", "initial_topic": "invoices", "initial_content": "Monthly.",
	})
	want := `Successfully created domain "Billing" with initial topic invoices.md`
	if agent.ResultText(res) != want {
		t.Errorf("create_domain = %q", agent.ResultText(res))
	}
	got, found, _ := b.Store.ReadTopic(testProject, "Billing", "invoices")
	if !found || got != "Monthly." {
		t.Errorf("initial topic = %q (found=%v)", got, found)
	}

	res = call(t, tools, "create_domain", map[string]interface{}{"domain": "Billing"})
	want = `Domain "Billing" already exists. Use create_topic to add topics to it.`
	if !res.IsError || agent.ResultText(res) != want {
		t.Errorf("duplicate = %q", agent.ResultText(res))
	}

	res = call(t, tools, "create_domain", map[string]interface{}{"domain": "Ops"})
	if agent.ResultText(res) != `Successfully created domain "Ops"` {
		t.Errorf("bare domain = %q", agent.ResultText(res))
	}
}

func TestUpdater_Delete(t *testing.T) {
	b, _ := newBinding(t)
	tools := Updater(b)
	mustWrite(t, b, "Legacy", "old", "a")
	mustWrite(t, b, "Legacy", "older", "b")
	mustWrite(t, b, "API", "routes", "c")

	res := call(t, tools, "delete_topic", map[string]interface{}{"domain": "API", "topic": "routes"})
	if agent.ResultText(res) != "Successfully deleted API/routes.md" {
		t.Errorf("delete_topic = %q", agent.ResultText(res))
	}
	res = call(t, tools, "delete_topic", map[string]interface{}{"domain": "API", "topic": "routes"})
	if !res.IsError {
		t.Error("deleting a missing topic should fail")
	}

	res = call(t, tools, "delete_domain", map[string]interface{}{"domain": "Legacy"})
	if agent.ResultText(res) != `Successfully deleted domain "Legacy" (2 topic(s) removed)` {
		t.Errorf("delete_domain = %q", agent.ResultText(res))
	}
	if b.Store.DomainExists(testProject, "Legacy") {
		t.Error("domain still exists")
	}
	res = call(t, tools, "delete_domain", map[string]interface{}{"domain": "Legacy"})
	if !res.IsError {
		t.Error("deleting a missing domain should fail")
	}
}

func TestUpdater_SourceTools(t *testing.T) {
	b, dir := newBinding(t)
	b.Limits.MaxReadBytes = 16
	tools := Updater(b)
	writeSource(t, dir, "small.go", "package x")
	writeSource(t, dir, "big.go", strings.Repeat("a", 64))
	writeSource(t, dir, ".env", "SECRET=1")
	writeSource(t, dir, "pkg/util.go", "package pkg")

	res := call(t, tools, "read_source_file", map[string]interface{}{"file_path": "small.go"})
	if agent.ResultText(res) != "package x" {
		t.Errorf("read_source_file = %q", agent.ResultText(res))
	}
	res = call(t, tools, "read_source_file", map[string]interface{}{"file_path": "big.go"})
	if !res.IsError || !strings.Contains(agent.ResultText(res), "too large") {
		t.Errorf("oversized file = %q", agent.ResultText(res))
	}
	res = call(t, tools, "read_source_file", map[string]interface{}{"file_path": "../../etc/passwd"})
	if !res.IsError {
		t.Error("escape should be rejected")
	}

	res = call(t, tools, "list_source_directory", map[string]interface{}{})
	if agent.ResultText(res) != "big.go\npkg/\nsmall.go" {
		t.Errorf("list_source_directory =\n%s", agent.ResultText(res))
	}
}

func mustWrite(t *testing.T, b Binding, domain, topic, content string) {
	t.Helper()
	if _, err := b.Store.Write(testProject, domain, topic, content); err != nil {
		t.Fatalf("Write(%s/%s): %v", domain, topic, err)
	}
}
