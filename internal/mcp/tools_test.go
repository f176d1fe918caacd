package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kpx-tools/kpx/internal/app"
	"github.com/kpx-tools/kpx/internal/config"
	"github.com/kpx-tools/kpx/internal/errors"
	"github.com/kpx-tools/kpx/internal/keepass"
)

func TestCreateServer(t *testing.T) {
	cfg := &config.File{
		Profiles: map[string]config.Profile{
			"test": {
				Database: "/vault/test.kdbx",
			},
		},
	}

	server, err := CreateServer("test", cfg)
	if err != nil {
		t.Fatalf("CreateServer failed: %v", err)
	}

	if server == nil {
		t.Fatal("server is nil")
	}
}

func TestNewToolHandler(t *testing.T) {
	cfg := &config.File{
		Profiles: map[string]config.Profile{
			"dev": {
				Database:    "/vault/dev.kdbx",
				Description: "Dev vault",
			},
			"prod": {
				Database:    "/vault/prod.kdbx",
				Description: "Prod vault",
			},
		},
	}

	handler := NewToolHandler(cfg)
	if handler == nil {
		t.Fatal("handler is nil")
	}

	if handler.config == nil {
		t.Fatal("handler.config is nil")
	}

	if len(handler.config.Profiles) != 2 {
		t.Errorf("expected 2 profiles, got %d", len(handler.config.Profiles))
	}
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(result.Content))
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return tc.Text
}

// scriptRunner replays canned keepassxc-cli responses in order; the last
// response repeats once the script runs out.
type scriptRunner struct {
	responses []scriptResponse
	calls     int
}

type scriptResponse struct {
	out  string
	exit int
}

func (r *scriptRunner) Run(ctx context.Context, exe string, args []string, stdin string) (string, int, error) {
	i := r.calls
	if i >= len(r.responses) {
		i = len(r.responses) - 1
	}
	r.calls++
	return r.responses[i].out, r.responses[i].exit, nil
}

// newTestHandler wires a handler whose connect seam opens real
// connections against temp files and the scripted runner. The probe
// consumes the first script response.
func newTestHandler(t *testing.T, r *scriptRunner) *ToolHandler {
	t.Helper()
	dir := t.TempDir()
	exe := filepath.Join(dir, "keepassxc-cli")
	db := filepath.Join(dir, "work.kdbx")
	if err := os.WriteFile(exe, []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(db, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &config.File{
		Profiles: map[string]config.Profile{
			"work": {Database: db},
		},
	}
	handler := NewToolHandler(cfg)
	handler.connect = func(ctx context.Context, opts app.ConnectionOptions) (*keepass.Connection, *errors.XError) {
		return keepass.Connect(ctx, keepass.ConnectOptions{
			Exe:      exe,
			Database: opts.Database,
			Secret:   "test-secret",
			Runner:   r,
		})
	}
	return handler
}

func TestEntryGet_Success(t *testing.T) {
	runner := &scriptRunner{responses: []scriptResponse{
		{out: "Root/\n", exit: 0}, // probe
		{out: "Title: MyBank\nUserName: alice\nPassword: s3cret\nURL: https://bank.example\nNotes: \n", exit: 0},
	}}
	handler := newTestHandler(t, runner)

	result, _, err := handler.EntryGet(context.Background(), nil, EntryGetInput{Entry: "MyBank", Profile: "work"})
	if err != nil {
		t.Fatalf("EntryGet failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", textContent(t, result))
	}

	text := textContent(t, result)
	var envelope struct {
		OK   bool          `json:"ok"`
		Data keepass.Entry `json:"data"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !envelope.OK {
		t.Error("expected ok=true")
	}
	if envelope.Data.Password != "s3cret" {
		t.Errorf("expected password in payload, got %q", envelope.Data.Password)
	}
}

func TestEntryGet_ReusesSessionConnection(t *testing.T) {
	runner := &scriptRunner{responses: []scriptResponse{
		{out: "Root/\n", exit: 0}, // probe, only once
		{out: "Title: MyBank\n", exit: 0},
	}}
	handler := newTestHandler(t, runner)

	for i := 0; i < 2; i++ {
		result, _, err := handler.EntryGet(context.Background(), nil, EntryGetInput{Entry: "MyBank", Profile: "work"})
		if err != nil {
			t.Fatalf("EntryGet failed: %v", err)
		}
		if result.IsError {
			t.Fatalf("expected success, got error: %s", textContent(t, result))
		}
	}

	// probe + two show calls; a second probe would make it four
	if runner.calls != 3 {
		t.Errorf("expected 3 subprocess calls, got %d", runner.calls)
	}
}

func TestEntryGet_MissingEntry(t *testing.T) {
	handler := newTestHandler(t, &scriptRunner{responses: []scriptResponse{{out: "", exit: 0}}})

	result, _, err := handler.EntryGet(context.Background(), nil, EntryGetInput{Profile: "work"})
	if err != nil {
		t.Fatalf("EntryGet failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(textContent(t, result), "entry is required") {
		t.Errorf("unexpected error payload: %s", textContent(t, result))
	}
}

func TestEntryGet_UnknownProfile(t *testing.T) {
	handler := newTestHandler(t, &scriptRunner{responses: []scriptResponse{{out: "", exit: 0}}})

	result, _, err := handler.EntryGet(context.Background(), nil, EntryGetInput{Entry: "MyBank", Profile: "missing"})
	if err != nil {
		t.Fatalf("EntryGet failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(textContent(t, result), "profile_not_found") {
		t.Errorf("unexpected error payload: %s", textContent(t, result))
	}
}

func TestEntryGet_NotFoundSurfacesCode(t *testing.T) {
	runner := &scriptRunner{responses: []scriptResponse{
		{out: "Root/\n", exit: 0},
		{out: "Error: Could not find entry with path Nope.\n", exit: 1},
	}}
	handler := newTestHandler(t, runner)

	result, _, err := handler.EntryGet(context.Background(), nil, EntryGetInput{Entry: "Nope", Profile: "work"})
	if err != nil {
		t.Fatalf("EntryGet failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(textContent(t, result), string(errors.CodeEntryNotFound)) {
		t.Errorf("expected error code in payload: %s", textContent(t, result))
	}
}

func TestEntryList_Success(t *testing.T) {
	runner := &scriptRunner{responses: []scriptResponse{
		{out: "Root/\n", exit: 0},
		{out: "a1b2c3  Finance/Bank  MyBank\n", exit: 0},
	}}
	handler := newTestHandler(t, runner)

	result, _, err := handler.EntryList(context.Background(), nil, EntryListInput{Profile: "work"})
	if err != nil {
		t.Fatalf("EntryList failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", textContent(t, result))
	}

	text := textContent(t, result)
	var envelope struct {
		OK   bool               `json:"ok"`
		Data keepass.ListResult `json:"data"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.Items[0].Title != "MyBank" {
		t.Errorf("unexpected listing: %+v", envelope.Data)
	}
}

func TestEntryList_MissingProfile(t *testing.T) {
	handler := newTestHandler(t, &scriptRunner{responses: []scriptResponse{{out: "", exit: 0}}})

	result, _, err := handler.EntryList(context.Background(), nil, EntryListInput{})
	if err != nil {
		t.Fatalf("EntryList failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(textContent(t, result), "profile is required") {
		t.Errorf("unexpected error payload: %s", textContent(t, result))
	}
}

func TestProfileList(t *testing.T) {
	cfg := &config.File{
		Profiles: map[string]config.Profile{
			"dev": {
				Database:    "/vault/dev.kdbx",
				Description: "Dev vault",
			},
			"prod": {
				Database:          "/vault/prod.kdbx",
				CredentialBackend: "file",
			},
		},
	}
	handler := NewToolHandler(cfg)

	result, _, err := handler.ProfileList(context.Background(), nil, struct{}{})
	if err != nil {
		t.Fatalf("ProfileList failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", textContent(t, result))
	}

	text := textContent(t, result)
	if !strings.Contains(text, "dev") || !strings.Contains(text, "prod") {
		t.Errorf("expected both profiles in payload: %s", text)
	}
	if !strings.Contains(text, `"credential_backend": "keyring"`) {
		t.Errorf("expected keyring default in payload: %s", text)
	}
	if !strings.Contains(text, `"credential_backend": "file"`) {
		t.Errorf("expected file backend in payload: %s", text)
	}
}

func TestProfileShow_RedactsPassword(t *testing.T) {
	cfg := &config.File{
		Profiles: map[string]config.Profile{
			"work": {
				Database:       "/vault/work.kdbx",
				Password:       "hunter2",
				AllowPlaintext: true,
			},
		},
	}
	handler := NewToolHandler(cfg)

	result, _, err := handler.ProfileShow(context.Background(), nil, ProfileShowInput{Name: "work"})
	if err != nil {
		t.Fatalf("ProfileShow failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", textContent(t, result))
	}

	text := textContent(t, result)
	if strings.Contains(text, "hunter2") {
		t.Error("password leaked into profile_show output")
	}
	if !strings.Contains(text, `"password": "***"`) {
		t.Errorf("expected redaction marker: %s", text)
	}
}

func TestProfileShow_NotFound(t *testing.T) {
	handler := NewToolHandler(&config.File{
		Profiles: map[string]config.Profile{
			"work": {Database: "/vault/work.kdbx"},
		},
	})

	result, _, err := handler.ProfileShow(context.Background(), nil, ProfileShowInput{Name: "missing"})
	if err != nil {
		t.Fatalf("ProfileShow failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
}

func TestFormatError_Envelope(t *testing.T) {
	handler := NewToolHandler(&config.File{})

	text := handler.formatError(errors.New(errors.CodeAuthFailed, "database rejected the credentials", nil))
	var envelope struct {
		OK    bool `json:"ok"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if envelope.OK {
		t.Error("expected ok=false")
	}
	if envelope.Error.Code != string(errors.CodeAuthFailed) {
		t.Errorf("expected code %s, got %s", errors.CodeAuthFailed, envelope.Error.Code)
	}
}
