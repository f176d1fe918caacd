package mcp

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kpx-tools/kpx/internal/app"
	"github.com/kpx-tools/kpx/internal/config"
	"github.com/kpx-tools/kpx/internal/credential"
	"github.com/kpx-tools/kpx/internal/errors"
	"github.com/kpx-tools/kpx/internal/keepass"
)

// EntryGetInput represents the input for the entry_get tool
type EntryGetInput struct {
	Entry   string `json:"entry" jsonschema:"Entry title or path inside the database"`
	Profile string `json:"profile" jsonschema:"Profile name to use"`
}

// EntryListInput represents the input for the entry_list tool
type EntryListInput struct {
	Profile string `json:"profile" jsonschema:"Profile name to use"`
}

// ProfileShowInput represents the input for the profile_show tool
type ProfileShowInput struct {
	Name string `json:"name" jsonschema:"Profile name"`
}

// ToolHandler manages MCP tools. The session caches the most recently
// probed connection so repeated tool calls against the same database
// skip the unlock probe.
type ToolHandler struct {
	config  *config.File
	session keepass.Session

	// connect is swappable in tests.
	connect func(ctx context.Context, opts app.ConnectionOptions) (*keepass.Connection, *errors.XError)
}

// NewToolHandler creates a new tool handler
func NewToolHandler(cfg *config.File) *ToolHandler {
	return &ToolHandler{
		config:  cfg,
		connect: app.ResolveConnection,
	}
}

// getProfileNames returns a list of available profile names
func (h *ToolHandler) getProfileNames() []string {
	names := make([]string, 0, len(h.config.Profiles))
	for name := range h.config.Profiles {
		names = append(names, name)
	}
	return names
}

// RegisterTools registers all tools with the MCP server
func (h *ToolHandler) RegisterTools(server *mcp.Server) {
	profileNames := h.getProfileNames()
	profileEnums := make([]any, len(profileNames))
	for i, name := range profileNames {
		profileEnums[i] = name
	}

	// Entry get tool with profile enum
	entryGetSchema := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"entry", "profile"},
		Properties: map[string]*jsonschema.Schema{
			"entry": {
				Type:        "string",
				Description: "Entry title or path inside the database",
			},
			"profile": {
				Type:        "string",
				Description: "Profile name to use",
				Enum:        profileEnums,
			},
		},
	}
	server.AddTool(&mcp.Tool{
		Name:        "entry_get",
		Description: "Fetch a single entry (including its password) from a KeePass database",
		InputSchema: entryGetSchema,
	}, h.entryGetHandler)

	// Entry list tool with profile enum
	entryListSchema := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"profile"},
		Properties: map[string]*jsonschema.Schema{
			"profile": {
				Type:        "string",
				Description: "Profile name to use",
				Enum:        profileEnums,
			},
		},
	}
	server.AddTool(&mcp.Tool{
		Name:        "entry_list",
		Description: "Recursively list entry titles in a KeePass database",
		InputSchema: entryListSchema,
	}, h.entryListHandler)

	// Profile list tool
	mcp.AddTool[struct{}, any](server, &mcp.Tool{
		Name:        "profile_list",
		Description: "List all configured profiles",
	}, h.ProfileList)

	// Profile show tool with profile enum
	profileShowSchema := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"name"},
		Properties: map[string]*jsonschema.Schema{
			"name": {
				Type:        "string",
				Description: "Profile name",
				Enum:        profileEnums,
			},
		},
	}
	server.AddTool(&mcp.Tool{
		Name:        "profile_show",
		Description: "Show profile details",
		InputSchema: profileShowSchema,
	}, h.profileShowHandler)
}

// entryGetHandler is the raw handler for entry_get tool
func (h *ToolHandler) entryGetHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input EntryGetInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return h.errorResult(errors.Wrap(errors.CodeCfgInvalid, "invalid input", nil, err)), nil
	}
	result, _, err := h.EntryGet(ctx, req, input)
	return result, err
}

// entryListHandler is the raw handler for entry_list tool
func (h *ToolHandler) entryListHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input EntryListInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return h.errorResult(errors.Wrap(errors.CodeCfgInvalid, "invalid input", nil, err)), nil
	}
	result, _, err := h.EntryList(ctx, req, input)
	return result, err
}

// profileShowHandler is the raw handler for profile_show tool
func (h *ToolHandler) profileShowHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input ProfileShowInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return h.errorResult(errors.Wrap(errors.CodeCfgInvalid, "invalid input", nil, err)), nil
	}
	result, _, err := h.ProfileShow(ctx, req, input)
	return result, err
}

// EntryGet fetches a single entry through a per-call connection.
func (h *ToolHandler) EntryGet(ctx context.Context, req *mcp.CallToolRequest, input EntryGetInput) (*mcp.CallToolResult, any, error) {
	if input.Entry == "" {
		return h.errorResult(errors.New(errors.CodeCfgInvalid, "entry is required", nil)), nil, nil
	}

	conn, xe := h.open(ctx, input.Profile)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}

	entry, xe := conn.GetEntry(ctx, input.Entry)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	return h.okResult(entry), nil, nil
}

// EntryList lists entry titles through a per-call connection.
func (h *ToolHandler) EntryList(ctx context.Context, req *mcp.CallToolRequest, input EntryListInput) (*mcp.CallToolResult, any, error) {
	conn, xe := h.open(ctx, input.Profile)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}

	listing, xe := conn.ListEntries(ctx)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	return h.okResult(listing), nil, nil
}

// ProfileList lists all profiles
func (h *ToolHandler) ProfileList(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	type profileInfo struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Database    string `json:"database"`
		Backend     string `json:"credential_backend"`
	}

	profiles := make([]profileInfo, 0, len(h.config.Profiles))
	for name, p := range h.config.Profiles {
		backend := p.CredentialBackend
		if backend == "" {
			backend = "keyring"
		}
		profiles = append(profiles, profileInfo{
			Name:        name,
			Description: p.Description,
			Database:    p.Database,
			Backend:     backend,
		})
	}

	return h.okResult(map[string]any{"profiles": profiles}), nil, nil
}

// ProfileShow shows profile details
func (h *ToolHandler) ProfileShow(ctx context.Context, req *mcp.CallToolRequest, input ProfileShowInput) (*mcp.CallToolResult, any, error) {
	profile, ok := h.config.Profiles[input.Name]
	if !ok {
		return h.errorResult(errors.New(errors.CodeCfgInvalid, "profile does not exist", map[string]any{"name": input.Name, "reason": "profile_not_found"})), nil, nil
	}

	// Redact sensitive information
	result := map[string]any{
		"name":               input.Name,
		"description":        profile.Description,
		"database":           profile.Database,
		"keyfile":            profile.KeyFile,
		"exe":                profile.Exe,
		"credential_backend": profile.CredentialBackend,
		"allow_plaintext":    profile.AllowPlaintext,
	}
	if profile.Password != "" {
		result["password"] = "***"
	}
	if profile.CredentialFile != "" {
		result["credential_file"] = profile.CredentialFile
	}
	if profile.OnInvalidCredential != "" {
		result["on_invalid_credential"] = profile.OnInvalidCredential
	}
	if profile.TimeoutSeconds != 0 {
		result["timeout"] = profile.TimeoutSeconds
	}

	return h.okResult(result), nil, nil
}

// open resolves a connection for the named profile, reusing the session
// connection when it already points at the same database. MCP calls are
// non-interactive: a missing stored credential is an error, never a
// prompt, and an unloadable one follows the abort policy.
func (h *ToolHandler) open(ctx context.Context, name string) (*keepass.Connection, *errors.XError) {
	if name == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "profile is required", nil)
	}
	profile, ok := h.config.Profiles[name]
	if !ok {
		return nil, errors.New(errors.CodeCfgInvalid, "profile does not exist", map[string]any{"name": name, "reason": "profile_not_found"})
	}
	if cur, ok := h.session.Current(); ok && cur.Database == profile.Database {
		return cur, nil
	}
	conn, xe := h.connect(ctx, app.ConnectionOptions{
		Database:          profile.Database,
		KeyFile:           profile.KeyFile,
		Exe:               profile.Exe,
		PasswordRef:       profile.Password,
		AllowPlaintext:    profile.AllowPlaintext,
		CredentialBackend: profile.CredentialBackend,
		CredentialFile:    profile.CredentialFile,
		OnInvalid:         credential.OnInvalidAbort,
		TimeoutSeconds:    profile.TimeoutSeconds,
	})
	if xe != nil {
		return nil, xe
	}
	h.session.Set(conn)
	return conn, nil
}

// okResult wraps data in the standard output envelope as JSON content.
func (h *ToolHandler) okResult(data any) *mcp.CallToolResult {
	output := map[string]any{
		"ok":             true,
		"schema_version": 1,
		"data":           data,
	}
	jsonData, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return h.errorResult(errors.Wrap(errors.CodeInternal, "failed to marshal result", nil, err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonData)},
		},
	}
}

func (h *ToolHandler) errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: h.formatError(err)},
		},
	}
}

// formatError formats an error as JSON
func (h *ToolHandler) formatError(err error) string {
	var xe *errors.XError
	if err != nil {
		xe = errors.AsOrWrap(err)
	} else {
		xe = errors.New(errors.CodeInternal, "unknown error", nil)
	}
	output := map[string]any{
		"ok":             false,
		"schema_version": 1,
		"error": map[string]any{
			"code":    xe.Code,
			"message": xe.Message,
			"details": xe.Details,
		},
	}
	jsonData, _ := json.MarshalIndent(output, "", "  ")
	return string(jsonData)
}

// CreateServer creates a new MCP server
func CreateServer(version string, cfg *config.File) (*mcp.Server, error) {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "kpx",
		Version: version,
	}, nil)

	handler := NewToolHandler(cfg)
	handler.RegisterTools(server)

	return server, nil
}
