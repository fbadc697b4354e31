package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brand-loop/creatives/internal/session"
	"github.com/brand-loop/creatives/internal/tools"
)

// JSON-RPC 2.0 request
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// JSON-RPC 2.0 response
type jsonRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MCP tools/list result
type toolsListResult struct {
	Tools      []mcpTool `json:"tools"`
	NextCursor *string   `json:"nextCursor,omitempty"`
}

type mcpTool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema inputSchema `json:"inputSchema"`
}

type inputSchema struct {
	Type       string                `json:"type"`
	Properties map[string]schemaProp `json:"properties"`
	Required   []string              `json:"required,omitempty"`
}

type schemaProp struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// MCP tools/call result
type toolsCallResult struct {
	Content []contentItem `json:"content"`
	IsError bool          `json:"isError"`
}

type contentItem struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// defaultSessionID is used when the agent runtime passes no session_id.
const defaultSessionID = "default"

// Server implements MCP JSON-RPC 2.0 over HTTP (tools/list and tools/call)
// in front of the creative toolbox. Every generation tool returns plain
// text; load_artifact returns image content the agent can inspect.
type Server struct {
	toolbox *tools.Toolbox
}

// NewServer returns a new MCP server backed by the toolbox.
func NewServer(toolbox *tools.Toolbox) *Server {
	return &Server{toolbox: toolbox}
}

// Handler returns the HTTP handler for JSON-RPC requests.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveJSONRPC)
}

func (s *Server) serveJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req jsonRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRPCError(w, req.ID, -32700, "Parse error")
		return
	}
	if req.JSONRPC != "2.0" {
		writeRPCError(w, req.ID, -32600, "Invalid Request")
		return
	}

	var result interface{}
	var rpcErr *rpcError
	switch req.Method {
	case "tools/list":
		result, rpcErr = s.handleToolsList()
	case "tools/call":
		result, rpcErr = s.handleToolsCall(r.Context(), req.Params)
	default:
		writeRPCError(w, req.ID, -32601, "Method not found")
		return
	}

	if rpcErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Error: rpcErr})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: result})
}

func (s *Server) handleToolsList() (interface{}, *rpcError) {
	sessionProp := schemaProp{Type: "string", Description: "Conversation session id (defaults to 'default')"}
	return &toolsListResult{
		Tools: []mcpTool{
			{
				Name:        "generate_image",
				Description: "Generate a new marketing image from a prompt; the result is saved as a versioned artifact",
				InputSchema: inputSchema{
					Type: "object",
					Properties: map[string]schemaProp{
						"prompt":       {Type: "string", Description: "A detailed description of the image to generate"},
						"aspect_ratio": {Type: "string", Description: "Desired aspect ratio, e.g. '1:1', '16:9' (default '1:1')"},
						"text_overlay": {Type: "string", Description: "Text to overlay on the image"},
						"asset_name":   {Type: "string", Description: "Base name for the marketing asset (versioned automatically)"},
						"session_id":   sessionProp,
					},
					Required: []string{"prompt"},
				},
			},
			{
				Name:        "edit_image",
				Description: "Edit an existing image artifact; the result is saved as the next version of the asset",
				InputSchema: inputSchema{
					Type: "object",
					Properties: map[string]schemaProp{
						"artifact_filename": {Type: "string", Description: "Filename of the image artifact to edit"},
						"prompt":            {Type: "string", Description: "Instructions describing only the desired changes"},
						"aspect_ratio":      {Type: "string", Description: "Output aspect ratio: '1:1', '16:9', '9:16', '4:5', '5:4', '2:3' or '3:2'"},
						"asset_name":        {Type: "string", Description: "Optional asset name for the new version"},
						"session_id":        sessionProp,
					},
					Required: []string{"artifact_filename", "prompt", "aspect_ratio"},
				},
			},
			{
				Name:        "generate_video",
				Description: "Animate a reference image into a short video; use reference 'latest' for the most recent image",
				InputSchema: inputSchema{
					Type: "object",
					Properties: map[string]schemaProp{
						"prompt":                   {Type: "string", Description: "How to animate the reference image"},
						"asset_name":               {Type: "string", Description: "Base name for the marketing asset (versioned automatically)"},
						"reference_image_filename": {Type: "string", Description: "Reference image filename, or 'latest'"},
						"session_id":               sessionProp,
					},
					Required: []string{"prompt", "reference_image_filename"},
				},
			},
			{
				Name:        "list_asset_versions",
				Description: "List all marketing assets and their versions created in this session",
				InputSchema: inputSchema{
					Type: "object",
					Properties: map[string]schemaProp{
						"session_id": sessionProp,
					},
				},
			},
			{
				Name:        "load_artifact",
				Description: "Load a previously generated artifact so it can be inspected",
				InputSchema: inputSchema{
					Type: "object",
					Properties: map[string]schemaProp{
						"filename":   {Type: "string", Description: "Artifact filename to load"},
						"session_id": sessionProp,
					},
					Required: []string{"filename"},
				},
			},
		},
	}, nil
}

type toolsCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

func (s *Server) handleToolsCall(ctx context.Context, paramsRaw json.RawMessage) (interface{}, *rpcError) {
	var params toolsCallParams
	if err := json.Unmarshal(paramsRaw, &params); err != nil {
		return nil, &rpcError{Code: -32602, Message: "Invalid params"}
	}

	sessionID := getStr(params.Arguments, "session_id")
	if sessionID == "" {
		sessionID = defaultSessionID
	}
	sess := s.toolbox.Sessions().Get(ctx, sessionID)

	switch params.Name {
	case "generate_image":
		result := s.toolbox.GenerateImage(ctx, sess, tools.GenerateImageInput{
			Prompt:      getStr(params.Arguments, "prompt"),
			AspectRatio: getStr(params.Arguments, "aspect_ratio"),
			TextOverlay: getStr(params.Arguments, "text_overlay"),
			AssetName:   getStr(params.Arguments, "asset_name"),
		})
		return textResult(result), nil
	case "edit_image":
		result := s.toolbox.EditImage(ctx, sess, tools.EditImageInput{
			ArtifactFilename: getStr(params.Arguments, "artifact_filename"),
			Prompt:           getStr(params.Arguments, "prompt"),
			AspectRatio:      getStr(params.Arguments, "aspect_ratio"),
			AssetName:        getStr(params.Arguments, "asset_name"),
		})
		return textResult(result), nil
	case "generate_video":
		result := s.toolbox.GenerateVideo(ctx, sess, tools.GenerateVideoInput{
			Prompt:                 getStr(params.Arguments, "prompt"),
			AssetName:              getStr(params.Arguments, "asset_name"),
			ReferenceImageFilename: getStr(params.Arguments, "reference_image_filename"),
		})
		return textResult(result), nil
	case "list_asset_versions":
		return textResult(s.toolbox.ListAssetVersions(sess)), nil
	case "load_artifact":
		return s.callLoadArtifact(ctx, sess, params.Arguments)
	default:
		return nil, &rpcError{Code: -32602, Message: "Unknown tool: " + params.Name}
	}
}

func (s *Server) callLoadArtifact(ctx context.Context, sess *session.Session, args map[string]interface{}) (interface{}, *rpcError) {
	filename := getStr(args, "filename")
	artifact, err := s.toolbox.LoadArtifact(ctx, sess, filename)
	if err != nil {
		return &toolsCallResult{
			Content: []contentItem{{Type: "text", Text: "Could not load artifact: " + err.Error()}},
			IsError: true,
		}, nil
	}
	return &toolsCallResult{
		Content: []contentItem{{
			Type:     imageContentType(artifact.MimeType),
			Data:     base64.StdEncoding.EncodeToString(artifact.Data),
			MimeType: artifact.MimeType,
		}},
		IsError: false,
	}, nil
}

func getStr(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// textResult wraps a tool's string outcome as MCP text content. Tool
// failures are full results, not RPC errors: the agent relays them
// conversationally.
func textResult(text string) *toolsCallResult {
	return &toolsCallResult{
		Content: []contentItem{{Type: "text", Text: text}},
		IsError: false,
	}
}

// imageContentType maps a MIME type to the MCP content type.
func imageContentType(mimeType string) string {
	if strings.HasPrefix(mimeType, "image/") {
		return "image"
	}
	return "resource"
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeRPCError(w http.ResponseWriter, id interface{}, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}
