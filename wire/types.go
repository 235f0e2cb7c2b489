// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import "encoding/json"

// Message type tags used during the authentication handshake. After
// authentication, messages carry no type tag — every inbound line is a
// Request and every outbound line is a Response.
const (
	TypeHello      = "hello"
	TypeHelloOK    = "hello_ok"
	TypeHelloError = "hello_error"
)

// Protocol is the version tag announced in the capability message.
// Callers must treat a different tag as a different protocol, not a
// newer revision of this one.
const Protocol = "stagehand/1"

// Hello is the first message a client sends on a fresh connection.
type Hello struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// HelloOK is the server's reply to a successful hello. It is sent
// exactly once per session, immediately after authentication.
type HelloOK struct {
	Type         string       `json:"type"`
	Capabilities Capabilities `json:"capabilities"`
}

// HelloError is the server's reply to a rejected hello, or to any
// non-hello message received before authentication. The session stays
// open; the client may retry with a corrected hello.
type HelloError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Capabilities declares what the engine supports. Methods is
// exhaustive: a method name absent from the list is unsupported
// regardless of what the caller believes the protocol version implies.
type Capabilities struct {
	Protocol string   `json:"protocol"`
	Methods  []string `json:"methods"`
}

// Request is an authenticated method invocation. The ID is
// caller-assigned; the engine echoes it back verbatim and does not
// enforce uniqueness.
type Request struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the engine's reply to a Request. Exactly one Response is
// produced per Request, in the order the requests were fully received.
//
// Transport-level errors (a line that does not parse as JSON, a
// malformed pre-auth message) are reported with a nil ID: there is no
// request to correlate them with.
type Response struct {
	ID     *int64 `json:"id,omitempty"`
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

// Error is the structured error payload on a failed Response. Message
// begins with one of the E_ code tokens below; Details carries
// method-specific context (the unresolved path, the blocked singleton
// name, and so on).
type Error struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error code tokens. These lead the Message field of an [Error] so
// callers can switch on the failure class without parsing prose.
const (
	CodeParse        = "E_PARSE"
	CodeBadMessage   = "E_BAD_MESSAGE"
	CodeUnsupported  = "E_UNSUPPORTED"
	CodeInvalidParam = "E_INVALID_PARAMS"
	CodeNotFound     = "E_NOT_FOUND"
	CodeDenied       = "E_DENIED"
	CodeConflict     = "E_CONFLICT"
	CodeInternal     = "E_INTERNAL"
	CodeNotConnected = "E_NOT_CONNECTED"
)

// NewError builds an Error with a code-prefixed message.
func NewError(code, message string, details map[string]any) *Error {
	return &Error{
		Message: code + ": " + message,
		Details: details,
	}
}

// Code extracts the leading code token from the error message, or ""
// if the message carries none.
func (e *Error) Code() string {
	for i := 0; i < len(e.Message); i++ {
		if e.Message[i] == ':' {
			return e.Message[:i]
		}
	}
	return ""
}

func (e *Error) Error() string {
	return e.Message
}

// Operation name constants for the full method surface. The methods
// package registers a handler for every one of these; the capability
// announcement lists exactly this set.
const (
	OpPing            = "ping"
	OpHealth          = "health"
	OpOpenScene       = "open_scene"
	OpSaveScene       = "save_scene"
	OpGetCurrentScene = "get_current_scene"
	OpListOpenScenes  = "list_open_scenes"
	OpBeginAction     = "begin_action"
	OpCommitAction    = "commit_action"
	OpAbortAction     = "abort_action"
	OpAddNode         = "add_node"
	OpRemoveNode      = "remove_node"
	OpDuplicateNode   = "duplicate_node"
	OpReparentNode    = "reparent_node"
	OpInstanceScene   = "instance_scene"
	OpSetProperty     = "set_property"
	OpGetProperty     = "get_property"
	OpConnectSignal   = "connect_signal"
	OpDisconnectSignal = "disconnect_signal"
	OpSelectNode      = "selection.select_node"
	OpSelectionClear  = "selection.clear"
	OpSceneTreeQuery  = "scene_tree.query"
	OpFilesystemScan  = "filesystem.scan"
	OpReimportFiles   = "filesystem.reimport_files"
	OpCall            = "call"
	OpSet             = "set"
	OpGet             = "get"
	OpInspectClass    = "inspect_class"
	OpInspectObject   = "inspect_object"
)
