package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/tiler/internal/binding"
	"github.com/1broseidon/tiler/internal/engine"
	"github.com/1broseidon/tiler/internal/monitor"
	"github.com/1broseidon/tiler/internal/tiling"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetMonitors CommandType = "GET_MONITORS"
	CommandListWindows CommandType = "LIST_WINDOWS"
	CommandRunAction   CommandType = "RUN_ACTION"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning bool     `json:"daemon_running"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	ConfigPath    string   `json:"config_path,omitempty"`
	Modifier      string   `json:"modifier"`
	Monitors      int      `json:"monitors"`
	ActiveMonitor int      `json:"active_monitor"`
	BoundActions  int      `json:"bound_actions"`
	Grabs         int      `json:"grabs"`
	Warnings      []string `json:"warnings,omitempty"`
}

// BindingInfo is one row entry of the binding table. Target is set for
// region actions, Monitor for screen changes that have a neighbour.
type BindingInfo struct {
	Action  string       `json:"action"`
	Keysym  string       `json:"keysym"`
	Target  *tiling.Rect `json:"target,omitempty"`
	Monitor *int         `json:"monitor,omitempty"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	X        int           `json:"x"`
	Y        int           `json:"y"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Usable   tiling.Rect   `json:"usable"`
	Bindings []BindingInfo `json:"bindings,omitempty"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	ActiveMonitor int                 `json:"active_monitor"`
	Windows       []engine.WindowInfo `json:"windows"`
}

// RunActionPayload represents the payload for RUN_ACTION
type RunActionPayload struct {
	Action string `json:"action"`
}

// NewMonitorsData describes monitors together with their binding rows. A
// nil table yields monitors without bindings.
func NewMonitorsData(monitors []monitor.Monitor, table *binding.Table) MonitorsData {
	data := MonitorsData{Monitors: make([]MonitorInfo, len(monitors))}
	for i, m := range monitors {
		info := MonitorInfo{
			ID:     m.ID,
			Name:   m.Name,
			X:      m.Bounds.X,
			Y:      m.Bounds.Y,
			Width:  m.Bounds.Width,
			Height: m.Bounds.Height,
			Usable: m.Usable,
		}
		if table != nil {
			for _, b := range table.Row(i) {
				info.Bindings = append(info.Bindings, newBindingInfo(b))
			}
		}
		data.Monitors[i] = info
	}
	return data
}

func newBindingInfo(b binding.Binding) BindingInfo {
	info := BindingInfo{Action: b.Action.String(), Keysym: b.Keysym.String()}
	switch b.Payload.Kind {
	case binding.PayloadRect:
		r := b.Payload.Rect
		info.Target = &r
	case binding.PayloadMonitor:
		r, m := b.Payload.Rect, b.Payload.Target
		info.Target = &r
		info.Monitor = &m
	}
	return info
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
