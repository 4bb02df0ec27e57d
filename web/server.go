// Package web serves the live preview frontend over HTTP and carries the
// interaction bridge between the rendered view and the host over a
// WebSocket JSON-RPC channel.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

//go:embed static/*
var staticFS embed.FS

// Host is the editor-side surface the web server drives: buffer access,
// the current rendered view, and the interaction bridge entry points.
type Host interface {
	DocumentPath() string
	ReadBuffer() (string, error)
	WriteBuffer(text string) error
	SaveFile() error
	CurrentView() (passID, html string)
	HandleClick(args []any) error
	HandleHover(uid string, entered bool)
	HandleViewport(anchorUID string, pixelDelta int)
}

// Server provides the preview frontend HTTP + WebSocket server.
type Server struct {
	host     Host
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  []*wsClient
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

type rpcRequest struct {
	ID     any             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     any       `json:"id"`
	Result any       `json:"result,omitempty"`
	Error  *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewServer creates a web server backed by the given host.
func NewServer(host Host) *Server {
	return &Server{
		host: host,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/ws" {
		s.handleWebSocket(w, r)
		return
	}
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		http.Error(w, "static files unavailable", 500)
		return
	}
	http.FileServer(http.FS(sub)).ServeHTTP(w, r)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	client := &wsClient{id: ulid.Make().String(), conn: conn}
	s.mu.Lock()
	s.clients = append(s.clients, client)
	s.mu.Unlock()
	log.Printf("web: client %s connected", client.id)

	defer func() {
		conn.Close()
		s.mu.Lock()
		for i, c := range s.clients {
			if c == client {
				s.clients = append(s.clients[:i], s.clients[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		log.Printf("web: client %s disconnected", client.id)
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req rpcRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			continue
		}
		resp := s.handleRPC(req)
		data, _ := json.Marshal(resp)
		client.mu.Lock()
		_ = conn.WriteMessage(websocket.TextMessage, data)
		client.mu.Unlock()
	}
}

func (s *Server) handleRPC(req rpcRequest) rpcResponse {
	switch req.Method {
	case "readBuffer":
		return s.rpcReadBuffer(req)
	case "writeBuffer":
		return s.rpcWriteBuffer(req)
	case "saveFile":
		return s.rpcSaveFile(req)
	case "view":
		return s.rpcView(req)
	case "click":
		return s.rpcClick(req)
	case "hover":
		return s.rpcHover(req)
	case "viewport":
		return s.rpcViewport(req)
	default:
		return rpcResponse{
			ID:    req.ID,
			Error: &rpcError{Code: -32601, Message: fmt.Sprintf("unknown method: %s", req.Method)},
		}
	}
}

func (s *Server) rpcReadBuffer(req rpcRequest) rpcResponse {
	text, err := s.host.ReadBuffer()
	if err != nil {
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: -32000, Message: err.Error()}}
	}
	return rpcResponse{ID: req.ID, Result: map[string]string{
		"text": text,
		"path": s.host.DocumentPath(),
	}}
}

func (s *Server) rpcWriteBuffer(req rpcRequest) rpcResponse {
	var p struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: -32602, Message: err.Error()}}
	}
	if err := s.host.WriteBuffer(p.Text); err != nil {
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: -32000, Message: err.Error()}}
	}
	return rpcResponse{ID: req.ID, Result: map[string]string{"status": "ok"}}
}

func (s *Server) rpcSaveFile(req rpcRequest) rpcResponse {
	if err := s.host.SaveFile(); err != nil {
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: -32000, Message: err.Error()}}
	}
	return rpcResponse{ID: req.ID, Result: map[string]string{"status": "saved"}}
}

func (s *Server) rpcView(req rpcRequest) rpcResponse {
	passID, html := s.host.CurrentView()
	return rpcResponse{ID: req.ID, Result: map[string]string{
		"passId": passID,
		"html":   html,
	}}
}

// rpcClick forwards the positional click payload to the bridge. The bridge
// owns validation; a malformed payload is acknowledged but dropped.
func (s *Server) rpcClick(req rpcRequest) rpcResponse {
	var args []any
	if err := json.Unmarshal(req.Params, &args); err != nil {
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: -32602, Message: err.Error()}}
	}
	if err := s.host.HandleClick(args); err != nil {
		log.Printf("web: dropped click: %v", err)
	}
	return rpcResponse{ID: req.ID, Result: map[string]string{"status": "ok"}}
}

func (s *Server) rpcHover(req rpcRequest) rpcResponse {
	var p struct {
		UID     string `json:"uid"`
		Entered bool   `json:"entered"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: -32602, Message: err.Error()}}
	}
	s.host.HandleHover(p.UID, p.Entered)
	return rpcResponse{ID: req.ID, Result: map[string]string{"status": "ok"}}
}

func (s *Server) rpcViewport(req rpcRequest) rpcResponse {
	var p struct {
		AnchorUID  string `json:"anchorUid"`
		PixelDelta int    `json:"pixelDelta"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: -32602, Message: err.Error()}}
	}
	s.host.HandleViewport(p.AnchorUID, p.PixelDelta)
	return rpcResponse{ID: req.ID, Result: map[string]string{"status": "ok"}}
}

// Broadcast sends a notification to all connected WebSocket clients.
func (s *Server) Broadcast(method string, params any) {
	msg, err := json.Marshal(map[string]any{
		"method": method,
		"params": params,
	})
	if err != nil {
		return
	}
	s.mu.Lock()
	clients := append([]*wsClient(nil), s.clients...)
	s.mu.Unlock()

	for _, c := range clients {
		c.mu.Lock()
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
		c.mu.Unlock()
	}
}
