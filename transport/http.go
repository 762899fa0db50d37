package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tmaxmax/go-sse"

	"autogenmcp/gateway"
	logger "autogenmcp/logger/v2"
)

// sessionHeader carries the session id on the streamable-HTTP transport.
const sessionHeader = "Mcp-Session-Id"

// StreamableServer serves MCP over a single /mcp endpoint:
//
//	POST   /mcp  submit a JSON-RPC request, response in the body
//	GET    /mcp  open the session's SSE notification stream
//	DELETE /mcp  close the session
//
// The session id travels in the Mcp-Session-Id header. A session is
// assigned on initialize when the client supplies none and echoed back.
type StreamableServer struct {
	router   *Router
	svc      *gateway.Service
	registry *gateway.Registry
	log      logger.Logger
}

// NewStreamableServer creates the streamable-HTTP transport over svc.
func NewStreamableServer(router *Router, svc *gateway.Service, log logger.Logger) *StreamableServer {
	return &StreamableServer{
		router:   router,
		svc:      svc,
		registry: svc.Registry,
		log:      log,
	}
}

// Handler returns the transport's HTTP handler.
func (s *StreamableServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", s.handleMCP)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, "http", s.svc)
	})
	return mux
}

func (s *StreamableServer) handleMCP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodGet:
		s.handleStream(w, r)
	case http.MethodDelete:
		s.handleDelete(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *StreamableServer) handlePost(w http.ResponseWriter, r *http.Request) {
	var req jsonrpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, rpcError(nil, codeParseError, "parse error"))
		return
	}

	sessionID := r.Header.Get(sessionHeader)
	if req.Method == "initialize" && sessionID == "" {
		sessionID = uuid.New().String()
	}
	if sessionID != "" {
		if _, ok := s.registry.Get(sessionID); !ok {
			conn := newStreamConn(sessionID, "http")
			if err := s.registry.Register(conn); err != nil && !errors.Is(err, gateway.ErrDuplicateSession) {
				writeJSON(w, http.StatusInternalServerError, rpcError(req.ID, codeInternalError, err.Error()))
				return
			}
		}
		w.Header().Set(sessionHeader, sessionID)
	}

	resp := s.router.Handle(r.Context(), req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStream attaches an SSE event stream to an existing session so
// the client receives notifications between POSTs.
func (s *StreamableServer) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		http.Error(w, "missing Mcp-Session-Id header", http.StatusBadRequest)
		return
	}
	conn, ok := s.registry.Get(sessionID)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown session: %s", sessionID), http.StatusNotFound)
		return
	}
	sc, ok := conn.(*streamConn)
	if !ok {
		http.Error(w, "session does not support streaming", http.StatusConflict)
		return
	}

	sess, err := sse.Upgrade(w, r)
	if err != nil {
		s.log.Error("failed to upgrade stream", err, logger.String("session_id", sessionID))
		http.Error(w, fmt.Sprintf("failed to upgrade session: %v", err), http.StatusInternalServerError)
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sc.done:
			return
		case payload := <-sc.out:
			msg := sse.Message{Type: sse.Type("message")}
			msg.AppendData(string(payload))
			if err := sess.Send(&msg); err != nil {
				s.log.Warn("failed to write stream message",
					logger.String("session_id", sessionID),
					logger.Error(err))
				return
			}
			if err := sess.Flush(); err != nil {
				return
			}
		case <-keepAlive.C:
			ping := sse.Message{Type: sse.Type("ping")}
			ping.AppendData("keep-alive")
			if err := sess.Send(&ping); err != nil {
				return
			}
			if err := sess.Flush(); err != nil {
				return
			}
		}
	}
}

func (s *StreamableServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		http.Error(w, "missing Mcp-Session-Id header", http.StatusBadRequest)
		return
	}
	_ = s.registry.Close(sessionID)
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
