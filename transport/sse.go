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

// keepAliveInterval paces SSE keep-alive comments so idle proxies keep
// the stream open.
const keepAliveInterval = 15 * time.Second

// SSEServer serves MCP over Server-Sent Events:
//
//	GET  /sse?sessionId=<id>   open the event stream
//	POST /message?sessionId=<id>  submit a JSON-RPC request
//	GET  /health               liveness JSON
//	GET  /                     HTML status page
//
// Session ids may be client-supplied; a duplicate id is rejected with
// 409 rather than silently replacing the open stream.
type SSEServer struct {
	router   *Router
	svc      *gateway.Service
	registry *gateway.Registry
	log      logger.Logger
}

// NewSSEServer creates the SSE transport over svc.
func NewSSEServer(router *Router, svc *gateway.Service, log logger.Logger) *SSEServer {
	return &SSEServer{
		router:   router,
		svc:      svc,
		registry: svc.Registry,
		log:      log,
	}
}

// Handler returns the transport's HTTP handler.
func (s *SSEServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sse", s.handleSSE)
	mux.HandleFunc("/message", s.handleMessage)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleIndex)
	return mux
}

func (s *SSEServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	conn := newStreamConn(sessionID, "sse")
	if err := s.registry.Register(conn); err != nil {
		if errors.Is(err, gateway.ErrDuplicateSession) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer s.registry.Unregister(sessionID)

	sess, err := sse.Upgrade(w, r)
	if err != nil {
		s.log.Error("failed to upgrade SSE session", err, logger.String("session_id", sessionID))
		http.Error(w, fmt.Sprintf("failed to upgrade session: %v", err), http.StatusInternalServerError)
		return
	}

	// The endpoint event tells the client where to POST requests for
	// this session.
	endpoint := sse.Message{Type: sse.Type("endpoint")}
	endpoint.AppendData(fmt.Sprintf("/message?sessionId=%s", sessionID))
	if err := sess.Send(&endpoint); err != nil {
		s.log.Error("failed to write endpoint event", err, logger.String("session_id", sessionID))
		return
	}
	if err := sess.Flush(); err != nil {
		return
	}

	s.serveStream(r, sess, conn)
}

// serveStream drains the connection's outbound queue onto the SSE
// session. It is the only writer to the session, so library-level sends
// never race.
func (s *SSEServer) serveStream(r *http.Request, sess *sse.Session, conn *streamConn) {
	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-conn.done:
			return
		case payload := <-conn.out:
			msg := sse.Message{Type: sse.Type("message")}
			msg.AppendData(string(payload))
			if err := sess.Send(&msg); err != nil {
				s.log.Warn("failed to write SSE message",
					logger.String("session_id", conn.ID()),
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

func (s *SSEServer) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId query parameter", http.StatusBadRequest)
		return
	}
	conn, ok := s.registry.Get(sessionID)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown session: %s", sessionID), http.StatusNotFound)
		return
	}

	var req jsonrpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("failed to decode message: %v", err), http.StatusBadRequest)
		return
	}

	resp := s.router.Handle(r.Context(), req)
	if resp != nil {
		// Responses travel back on the session's event stream.
		payload, err := json.Marshal(resp)
		if err == nil {
			if sc, okConn := conn.(*streamConn); okConn {
				if err := sc.enqueue(payload); err != nil {
					s.log.Warn("failed to queue response",
						logger.String("session_id", sessionID),
						logger.Error(err))
				}
			}
		}
	}
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("Accepted"))
}

func (s *SSEServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, "sse", s.svc)
}

func (s *SSEServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeIndexPage(w, "sse", s.svc)
}
