package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"autogenmcp/gateway"
	logger "autogenmcp/logger/v2"
)

// stdioSessionID names the single implicit stdio session.
const stdioSessionID = "stdio"

// maxLineBytes bounds a single inbound JSON-RPC frame (4MB).
const maxLineBytes = 4 * 1024 * 1024

// StdioServer serves MCP over newline-delimited JSON on a reader/writer
// pair, normally stdin/stdout. Responses and notifications interleave
// on the writer, one frame per line.
type StdioServer struct {
	router   *Router
	registry *gateway.Registry
	log      logger.Logger

	in  io.Reader
	out io.Writer

	writeMu sync.Mutex
}

// NewStdioServer creates a stdio server over in/out.
func NewStdioServer(router *Router, registry *gateway.Registry, in io.Reader, out io.Writer, log logger.Logger) *StdioServer {
	return &StdioServer{
		router:   router,
		registry: registry,
		log:      log,
		in:       in,
		out:      out,
	}
}

type stdioConn struct {
	srv *StdioServer
}

func (c *stdioConn) ID() string        { return stdioSessionID }
func (c *stdioConn) Transport() string { return "stdio" }

func (c *stdioConn) Send(n gateway.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	return c.srv.writeFrame(payload)
}

func (c *stdioConn) Close() error { return nil }

// Run registers the implicit session and services requests until the
// reader is exhausted or ctx is cancelled.
func (s *StdioServer) Run(ctx context.Context) error {
	conn := &stdioConn{srv: s}
	if err := s.registry.Register(conn); err != nil {
		return err
	}
	defer s.registry.Unregister(stdioSessionID)

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req jsonrpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("discarding unparseable frame", logger.Error(err))
			if err := s.writeResponse(rpcError(nil, codeParseError, "parse error")); err != nil {
				return err
			}
			continue
		}

		resp := s.router.Handle(ctx, req)
		if resp == nil {
			continue
		}
		if err := s.writeResponse(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (s *StdioServer) writeResponse(resp *jsonrpcResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return s.writeFrame(payload)
}

func (s *StdioServer) writeFrame(payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.out.Write(payload); err != nil {
		return err
	}
	_, err := s.out.Write([]byte("\n"))
	return err
}
