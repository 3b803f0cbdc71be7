package rpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/autonomysim/coresim/pkg/apiprovider"
	"github.com/autonomysim/coresim/pkg/errkind"
	"github.com/autonomysim/coresim/pkg/logger"
)

// Request is a JSON-RPC 2.0 request object.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// Response is a JSON-RPC 2.0 response object; exactly one of Result/Error
// is set on any given response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// ResponseError is the JSON-RPC error object; Code maps a spec §7 error
// Kind to a stable negative integer so clients can branch without string
// matching the message.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Handler processes one method's params against the shared ApiProvider and
// returns a JSON-marshalable result or an error.
type Handler func(p *apiprovider.ApiProvider, params json.RawMessage) (interface{}, error)

// Server is RpcServer: it binds a handler per method name, dispatches
// concurrently across a worker pool, and only ever touches shared state
// through ApiProvider's own lock (spec §4.9 — "the server does not block
// the physics loop except through the explicit ApiProvider lock").
type Server struct {
	provider *apiprovider.ApiProvider
	handlers map[string]Handler
	mu       sync.RWMutex
	workers  int
	listener net.Listener
	log      logger.Logger
}

// New builds a Server bound to provider, with a fixed-size worker pool.
func New(provider *apiprovider.ApiProvider, workers int) *Server {
	if workers <= 0 {
		workers = 8
	}
	return &Server{
		provider: provider,
		handlers: make(map[string]Handler),
		workers:  workers,
		log:      logger.New(),
	}
}

// Register binds a method name to a Handler. Registering an existing name
// replaces it.
func (s *Server) Register(method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Serve accepts TCP connections on addr and services them until the
// listener is closed. Each connection is read line-delimited (one
// JSON-RPC object per line), matching the Unreal-side ingress framing of
// spec §6 so the same dispatch core can back both surfaces.
func (s *Server) Serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errkind.Wrap(errkind.TransportError, "rpc listen failed", err)
	}
	s.listener = ln
	sem := make(chan struct{}, s.workers)
	for {
		conn, err := ln.Accept()
		if err != nil {
			return errkind.Wrap(errkind.TransportError, "rpc accept failed", err)
		}
		go func() {
			sem <- struct{}{}
			defer func() { <-sem }()
			s.serveConn(conn)
		}()
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	enc := json.NewEncoder(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := s.dispatch(line)
		if err := enc.Encode(resp); err != nil {
			s.log.Error(fmt.Sprintf("rpc: failed to write response: %v", err))
			return
		}
	}
}

func (s *Server) dispatch(raw []byte) Response {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Response{JSONRPC: "2.0", Error: &ResponseError{Code: -32700, Message: "parse error"}}
	}

	s.mu.RLock()
	handler, ok := s.handlers[req.Method]
	s.mu.RUnlock()
	if !ok {
		return Response{JSONRPC: "2.0", ID: req.ID, Error: &ResponseError{Code: -32601, Message: "method not found: " + req.Method}}
	}

	result, err := handler(s.provider, req.Params)
	if err != nil {
		return Response{JSONRPC: "2.0", ID: req.ID, Error: &ResponseError{Code: errorCode(err), Message: err.Error()}}
	}
	return Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

// errorCode maps an errkind.Kind to a stable JSON-RPC error code in the
// implementation-defined server-error range (-32000 to -32099), keeping
// standard JSON-RPC codes (-32700..-32600) reserved for transport/protocol
// failures.
func errorCode(err error) int {
	return -32000 - int(errkind.KindOf(err))
}
