package server

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/rs/cors"

	"github.com/kongbytes/watchdog/api"
)

// allowCORS sets permissive CORS headers on the read-only endpoints
// so dashboards can query analytics cross-origin.
var allowCORS = cors.New(cors.Options{
	AllowedOrigins: []string{"*"},
	AllowedMethods: []string{"HEAD", "GET"},
	AllowedHeaders: []string{"*"},
})

// HTTPCodedError is an error with an attached HTTP status code.
type HTTPCodedError interface {
	error
	Code() int
}

// CodedError wraps a message with the HTTP status the handler wants
// returned.
func CodedError(code int, msg string) HTTPCodedError {
	return &codedError{msg: msg, code: code}
}

type codedError struct {
	msg  string
	code int
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() int     { return e.code }

// responseWritten is returned by handlers that wrote the response
// themselves, telling wrap to add nothing.
var responseWritten = &struct{}{}

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// HTTPServer wraps a Server and exposes it over the JSON API.
type HTTPServer struct {
	srv        *Server
	mux        *http.ServeMux
	listener   net.Listener
	listenerCh chan struct{}
	logger     hclog.Logger

	// Addr is the bound listen address, available once NewHTTPServer
	// returns.
	Addr string
}

// NewHTTPServer binds the listener, registers every handler and
// starts serving.
func NewHTTPServer(srv *Server, addr string) (*HTTPServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start HTTP listener: %w", err)
	}

	s := &HTTPServer{
		srv:        srv,
		mux:        http.NewServeMux(),
		listener:   ln,
		listenerCh: make(chan struct{}),
		logger:     srv.logger.Named("http"),
		Addr:       ln.Addr().String(),
	}
	s.registerHandlers()

	go func() {
		defer close(s.listenerCh)
		http.Serve(ln, s.mux)
	}()

	return s, nil
}

func (s *HTTPServer) registerHandlers() {
	s.mux.HandleFunc("/api/v1/config", s.wrap(s.ConfigRequest))
	s.mux.HandleFunc("/api/v1/relay/", s.wrap(s.RelayRequest))
	s.mux.Handle("/api/v1/analytics", allowCORS.Handler(http.HandlerFunc(s.wrap(s.AnalyticsRequest))))
	s.mux.Handle("/api/v1/status", allowCORS.Handler(http.HandlerFunc(s.wrap(s.StatusRequest))))
	s.mux.HandleFunc("/api/v1/incidents", s.wrap(s.IncidentsRequest))
	s.mux.HandleFunc("/api/v1/incidents/", s.wrap(s.IncidentRequest))
	s.mux.HandleFunc("/api/v1/alerting/test", s.wrap(s.AlertingTestRequest))
	s.mux.HandleFunc("/api/v1/metrics", s.wrap(s.MetricsRequest))
}

// Shutdown closes the listener and waits for the serve loop to
// return.
func (s *HTTPServer) Shutdown() {
	if s != nil {
		s.logger.Debug("shutting down http server")
		s.listener.Close()
		<-s.listenerCh
	}
}

// wrap authenticates the request, invokes the handler and turns its
// result into a JSON response. A nil result with a nil error becomes
// a 204.
func (s *HTTPServer) wrap(handler func(resp http.ResponseWriter, req *http.Request) (interface{}, error)) http.HandlerFunc {
	return func(resp http.ResponseWriter, req *http.Request) {
		if !s.authenticate(req) {
			s.logger.Warn("request with invalid token", "method", req.Method, "path", req.URL.Path)
			s.writeError(resp, http.StatusUnauthorized, "invalid or missing bearer token")
			return
		}

		obj, err := handler(resp, req)
		if err != nil {
			code := http.StatusInternalServerError
			if coded, ok := err.(HTTPCodedError); ok {
				code = coded.Code()
			}
			s.logger.Error("request failed", "method", req.Method,
				"path", req.URL.Path, "code", code, "error", err)
			s.writeError(resp, code, err.Error())
			return
		}

		s.logger.Debug("request", "method", req.Method, "path", req.URL.Path)

		if obj == responseWritten {
			return
		}
		if obj == nil {
			resp.WriteHeader(http.StatusNoContent)
			return
		}

		buf, err := json.Marshal(obj)
		if err != nil {
			s.writeError(resp, http.StatusInternalServerError, "failed to encode response")
			return
		}
		resp.Header().Set("Content-Type", "application/json")
		resp.Write(buf)
	}
}

// authenticate checks the shared bearer token in constant time.
func (s *HTTPServer) authenticate(req *http.Request) bool {
	header := req.Header.Get("Authorization")
	expected := "Bearer " + s.srv.token
	return subtle.ConstantTimeCompare([]byte(header), []byte(expected)) == 1
}

func (s *HTTPServer) writeError(resp http.ResponseWriter, code int, message string) {
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(code)
	json.NewEncoder(resp).Encode(&errorResponse{Status: code, Message: message})
}

// ConfigRequest serves the normalized config plus its hash. A client
// that already holds the current hash gets a 304 and no body.
func (s *HTTPServer) ConfigRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != http.MethodGet {
		return nil, CodedError(http.StatusMethodNotAllowed, "method not allowed")
	}

	if known := req.URL.Query().Get("hash"); known != "" && known == s.srv.configHash {
		resp.WriteHeader(http.StatusNotModified)
		return responseWritten, nil
	}

	return &api.ConfigResponse{
		Hash:    s.srv.configHash,
		Regions: s.srv.config.Regions,
	}, nil
}

// RelayRequest ingests a batch of group results pushed by a region
// relay.
func (s *HTTPServer) RelayRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != http.MethodPost {
		return nil, CodedError(http.StatusMethodNotAllowed, "method not allowed")
	}

	region := strings.TrimPrefix(req.URL.Path, "/api/v1/relay/")
	if region == "" || strings.Contains(region, "/") {
		return nil, CodedError(http.StatusBadRequest, "missing region name")
	}

	var push api.PushRequest
	if err := json.NewDecoder(req.Body).Decode(&push); err != nil {
		return nil, CodedError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.srv.state.Ingest(region, push.Results, s.srv.now()); err != nil {
		if err == ErrUnknownRegion {
			return nil, CodedError(http.StatusNotFound, fmt.Sprintf("unknown region %q", region))
		}
		return nil, err
	}
	return nil, nil
}

// AnalyticsRequest serves the machine-readable state snapshot.
func (s *HTTPServer) AnalyticsRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return nil, CodedError(http.StatusMethodNotAllowed, "method not allowed")
	}
	return s.srv.state.Analytics(), nil
}

// StatusRequest serves the operator-facing summary.
func (s *HTTPServer) StatusRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return nil, CodedError(http.StatusMethodNotAllowed, "method not allowed")
	}
	snapshot := s.srv.state.Analytics()
	return &api.StatusResponse{
		Regions: snapshot.Regions,
		Groups:  snapshot.Groups,
	}, nil
}

// IncidentsRequest serves the incident ledger.
func (s *HTTPServer) IncidentsRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != http.MethodGet {
		return nil, CodedError(http.StatusMethodNotAllowed, "method not allowed")
	}
	return &api.IncidentsResponse{Incidents: s.srv.state.Incidents()}, nil
}

// IncidentRequest serves a single ledger entry by ID.
func (s *HTTPServer) IncidentRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != http.MethodGet {
		return nil, CodedError(http.StatusMethodNotAllowed, "method not allowed")
	}

	id := strings.TrimPrefix(req.URL.Path, "/api/v1/incidents/")
	inc, ok := s.srv.state.Incident(id)
	if !ok {
		return nil, CodedError(http.StatusNotFound, fmt.Sprintf("unknown incident %q", id))
	}
	return inc, nil
}

// AlertingTestRequest fires one test alert per configured medium.
func (s *HTTPServer) AlertingTestRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != http.MethodPost {
		return nil, CodedError(http.StatusMethodNotAllowed, "method not allowed")
	}
	if err := s.srv.alerters.TestAll(); err != nil {
		return nil, CodedError(http.StatusBadGateway, err.Error())
	}
	return nil, nil
}

// MetricsRequest dumps the in-memory metrics sink.
func (s *HTTPServer) MetricsRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != http.MethodGet {
		return nil, CodedError(http.StatusMethodNotAllowed, "method not allowed")
	}
	return s.srv.inmemSink.DisplayMetrics(resp, req)
}
