// Package sheetstest provides an in-memory stand-in for the subset of the
// Sheets v4 REST API the relay uses: values.get, values.append and
// values.update.
package sheetstest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"google.golang.org/api/option"
)

// Server is a fake Sheets endpoint. Rows are stored per spreadsheet and per
// tab; column bounds in ranges are ignored.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	data     map[string]map[string][][]interface{}
	failCode int
	requests int
}

// NewServer starts a fake Sheets server. Callers must Close it.
func NewServer() *Server {
	s := &Server{data: make(map[string]map[string][][]interface{})}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// ClientOptions points a Sheets service at this server.
func (s *Server) ClientOptions() []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(s.URL + "/"),
		option.WithHTTPClient(s.Client()),
	}
}

// Rows returns a copy of the rows stored in a tab.
func (s *Server) Rows(spreadsheetID, sheet string) [][]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.data[spreadsheetID][sheet]
	out := make([][]interface{}, len(src))
	for i, row := range src {
		out[i] = append([]interface{}(nil), row...)
	}
	return out
}

// SetRows replaces the contents of a tab.
func (s *Server) SetRows(spreadsheetID, sheet string, rows [][]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab(spreadsheetID)[sheet] = rows
}

// FailWith makes every following request fail with status code. Zero restores
// normal behaviour.
func (s *Server) FailWith(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCode = code
}

// Requests reports how many API calls the server has received.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) tab(spreadsheetID string) map[string][][]interface{} {
	t, ok := s.data[spreadsheetID]
	if !ok {
		t = make(map[string][][]interface{})
		s.data[spreadsheetID] = t
	}
	return t
}

type valueRange struct {
	Range          string          `json:"range,omitempty"`
	MajorDimension string          `json:"majorDimension,omitempty"`
	Values         [][]interface{} `json:"values,omitempty"`
}

// handle serves /v4/spreadsheets/{id}/values/{range}[:append].
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++

	if s.failCode != 0 {
		writeError(w, s.failCode, "backend unavailable")
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/v4/spreadsheets/")
	if !ok {
		writeError(w, http.StatusNotFound, "unknown path "+r.URL.Path)
		return
	}
	spreadsheetID, rng, ok := strings.Cut(rest, "/values/")
	if !ok || spreadsheetID == "" || rng == "" {
		writeError(w, http.StatusNotFound, "unknown path "+r.URL.Path)
		return
	}

	appendOp := false
	if trimmed, found := strings.CutSuffix(rng, ":append"); found {
		rng, appendOp = trimmed, true
	}
	sheet, cells, _ := strings.Cut(rng, "!")

	switch {
	case r.Method == http.MethodGet && !appendOp:
		rows := s.data[spreadsheetID][sheet]
		writeJSON(w, valueRange{Range: rng, MajorDimension: "ROWS", Values: rows})

	case r.Method == http.MethodPost && appendOp:
		var body valueRange
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		t := s.tab(spreadsheetID)
		t[sheet] = append(t[sheet], body.Values...)
		writeJSON(w, map[string]interface{}{
			"spreadsheetId": spreadsheetID,
			"tableRange":    rng,
			"updates": map[string]interface{}{
				"spreadsheetId": spreadsheetID,
				"updatedRows":   len(body.Values),
			},
		})

	case r.Method == http.MethodPut && !appendOp:
		var body valueRange
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		t := s.tab(spreadsheetID)
		start := startRow(cells)
		rows := t[sheet]
		for len(rows) < start+len(body.Values) {
			rows = append(rows, nil)
		}
		for i, row := range body.Values {
			rows[start+i] = row
		}
		t[sheet] = rows
		writeJSON(w, map[string]interface{}{
			"spreadsheetId": spreadsheetID,
			"updatedRange":  rng,
			"updatedRows":   len(body.Values),
		})

	default:
		writeError(w, http.StatusMethodNotAllowed, "unsupported operation")
	}
}

// startRow returns the zero-based first row of an A1 cell range ("A1:D1" ->
// 0, "A:D" -> 0).
func startRow(cells string) int {
	first, _, _ := strings.Cut(cells, ":")
	digits := strings.TrimLeft(first, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0
	}
	return n - 1
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": msg,
			"status":  http.StatusText(code),
		},
	})
}
