package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/KaramelBytes/tabstat-cli/internal/batch"
	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"github.com/KaramelBytes/tabstat-cli/internal/history"
)

func newTestServer(t *testing.T, withHistory bool) (*gin.Engine, *batch.Queue) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	q := batch.NewQueue(zaptest.NewLogger(t))
	var store History
	if withHistory {
		s, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
		if err != nil {
			t.Fatalf("open history: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		store = s
	}
	opt := Options{
		CORSOrigins: []string{"http://localhost:3000"},
		Read:        dataset.DefaultOptions(),
		Params:      batch.Params{EmbeddingDim: 1, ToleranceFactor: 0.2},
	}
	return New(q, store, zaptest.NewLogger(t), opt).Router(), q
}

func do(t *testing.T, r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func dataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"a.csv": "Temp,Load\n1,2\n2,4\n3,7\n",
		"b.csv": "Temp,Load\n1,3\n2,2\n3,1\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t, false)
	w := do(t, r, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["status"] != "ok" {
		t.Fatalf("body %s (%v)", w.Body.String(), err)
	}
}

func TestColumns(t *testing.T) {
	r, _ := newTestServer(t, false)
	dir := dataDir(t)
	w := do(t, r, http.MethodGet, "/api/columns?source="+url.QueryEscape(dir), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		File    string   `json:"file"`
		Columns []string `json:"columns"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if filepath.Base(body.File) != "a.csv" || len(body.Columns) != 2 || body.Columns[0] != "Temp" {
		t.Fatalf("unexpected columns: %+v", body)
	}

	if w := do(t, r, http.MethodGet, "/api/columns", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing source: status %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/columns?source="+url.QueryEscape(t.TempDir()), nil); w.Code != http.StatusNotFound {
		t.Fatalf("empty folder: status %d", w.Code)
	}
}

func TestStartRun_MatchesDirectRun(t *testing.T) {
	r, _ := newTestServer(t, true)
	dir := dataDir(t)
	req := RunRequest{Tool: "correlation", Source: dir, Columns: []string{"temp", "load"}}
	w := do(t, r, http.MethodPost, "/api/runs", req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var got batch.Result
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	direct, err := batch.Run(context.Background(), batch.RunConfig{
		Tool: batch.ToolCorrelation, Source: dir, Columns: []string{"temp", "load"}, Read: dataset.DefaultOptions(),
	}, nil, nil)
	if err != nil {
		t.Fatalf("direct run: %v", err)
	}
	if len(got.Table.Rows) != len(direct.Table.Rows) {
		t.Fatalf("rows: http %d, direct %d", len(got.Table.Rows), len(direct.Table.Rows))
	}
	for i := range direct.Table.Rows {
		if got.Table.Rows[i].Line != direct.Table.Rows[i].Line {
			t.Fatalf("row %d: %q != %q", i, got.Table.Rows[i].Line, direct.Table.Rows[i].Line)
		}
	}

	// history
	w = do(t, r, http.MethodGet, "/api/runs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status %d", w.Code)
	}
	var list struct {
		Runs []history.Run `json:"runs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list.Runs) != 1 || list.Runs[0].ID != got.ID {
		t.Fatalf("list: %s (%v)", w.Body.String(), err)
	}
	w = do(t, r, http.MethodGet, "/api/runs/"+got.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status %d", w.Code)
	}
	var d history.Detail
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil || len(d.Records) != 2 {
		t.Fatalf("detail: %s (%v)", w.Body.String(), err)
	}
}

func TestStartRun_Errors(t *testing.T) {
	r, q := newTestServer(t, true)
	dir := dataDir(t)

	if w := do(t, r, http.MethodPost, "/api/runs", RunRequest{Tool: "bogus", Source: dir}); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown tool: status %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/runs", RunRequest{Tool: "crossentropy", Source: dir, Columns: []string{"Temp"}}); w.Code != http.StatusBadRequest {
		t.Fatalf("one column: status %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/runs", map[string]any{"tool": 5}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad payload: status %d", w.Code)
	}

	// Occupy the queue; the unread event channel keeps the worker in flight.
	events, err := q.Submit(context.Background(), batch.RunConfig{
		Tool: batch.ToolCorrelation, Source: dir, Columns: []string{"Temp", "Load"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	w := do(t, r, http.MethodPost, "/api/runs", RunRequest{Tool: "correlation", Source: dir, Columns: []string{"Temp", "Load"}})
	if w.Code != http.StatusConflict {
		t.Fatalf("busy: status %d", w.Code)
	}
	if _, err := batch.Drain(events, nil); err != nil {
		t.Fatalf("drain: %v", err)
	}
}

func TestGetRun_Errors(t *testing.T) {
	r, _ := newTestServer(t, true)
	if w := do(t, r, http.MethodGet, "/api/runs/not-a-uuid", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/runs/"+uuid.NewString(), nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: status %d", w.Code)
	}

	noHist, _ := newTestServer(t, false)
	if w := do(t, noHist, http.MethodGet, "/api/runs", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("history disabled: status %d", w.Code)
	}
}
