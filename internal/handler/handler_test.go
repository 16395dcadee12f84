package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/CageChen/nativefs/internal/config"
	nfs "github.com/CageChen/nativefs/internal/fs"
	"github.com/CageChen/nativefs/internal/nativefs"
	"github.com/CageChen/nativefs/internal/nativefs/nativefstest"
	"github.com/CageChen/nativefs/internal/watcher"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.SetConfigFilePath(filepath.Join(t.TempDir(), "config.yaml"))
	cfg.Roots = []config.Root{{Path: `C:\work`, Alias: "work"}}
	return cfg
}

func nativeServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	lib := nativefstest.NewMemLibrary()
	lib.AddDir(`C:\work`)
	lib.AddDir(`C:\work\src`)
	lib.AddFile(`C:\work\b.txt`, 3, 0)
	lib.AddFile(`C:\work\A.txt`, 5, nativefs.AttrHidden)
	lib.AddSymlink(`C:\work\link`, `C:\work\b.txt`)
	return NewServer(testConfig(t), nativefstest.LoadedModule(t, lib), opts...)
}

func do(t *testing.T, s *Server, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
}

func TestGetStatus(t *testing.T) {
	w := do(t, nativeServer(t), http.MethodGet, "/api/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var st nativefs.Status
	decode(t, w, &st)
	if !st.Available || !strings.HasSuffix(st.LoadedFrom, "nativefs64.dll") {
		t.Errorf("unexpected status: %+v", st)
	}

	s := NewServer(testConfig(t), nativefstest.UnavailableModule(t))
	w = do(t, s, http.MethodGet, "/api/status", nil)
	decode(t, w, &st)
	if st.Available || st.Reason == "" {
		t.Errorf("unexpected status: %+v", st)
	}
}

func TestGetReport(t *testing.T) {
	s := nativeServer(t)

	w := do(t, s, http.MethodGet, "/api/report", nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("html report: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "<table>") {
		t.Errorf("expected rendered table:\n%s", w.Body.String())
	}

	w = do(t, s, http.MethodGet, "/api/report?format=md", nil)
	if !strings.HasPrefix(w.Body.String(), "# Native filesystem diagnostics") {
		t.Errorf("markdown report:\n%s", w.Body.String())
	}
}

func TestGetInfo(t *testing.T) {
	s := nativeServer(t)

	w := do(t, s, http.MethodGet, "/api/info/work/b.txt", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp InfoResponse
	decode(t, w, &resp)
	if resp.Backend != "native" || resp.Path != "work/b.txt" || resp.Info.Size != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}

	tests := []struct {
		target string
		code   int
	}{
		{"/api/info/work/missing.txt", http.StatusNotFound},
		{"/api/info/other/b.txt", http.StatusNotFound},
		{"/api/info/work/src/../../etc", http.StatusForbidden},
		{"/api/info/work/src%5C..%5Cb.txt", http.StatusForbidden},
	}
	for _, tt := range tests {
		if w := do(t, s, http.MethodGet, tt.target, nil); w.Code != tt.code {
			t.Errorf("%s: status = %d, want %d", tt.target, w.Code, tt.code)
		}
	}
}

func TestGetChildren(t *testing.T) {
	s := nativeServer(t)

	w := do(t, s, http.MethodGet, "/api/children/work", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp ChildrenResponse
	decode(t, w, &resp)
	var names []string
	for _, c := range resp.Children {
		names = append(names, c.Name)
	}
	if got := strings.Join(names, ","); got != "src,A.txt,b.txt,link" {
		t.Errorf("children = %s", got)
	}

	if w := do(t, s, http.MethodGet, "/api/children/work/b.txt", nil); w.Code != http.StatusNotFound {
		t.Errorf("listing a file: status = %d", w.Code)
	}
}

func TestGetSymlink(t *testing.T) {
	s := nativeServer(t)

	w := do(t, s, http.MethodGet, "/api/symlink/work/link", nil)
	var resp SymlinkResponse
	decode(t, w, &resp)
	if w.Code != http.StatusOK || resp.Target != `C:\work\b.txt` {
		t.Errorf("symlink: %d %+v", w.Code, resp)
	}

	w = do(t, s, http.MethodGet, "/api/symlink/work/b.txt", nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "not a symbolic link") {
		t.Errorf("non-link: %d %s", w.Code, w.Body.String())
	}
}

type slowFS struct{ nfs.FileSystem }

func (slowFS) Stat(string) (nfs.FileInfo, error) {
	time.Sleep(200 * time.Millisecond)
	return nfs.FileInfo{}, nil
}

func TestCallTimeout(t *testing.T) {
	s := nativeServer(t, WithFileSystems(func(root string) nfs.FileSystem {
		return slowFS{nfs.NewLocalFS(root)}
	}))
	s.cfg.CallTimeout = config.Duration(10 * time.Millisecond)

	if w := do(t, s, http.MethodGet, "/api/info/work/b.txt", nil); w.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", w.Code)
	}
}

type recordingWatcher struct {
	added   []config.Root
	removed []string
}

func (r *recordingWatcher) AddRoot(root config.Root) { r.added = append(r.added, root) }
func (r *recordingWatcher) RemoveRoot(path string)   { r.removed = append(r.removed, path) }

func TestManageRoots(t *testing.T) {
	rw := &recordingWatcher{}
	s := nativeServer(t, WithWatcher(rw))
	dir := t.TempDir()

	w := do(t, s, http.MethodPost, "/api/roots", AddRootRequest{Path: dir, Alias: "tmp"})
	if w.Code != http.StatusOK {
		t.Fatalf("add: %d %s", w.Code, w.Body.String())
	}
	if len(rw.added) != 1 || rw.added[0].Alias != "tmp" {
		t.Errorf("watcher not notified: %+v", rw.added)
	}
	if _, err := os.Stat(s.cfg.GetConfigFilePath()); err != nil {
		t.Errorf("config not saved: %v", err)
	}

	if w := do(t, s, http.MethodPost, "/api/roots", AddRootRequest{Path: t.TempDir(), Alias: "tmp"}); w.Code != http.StatusConflict {
		t.Errorf("duplicate alias: %d", w.Code)
	}
	if w := do(t, s, http.MethodPost, "/api/roots", AddRootRequest{Path: filepath.Join(dir, "nope")}); w.Code != http.StatusBadRequest {
		t.Errorf("missing path: %d", w.Code)
	}

	w = do(t, s, http.MethodGet, "/api/roots", nil)
	var listed struct {
		Roots []config.Root `json:"roots"`
	}
	decode(t, w, &listed)
	if len(listed.Roots) != 2 {
		t.Fatalf("roots = %+v", listed.Roots)
	}

	zero := 0
	if w := do(t, s, http.MethodDelete, "/api/roots", RemoveRootRequest{Index: &zero}); w.Code != http.StatusOK {
		t.Fatalf("remove: %d %s", w.Code, w.Body.String())
	}
	if len(rw.removed) != 1 || rw.removed[0] != `C:\work` {
		t.Errorf("watcher removals = %v", rw.removed)
	}
	bad := 9
	if w := do(t, s, http.MethodDelete, "/api/roots", RemoveRootRequest{Index: &bad}); w.Code != http.StatusBadRequest {
		t.Errorf("bad index: %d", w.Code)
	}
	if w := do(t, s, http.MethodDelete, "/api/roots", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("missing index: %d", w.Code)
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	s := nativeServer(t)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.WS().Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	info := nfs.FileInfo{Name: "b.txt", Size: 3}
	s.WS().OnFileChange(watcher.Event{Type: watcher.EventWrite, Alias: "work", Rel: "b.txt", Backend: "native", Info: &info})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type    string        `json:"type"`
		Payload ChangePayload `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if msg.Type != "fileChange" || msg.Payload.Event != "update" || msg.Payload.Path != "work/b.txt" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.Payload.Info == nil || msg.Payload.Info.Size != 3 {
		t.Errorf("missing info: %+v", msg.Payload.Info)
	}
}
