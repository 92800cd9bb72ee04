package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"arbridge/internal/dispatch"
	"arbridge/internal/httpapi"
	"arbridge/internal/manager"
	"arbridge/internal/registry"
	"arbridge/pkg/types"
)

// createTempAssetsDir creates a temporary directory populated with small
// model files and returns its path.
func createTempAssetsDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		p := filepath.Join(dir, filepath.FromSlash(n))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", p, err)
		}
		if err := os.WriteFile(p, []byte("glTF"), 0o644); err != nil {
			t.Fatalf("write temp asset %s: %v", p, err)
		}
	}
	return dir
}

type stack struct {
	srv *httptest.Server
	mgr *manager.Manager
	sim *manager.SimAdapter
}

// newStack wires catalog, simulated runtime, manager, dispatcher and HTTP mux
// the same way the serve command does.
func newStack(t *testing.T, assetsDir string, latency time.Duration) *stack {
	t.Helper()
	sc := manager.SimConfig{Latency: latency}
	var assets httpapi.AssetLister
	if assetsDir != "" {
		cat, err := registry.LoadDir(assetsDir, manager.ARCoreCapabilities().SupportedFormats)
		if err != nil {
			t.Fatalf("load assets: %v", err)
		}
		sc.Assets = cat
		assets = cat
	}
	sim := manager.NewSimAdapter(sc)
	mgr := manager.NewWithConfig(manager.ManagerConfig{Adapter: sim})
	d := dispatch.New(mgr, zerolog.Nop())
	srv := httptest.NewServer(httpapi.NewMux(d, assets))
	t.Cleanup(srv.Close)
	return &stack{srv: srv, mgr: mgr, sim: sim}
}

// call posts a call envelope and returns the HTTP status and decoded response.
func (s *stack) call(t *testing.T, method string, args map[string]any) (int, types.CallResponse) {
	t.Helper()
	b, err := json.Marshal(types.CallRequest{Method: method, Arguments: args})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, body := httpPostJSON(t, s.srv.URL+"/v1/call", b)
	var out types.CallResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("%s: decode %q: %v", method, body, err)
	}
	return resp.StatusCode, out
}

// mustCall fails the test unless the call succeeds.
func (s *stack) mustCall(t *testing.T, method string, args map[string]any) types.CallResponse {
	t.Helper()
	code, resp := s.call(t, method, args)
	if code != http.StatusOK || resp.Error != nil {
		t.Fatalf("%s: status=%d resp=%+v", method, code, resp)
	}
	return resp
}

// wantFail fails the test unless the call fails with the given code and status.
func (s *stack) wantFail(t *testing.T, method string, args map[string]any, code string, status int) {
	t.Helper()
	got, resp := s.call(t, method, args)
	if resp.Error == nil || resp.Error.Code != code || got != status {
		t.Fatalf("%s: status=%d resp=%+v, want %s/%d", method, got, resp, code, status)
	}
}

func (s *stack) status(t *testing.T) types.StatusResponse {
	t.Helper()
	resp, body := httpGet(t, s.srv.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/status=%d", resp.StatusCode)
	}
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return st
}

func httpPostJSON(t *testing.T, url string, body []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}
