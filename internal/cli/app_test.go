package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"arbridge/internal/config"
	"arbridge/internal/manager"
)

func writeAssets(t *testing.T, files map[string]int) string {
	t.Helper()
	dir := t.TempDir()
	for name, size := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, bytes.Repeat([]byte{'x'}, size), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func newTestApp(t *testing.T, assetsDir string) (*App, *httptest.Server) {
	t.Helper()
	cfg := config.Config{AssetsDir: assetsDir}
	cfg.Defaults()
	app, err := NewApp(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv := httptest.NewServer(app.Handler)
	t.Cleanup(func() {
		srv.Close()
		_ = app.Close(context.Background())
	})
	return app, srv
}

func callFlagsFor(srv *httptest.Server) callFlags {
	return callFlags{Server: srv.URL, Timeout: 5 * time.Second}
}

func TestRunCall_JSONAndCBOR(t *testing.T) {
	app, srv := newTestApp(t, writeAssets(t, map[string]int{"statue.glb": 10}))
	ctx := context.Background()
	for _, useCBOR := range []bool{false, true} {
		f := callFlagsFor(srv)
		f.CBOR = useCBOR
		var out bytes.Buffer
		if err := runCall(ctx, "initializeAR", f, &out); err != nil {
			t.Fatalf("initializeAR (cbor=%v): %v", useCBOR, err)
		}
		if !strings.Contains(out.String(), `"result": true`) {
			t.Fatalf("out=%s", out.String())
		}
	}
	f := callFlagsFor(srv)
	f.CBOR = true
	f.Args = `{"modelId":"statue","assetPath":"statue.glb","scale":0.5,"position":[0,1,-2]}`
	if err := runCall(ctx, "loadLocalModel", f, &bytes.Buffer{}); err != nil {
		t.Fatalf("loadLocalModel: %v", err)
	}
	st := app.Manager.Status()
	if len(st.Models) != 1 || st.Models[0].Transform.Scale[0] != 0.5 || st.Models[0].Transform.Position[1] != 1 {
		t.Fatalf("models=%+v", st.Models)
	}
}

func TestRunCall_Query(t *testing.T) {
	_, srv := newTestApp(t, "")
	f := callFlagsFor(srv)
	f.Query = "result.supportedFormats.0"
	var out bytes.Buffer
	if err := runCall(context.Background(), "getARCapabilities", f, &out); err != nil {
		t.Fatalf("call: %v", err)
	}
	if strings.TrimSpace(out.String()) != "gltf" {
		t.Fatalf("out=%q", out.String())
	}
	f.Query = "result.nope"
	if err := runCall(context.Background(), "getARCapabilities", f, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected empty query error")
	}
}

func TestRunCall_ErrorsAreReturned(t *testing.T) {
	_, srv := newTestApp(t, "")
	ctx := context.Background()
	var out bytes.Buffer
	err := runCall(ctx, "startARSession", callFlagsFor(srv), &out)
	if err == nil || !strings.Contains(err.Error(), "INVALID_STATE") {
		t.Fatalf("err=%v", err)
	}
	if !strings.Contains(out.String(), `"code": "INVALID_STATE"`) {
		t.Fatalf("envelope not printed: %s", out.String())
	}
	err = runCall(ctx, "enableFaceMesh", callFlagsFor(srv), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "not implemented") {
		t.Fatalf("err=%v", err)
	}
	f := callFlagsFor(srv)
	f.Args = "{nope"
	if err := runCall(ctx, "initializeAR", f, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected invalid args error")
	}
}

func TestRunCall_NonEnvelopeResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnsupportedMediaType)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "bad type", "code": 415})
	}))
	defer srv.Close()
	err := runCall(context.Background(), "initializeAR", callFlagsFor(srv), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "415") {
		t.Fatalf("err=%v", err)
	}
}

func TestNewApp_UnknownAssetIsRuntimeFailure(t *testing.T) {
	app, _ := newTestApp(t, writeAssets(t, map[string]int{"a.glb": 1}))
	ctx := context.Background()
	if err := app.Manager.Initialize(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	resp := app.Dispatcher.Dispatch(ctx, "loadLocalModel", map[string]any{"modelId": "b", "assetPath": "b.glb"})
	if resp.Error == nil || resp.Error.Code != "RUNTIME_FAILURE" {
		t.Fatalf("resp=%+v", resp)
	}
	if app.Manager.State() != manager.StateInitialized {
		t.Fatalf("state=%s", app.Manager.State())
	}
}

func TestRunAssets(t *testing.T) {
	dir := writeAssets(t, map[string]int{"models/statue.glb": 2048, "readme.txt": 3, "chair.gltf": 10})
	cfg := config.Config{AssetsDir: dir}
	cfg.Defaults()

	var out bytes.Buffer
	if err := runAssets(cfg, false, &out); err != nil {
		t.Fatalf("assets: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "models/statue.glb") || !strings.Contains(s, "2.0 kB") || strings.Contains(s, "readme.txt") {
		t.Fatalf("table=%q", s)
	}

	out.Reset()
	if err := runAssets(cfg, true, &out); err != nil {
		t.Fatalf("assets json: %v", err)
	}
	var body struct {
		Assets []struct {
			Path string `json:"path"`
		} `json:"assets"`
	}
	if err := json.Unmarshal(out.Bytes(), &body); err != nil || len(body.Assets) != 2 || body.Assets[0].Path != "chair.gltf" {
		t.Fatalf("json=%s err=%v", out.String(), err)
	}

	if err := runAssets(config.Config{}, false, &out); err == nil {
		t.Fatalf("expected error without assets dir")
	}
}

func TestRunServe_StopsOnCancel(t *testing.T) {
	cfg := config.Config{Addr: "127.0.0.1:0"}
	cfg.Defaults()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cfg, io.Discard) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
