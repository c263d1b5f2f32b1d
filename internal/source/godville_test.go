package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godmon/internal/config"
	"godmon/internal/logger"
)

func sourceConfig(engine, stateFile string) config.SourceConfig {
	return config.SourceConfig{Engine: engine, StateFile: stateFile, TimeoutSeconds: 1}
}

func TestGodville_Fetch_TokenURL(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"name":"Almighty","health":100}`))
	}))
	defer server.Close()

	g := NewGodville(server.Client(), logger.NopLogger())
	g.root = server.URL

	body, err := g.Fetch(context.Background(), "Almighty", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "/gods/api/Almighty/s3cret", gotPath)
	assert.Contains(t, string(body), `"health":100`)
}

func TestGodville_Fetch_FallsBackToLegacyURLOn404(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if len(paths) == 1 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"name":"Almighty"}`))
	}))
	defer server.Close()

	g := NewGodville(server.Client(), logger.NopLogger())
	g.root = server.URL

	body, err := g.Fetch(context.Background(), "Almighty", "s3cret")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "/gods/api/Almighty.json", paths[1])
	assert.Contains(t, string(body), "Almighty")
}

func TestGodville_Fetch_ServerErrorIsProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	g := NewGodville(server.Client(), logger.NopLogger())
	g.root = server.URL

	_, err := g.Fetch(context.Background(), "Almighty", "")
	require.Error(t, err)
	assert.Equal(t, KindProtocol, KindOf(err))
	assert.False(t, IsTransient(err))
}

func TestGodville_Fetch_ConnectionRefusedIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listens anymore

	g := NewGodville(http.DefaultClient, logger.NopLogger())
	g.root = server.URL

	_, err := g.Fetch(context.Background(), "Almighty", "")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestGodvilleGame_Fetch_UsesPublicAPI(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"name":"Almighty","max_health":200}`))
	}))
	defer server.Close()

	g := NewGodvilleGame(server.Client())
	g.root = server.URL

	_, err := g.Fetch(context.Background(), "Almighty", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "/gods/api/Almighty.json", gotPath)
}

func TestFileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Almighty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"Almighty"}`), 0o644))

	src := NewFileSource(path)
	body, err := src.Fetch(context.Background(), "Almighty", "")
	require.NoError(t, err)
	assert.Contains(t, string(body), "Almighty")
}

func TestFileSource_Fetch_MissingFileIsTransient(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.json"))
	_, err := src.Fetch(context.Background(), "Almighty", "")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestNew_SelectsEngine(t *testing.T) {
	log := logger.NopLogger()

	src, err := New(sourceConfig("", ""), log)
	require.NoError(t, err)
	assert.Equal(t, "godville", src.ID())

	src, err = New(sourceConfig("godvillegame", ""), log)
	require.NoError(t, err)
	assert.Equal(t, "godvillegame", src.ID())

	src, err = New(sourceConfig("godville", "dump.json"), log)
	require.NoError(t, err)
	assert.Equal(t, "file", src.ID(), "a state file overrides the engine")

	_, err = New(sourceConfig("nonsense", ""), log)
	assert.Error(t, err)
}
