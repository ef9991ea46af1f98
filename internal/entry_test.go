package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jly61/knowledge-and-blog/internal/noteservice"
	"github.com/jly61/knowledge-and-blog/internal/testutil"
)

func TestHTTPHandler_HealthAndAPI(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	st := testutil.TestStore(t)
	h := NewHTTPHandler(cfg, st, noteservice.New(st), nil)

	for _, path := range []string{"/health/live", "/health/ready"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
		require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	}

	body, _ := json.Marshal(map[string]string{"title": "Hello"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/notes", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var note noteservice.NoteDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &note))
	require.Equal(t, "local", note.OwnerID)
}

func TestHTTPHandler_ReadyFailsWhenStoreClosed(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	st := testutil.TestStore(t)
	h := NewHTTPHandler(cfg, st, noteservice.New(st), nil)
	require.NoError(t, st.Close())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	var stdout bytes.Buffer
	logger, closer := newLogger(ApplicationConfig{LogFile: LogFileConfig{Path: path, MaxSizeMB: 1}}, &stdout)

	logger.Info("hello", "k", "v")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"hello"`)
	require.Equal(t, string(data), stdout.String())

	logger.Debug("hidden")
	require.False(t, strings.Contains(stdout.String(), "hidden"))
}

func TestRunImportAndExport(t *testing.T) {
	dir := t.TempDir()
	vaultDir := filepath.Join(dir, "vault")
	require.NoError(t, os.MkdirAll(vaultDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(vaultDir, "a.md"), []byte("# A\nsee [[B]]"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(vaultDir, "b.md"), []byte("# B\n"), 0o644))

	cfg := NewDefaultConfig()
	cfg.Database.DSN = filepath.Join(dir, "kb.db")
	cfg.Vault.Path = vaultDir
	require.NoError(t, cfg.Validate())

	var logs bytes.Buffer
	ctx := context.Background()
	sum, err := RunImport(ctx, false, WithConfig(cfg), WithLogOutput(&logs))
	require.NoError(t, err)
	require.Equal(t, 2, sum.Created)

	n, err := RunExport(ctx, filepath.Join(dir, "out"), "", WithConfig(cfg), WithLogOutput(&logs))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	data, err := os.ReadFile(filepath.Join(dir, "out", "a.md"))
	require.NoError(t, err)
	require.Equal(t, "---\ntitle: A\n---\n\n# A\nsee [[B]]", string(data))
}

func TestRunImport_RequiresVault(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	_, err := RunImport(context.Background(), false, WithConfig(cfg))
	require.Error(t, err)
}

func TestSetup_RequiresConfig(t *testing.T) {
	_, _, err := setup(nil)
	require.Error(t, err)
}
