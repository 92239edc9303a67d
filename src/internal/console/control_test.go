// FILE: devconsole/src/internal/console/control_test.go
package console

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"devconsole/src/internal/core"
	"devconsole/src/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlAPI(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Console.ControlPort = freePort(t)
	startConsole(t, cfg)

	base := fmt.Sprintf("http://127.0.0.1:%d", cfg.Console.ControlPort)
	do := func(method, path, body string) (int, map[string]any) {
		t.Helper()
		req, err := http.NewRequest(method, base+path, strings.NewReader(body))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return resp.StatusCode, out
	}

	t.Run("Status", func(t *testing.T) {
		code, body := do(http.MethodGet, "/status", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "devconsole", body["service"])
	})

	t.Run("ToggleHandler", func(t *testing.T) {
		code, _ := do(http.MethodPost, "/handlers/x/enable", "")
		assert.Equal(t, http.StatusOK, code)

		resp, err := http.Get(base + "/handlers")
		require.NoError(t, err)
		defer resp.Body.Close()
		var list map[string]registry.Info
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		assert.True(t, list["x"].Enabled)

		code, _ = do(http.MethodPost, "/handlers/x/disable", "")
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("UnknownHandler", func(t *testing.T) {
		code, body := do(http.MethodPost, "/handlers/missing/enable", "")
		assert.Equal(t, http.StatusNotFound, code)
		assert.Contains(t, body["error"], core.ErrHandlerNotFound.Error())
	})

	t.Run("File", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "api.log")
		code, _ := do(http.MethodPost, "/file", fmt.Sprintf(`{"path":%q}`, logPath))
		assert.Equal(t, http.StatusOK, code)

		code, body := do(http.MethodGet, "/file", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, logPath, body["path"])

		code, _ = do(http.MethodDelete, "/file", "")
		assert.Equal(t, http.StatusOK, code)

		code, body = do(http.MethodGet, "/file", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, false, body["enabled"])

		code, _ = do(http.MethodPost, "/file", `{"path":""}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("NotFound", func(t *testing.T) {
		code, _ := do(http.MethodGet, "/nope", "")
		assert.Equal(t, http.StatusNotFound, code)
	})
}
