package fiber_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authdata/authdata/internal/logger"
	adapter "github.com/authdata/authdata/internal/logger/adapter/fiber"
)

type accessLine struct {
	IP     string `json:"IP"`
	Status int    `json:"status"`
	URI    string `json:"URI"`
	Method string `json:"method"`
	Host   string `json:"host"`
	Error  string `json:"error"`
}

func consoleConfig() adapter.Config {
	return adapter.Config{
		Config: logger.Log{
			EnableAccessLogToConsole: true,
			Console:                  logger.Console{Enabled: true},
		},
	}
}

func TestNew(t *testing.T) {
	checkAlive := consoleConfig()
	checkAlive.Config.DisableCheckAlive = true
	checkAlive.CheckAliveURI = "/checkalive"

	tests := []struct {
		name       string
		config     adapter.Config
		targetPath string
		want       *accessLine
	}{
		{
			name:       "no output without console",
			targetPath: "/",
		},
		{
			name:       "root",
			config:     consoleConfig(),
			targetPath: "/",
			want:       &accessLine{Status: 200, URI: "/", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:       "query string is kept",
			config:     consoleConfig(),
			targetPath: "/api/1/query?username=bar",
			want:       &accessLine{Status: 200, URI: "/api/1/query?username=bar", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:       "unknown route",
			config:     consoleConfig(),
			targetPath: "/missing",
			want:       &accessLine{Status: 404, URI: "/missing", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:       "handler error",
			config:     consoleConfig(),
			targetPath: "/fail",
			want:       &accessLine{Status: 503, URI: "/fail", Method: fiber.MethodGet, Host: "example.com", Error: "upstream down"},
		},
		{
			name:       "checkalive skipped",
			config:     checkAlive,
			targetPath: "/checkalive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := serve(t, tt.targetPath, tt.config)

			if tt.want == nil {
				assert.Empty(t, output)

				return
			}

			require.NotEmpty(t, output)

			var got accessLine
			require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(output)), &got))
			assert.NotEmpty(t, got.IP)
			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.URI, got.URI)
			assert.Equal(t, tt.want.Method, got.Method)
			assert.Equal(t, tt.want.Host, got.Host)
			assert.Contains(t, got.Error, tt.want.Error)
		})
	}
}

func TestAccessFile(t *testing.T) {
	dir := t.TempDir()

	cfg := adapter.Config{Config: logger.Log{
		File: logger.LogFile{Enabled: true, Path: dir, AccessLog: "access.log"},
	}}

	app := newApp(cfg)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/1/user?municipality=Foo", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Performance"))

	content, err := os.ReadFile(filepath.Join(dir, "access.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"URI":"/api/1/user?municipality=Foo"`)
}

func newApp(cfg adapter.Config) *fiber.App {
	app := fiber.New(fiber.Config{CaseSensitive: true, Immutable: true})
	app.Use(adapter.New(cfg))

	ok := func(ctx fiber.Ctx) error { return ctx.SendString("ok") }

	app.Get("/", ok)
	app.Get("/checkalive", ok)
	app.Get("/api/1/query", ok)
	app.Get("/api/1/user", ok)
	app.Get("/fail", func(fiber.Ctx) error {
		return fiber.NewError(fiber.StatusServiceUnavailable, "upstream down")
	})

	return app
}

func serve(t *testing.T, targetPath string, cfg adapter.Config) string {
	t.Helper()

	stdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	app := newApp(cfg)
	_, err = app.Test(httptest.NewRequest(fiber.MethodGet, targetPath, nil), fiber.TestConfig{Timeout: 10 * time.Second})

	_ = w.Close()
	os.Stdout = stdout

	out := <-outC
	require.NoError(t, err)

	return out
}
