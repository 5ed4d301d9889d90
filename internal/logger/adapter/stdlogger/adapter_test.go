package stdlogger_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authdata/authdata/internal/logger"
	"github.com/authdata/authdata/internal/logger/adapter/stdlogger"
)

func TestAdapter(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      logger.Log
		contains []string
		missing  []string
	}{
		{
			name: "no console",
			cfg:  logger.Log{LogLevel: "info", ServiceName: "test", AppName: "test"},
		},
		{
			name:     "console json info",
			cfg:      logger.Log{LogLevel: "info", ServiceName: "test", AppName: "test", Console: logger.Console{Enabled: true}},
			contains: []string{"stdlogger info", "stdlogger warning", "stdlogger error", "stdlogger printf", `"component":"gorm"`},
			missing:  []string{"stdlogger debug"},
		},
		{
			name:     "console writer debug",
			cfg:      logger.Log{LogLevel: "debug", ServiceName: "test", AppName: "test", Console: logger.Console{Enabled: true, UseConsoleWriter: true}},
			contains: []string{"stdlogger debug", "stdlogger info"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := capture(t, func() {
				require.NoError(t, logger.Init(tc.cfg))

				l := stdlogger.New()
				l.Debugf("stdlogger %s", "debug")
				l.Infof("stdlogger %s", "info")
				l.Warningf("stdlogger %s", "warning")
				l.Errorf("stdlogger %s", "error")
				l.WithComponent("gorm").Printf("stdlogger %s\n", "printf")
			})

			if len(tc.contains) == 0 {
				assert.Empty(t, out)
			}

			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}

			for _, s := range tc.missing {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func capture(t *testing.T, fn func()) string {
	t.Helper()

	stdout, stderr := os.Stdout, os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout, os.Stderr = w, w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout, os.Stderr = stdout, stderr

	return <-outC
}
