package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		name      string
		opts      Options
		wantJSON  bool
		wantDebug bool
	}{
		{name: "production logs json at info", opts: Options{Service: "edificio", Version: "1.2.0", Level: "info"}, wantJSON: true},
		{name: "development logs text", opts: Options{Service: "edificio", Level: "debug", Env: "development"}, wantDebug: true},
		{name: "unknown level falls back to info", opts: Options{Service: "edificio", Level: "verbose"}, wantJSON: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			tc.opts.Output = &buf
			logger := Init(tc.opts)

			logger.Debug("debug line")
			logger.Info("receipt applied", "allocated", 2)

			out := buf.String()
			assert.Equal(t, tc.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")))
			require.Contains(t, out, "receipt applied")
			if tc.wantJSON {
				lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
				var rec map[string]any
				require.NoError(t, json.Unmarshal(lines[len(lines)-1], &rec))
				assert.Equal(t, "edificio", rec["service"])
				if tc.opts.Version != "" {
					assert.Equal(t, tc.opts.Version, rec["version"])
				}
			} else {
				assert.Contains(t, out, "service=edificio")
			}
		})
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithLogger(context.Background(), base)
	ctx = With(ctx, "request_id", "req-1")
	FromContext(ctx).Info("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-1", rec["request_id"])
}

func TestFromContext_DefaultsToSlogDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
