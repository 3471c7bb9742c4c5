package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/symbolmap/internal/dataset"
	"github.com/sells-group/symbolmap/internal/mapview"
	"github.com/sells-group/symbolmap/internal/server"
)

// getFreePort returns a free TCP port on localhost.
func getFreePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestRunServer_Lifecycle(t *testing.T) {
	f, err := os.Open(concertsFixture)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	ds, err := dataset.DecodeGeoJSON(f, dataset.DefaultOptions())
	require.NoError(t, err)
	reg, err := mapview.NewRegistry(ds, mapview.DefaultOptions())
	require.NoError(t, err)

	port := getFreePort(t)
	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           server.New(reg, []string{"*"}),
		ReadHeaderTimeout: time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- runServer(ctx, srv) }()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	var ready bool
	for i := 0; i < 50; i++ {
		resp, err := http.Get(base + "/health")
		if err == nil {
			resp.Body.Close() //nolint:errcheck
			ready = true
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.True(t, ready, "server did not become ready in time")

	resp, err := http.Get(base + "/api/legend/1970_1979")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Attribute string `json:"attribute"`
		Legend    struct {
			Max float64 `json:"max"`
		} `json:"legend"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "1970_1979", body.Attribute)
	assert.Equal(t, 48.0, body.Legend.Max)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestRunServer_ListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close() //nolint:errcheck

	srv := &http.Server{
		Addr:              l.Addr().String(),
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}
	err = runServer(context.Background(), srv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server listen")
}
