package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/backoffice/internal/testutil"
)

func Test_run(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	getwd := func() (string, error) { return t.TempDir(), nil }

	t.Run("stop with signal", func(t *testing.T) {
		port, err := testutil.RandomPort()
		require.NoError(t, err, "failed to get random port to start server")
		listenAddr := fmt.Sprintf("localhost:%d", port)

		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)

		done := make(chan error, 1)
		go func() {
			done <- run(ctx, []string{"JWT_SECRET=secret"}, getwd, []string{
				"--address", listenAddr,
				"--log-level", "debug",
				"--database", pg.DSN,
				"--sweep-interval", "50ms",
			})
		}()

		// Wait for server is ready
		require.Eventually(t, func() bool {
			resp, err := http.Get("http://" + listenAddr + "/readyz")
			if err != nil {
				return false
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			return resp.StatusCode == http.StatusOK
		}, 5*time.Second, 50*time.Millisecond, "server has to become ready")

		cancel()

		select {
		case err := <-done:
			require.NoError(t, err, "on correct stop should not return error")
		case <-time.After(10 * time.Second):
			t.Fatal("app not stopped after context cancelled")
		}
	})

	t.Run("fail without secret", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond) // Half Second
		t.Cleanup(cancel)

		// Try to run without secret key. Must fail
		err := run(ctx, nil, getwd, []string{
			"--log-level", "debug",
			"--database", pg.DSN,
		})

		require.Error(t, err, "config validation has to fail")
	})

	t.Run("fail if address busy", func(t *testing.T) {
		port, err := testutil.RandomPort()
		require.NoError(t, err)
		listenAddr := fmt.Sprintf("localhost:%d", port)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		t.Cleanup(cancel)

		first := make(chan error, 1)
		go func() {
			first <- run(ctx, []string{"JWT_SECRET=secret"}, getwd, []string{"--address", listenAddr, "--database", pg.DSN})
		}()
		require.Eventually(t, func() bool {
			resp, err := http.Get("http://" + listenAddr + "/healthz")
			if err != nil {
				return false
			}
			_ = resp.Body.Close()
			return true
		}, 5*time.Second, 50*time.Millisecond)

		err = run(ctx, []string{"JWT_SECRET=secret"}, getwd, []string{"--address", listenAddr, "--database", pg.DSN})

		require.Error(t, err, "second server can't listen the same address")
		cancel()
		require.NoError(t, <-first)
	})
}
