package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipefinder/backend/config"
)

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return fmt.Sprint(l.Addr().(*net.TCPAddr).Port)
}

func TestNew(t *testing.T) {
	srv := New(config.ServerConfig{Host: "localhost", Port: "8080", ReadTimeout: time.Second}, http.NotFoundHandler(), nil)
	assert.Equal(t, "localhost:8080", srv.Addr())
	assert.Equal(t, time.Second, srv.http.ReadTimeout)
}

func TestStartAndShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := New(config.ServerConfig{Host: "127.0.0.1", Port: freePort(t)}, router, nil)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	url := "http://" + srv.Addr() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, <-errCh)
}
