package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleet-near/hello-near/client"
	"github.com/sleet-near/hello-near/client/config"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("GREETER_HTTP_PORT", "9123")
	t.Setenv("GREETER_CREDENTIALS_DIR", "/tmp/creds")

	cfg, err := NewConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 9123, cfg.HTTPPort)
	assert.Equal(t, ":9123", cfg.Addr())
	assert.Equal(t, "/tmp/creds", cfg.CredentialsDir)
	assert.Equal(t, ShutdownTimeout, cfg.ShutdownTimeout)
}

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("GREETER_HTTP_PORT", "not-a-port")
	t.Setenv("GREETER_CREDENTIALS_DIR", "")
	t.Setenv("HOME", "/home/greeter")

	cfg, err := NewConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPPort, cfg.HTTPPort)
	assert.Equal(t, "/home/greeter/.near-credentials", cfg.CredentialsDir)
}

func TestNewConfigFromFlags(t *testing.T) {
	t.Setenv("GREETER_HTTP_PORT", "9123")
	t.Setenv("GREETER_CREDENTIALS_DIR", "/tmp/creds")

	v := viper.New()
	v.Set("http-port", 9200)
	cfg, err := NewConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.HTTPPort)
	assert.Equal(t, "/tmp/creds", cfg.CredentialsDir)
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	c, err := client.New(config.MustLoad())
	require.NoError(t, err)

	cfg := &Config{HTTPPort: 0, CredentialsDir: t.TempDir(), ShutdownTimeout: time.Second}
	service := NewService(cfg, c, prometheus.NewRegistry(), nil)
	require.NotNil(t, service.Server())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- service.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
}
