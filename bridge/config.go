package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sleet-near/hello-near/client/keys"
)

const (
	DefaultHTTPPort = 8090
	ShutdownTimeout = 30 * time.Second

	// EnvPrefix namespaces the environment variables the bridge reads.
	EnvPrefix = "GREETER"
)

// Config holds the bridge settings.
type Config struct {
	HTTPPort        int
	CredentialsDir  string
	ShutdownTimeout time.Duration
}

// NewConfig reads http-port and credentials-dir from v, which also resolves
// GREETER_HTTP_PORT and GREETER_CREDENTIALS_DIR. Unset values fall back to
// port 8090 and ~/.near-credentials. A nil v reads the environment only.
func NewConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	dir, err := getCredentialsDir(v)
	if err != nil {
		return nil, err
	}
	return &Config{
		HTTPPort:        getHTTPPort(v),
		CredentialsDir:  dir,
		ShutdownTimeout: ShutdownTimeout,
	}, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getCredentialsDir(v *viper.Viper) (string, error) {
	if dir := v.GetString("credentials-dir"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate credentials directory: %w", err)
	}
	return filepath.Join(home, keys.DefaultDirName), nil
}

// getHTTPPort returns the HTTP port for the bridge
func getHTTPPort(v *viper.Viper) int {
	if p := v.GetInt("http-port"); p > 0 && p < 65536 {
		return p
	}
	return DefaultHTTPPort
}
