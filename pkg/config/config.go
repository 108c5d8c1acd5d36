package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults mirror the reference deployment: analyzer server on 8000,
// proxy on 8001, forwarding to a local analyzer.
const (
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = "8000"
	DefaultProxyHost  = "0.0.0.0"
	DefaultProxyPort  = "8001"
	DefaultRemoteURL  = "http://localhost:8000"
)

type Config struct {
	ServerHost string
	ServerPort string
	ProxyHost  string
	ProxyPort  string

	// RemoteServerURL is where the proxy forwards tool calls.
	RemoteServerURL string

	MavenHome  string // optional; mvn from PATH when empty
	MavenScope string // resolver classpath scope, default "compile"
	JavapPath  string // optional; javap from PATH when empty

	DecompileWorkers int64
}

// Load reads an optional .env file and then the environment. Missing keys
// fall back to defaults; nothing here is validated beyond parse errors.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Unable to load .env", slog.String("error", err.Error()))
	}

	return Config{
		ServerHost:       envOr("SERVER_HOST", DefaultServerHost),
		ServerPort:       envOr("SERVER_PORT", DefaultServerPort),
		ProxyHost:        envOr("PROXY_HOST", DefaultProxyHost),
		ProxyPort:        envOr("PROXY_PORT", DefaultProxyPort),
		RemoteServerURL:  envOr("REMOTE_SERVER_URL", DefaultRemoteURL),
		MavenHome:        os.Getenv("MAVEN_HOME"),
		MavenScope:       os.Getenv("MAVEN_SCOPE"),
		JavapPath:        os.Getenv("JAVAP_PATH"),
		DecompileWorkers: envInt64("DECOMPILE_WORKERS", 0),
	}
}

func (c Config) ServerAddr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func (c Config) ProxyAddr() string {
	return c.ProxyHost + ":" + c.ProxyPort
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("Invalid integer in environment", slog.String("key", key), slog.String("value", v))
		return def
	}
	return n
}
