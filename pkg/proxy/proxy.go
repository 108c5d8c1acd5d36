// Package proxy is the forwarding tier: it speaks the MCP streamable-http
// protocol towards clients and forwards every tool call to a remote
// analyzer server over plain HTTP.
package proxy

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/xerrors"
)

const (
	serverName      = "jarscope-proxy"
	serverVersion   = "2.0.0"
	protocolVersion = "2024-11-05"

	// Resolution is network-bound and can run for minutes, so the whole
	// forwarded call gets one generous end-to-end timeout.
	forwardTimeout = 5 * time.Minute
	probeTimeout   = 5 * time.Second

	ssePingInterval = 30 * time.Second
)

type Proxy struct {
	remoteURL string
	client    *retryablehttp.Client
	probe     *http.Client
}

func New(remoteURL string) *Proxy {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 10 * time.Second
	client.Logger = slog.Default()
	client.HTTPClient.Timeout = forwardTimeout
	client.ResponseLogHook = func(_ retryablehttp.Logger, resp *http.Response) {
		if resp.StatusCode >= http.StatusInternalServerError {
			slog.Warn("Unexpected remote response", slog.String("url", resp.Request.URL.String()), slog.String("status", resp.Status))
		}
	}

	slog.Info("Remote analyzer", slog.String("url", remoteURL))
	return &Proxy{
		remoteURL: remoteURL,
		client:    client,
		probe:     &http.Client{Timeout: probeTimeout},
	}
}

func (p *Proxy) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware())

	r.GET("/", p.info)
	r.POST("/", p.rpc)
	r.GET("/health", p.health)

	r.GET("/mcp", p.info)
	r.POST("/mcp/tools/list", p.listTools)
	r.POST("/mcp/tools/call", p.callToolHTTP)
	r.GET("/mcp/sse", p.sse)

	// Pre-streamable-http paths kept for older clients.
	r.POST("/mcp/v1/tools/list", p.listTools)
	r.POST("/mcp/v1/tools/call", p.callToolHTTP)
	r.GET("/sse", p.sse)

	return r
}

// Run blocks serving HTTP on addr.
func (p *Proxy) Run(addr string) error {
	slog.Info("Starting MCP proxy", slog.String("addr", addr), slog.String("remote", p.remoteURL))
	if err := p.Router().Run(addr); err != nil {
		return xerrors.Errorf("proxy server error: %w", err)
	}
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "*")
		c.Header("Access-Control-Allow-Headers", "*")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (p *Proxy) info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":             serverName,
		"version":          serverVersion,
		"protocol_version": protocolVersion,
		"capabilities": gin.H{
			"tools":     true,
			"resources": false,
			"prompts":   false,
			"sampling":  false,
		},
		"serverInfo": gin.H{
			"name":    serverName,
			"version": serverVersion,
		},
		"instructions": "MCP server for Maven jar analysis via streamable-http",
	})
}

// health reports degraded when the remote analyzer does not answer its own
// liveness probe.
func (p *Proxy) health(c *gin.Context) {
	remoteHealthy := false
	if resp, err := p.probe.Get(p.remoteURL + "/health"); err == nil {
		remoteHealthy = resp.StatusCode == http.StatusOK
		resp.Body.Close()
	}

	status := "healthy"
	if !remoteHealthy {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":                status,
		"remote_server_healthy": remoteHealthy,
		"remote_server_url":     p.remoteURL,
	})
}

func (p *Proxy) listTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": toolCatalog()})
}

// callToolHTTP is the non-RPC tool invocation endpoint.
func (p *Proxy) callToolHTTP(c *gin.Context) {
	var body struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": codeInvalidParams, "message": err.Error()}})
		return
	}
	if body.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": codeInvalidParams, "message": "Missing tool name"}})
		return
	}

	text, err := p.callTool(body.Name, body.Arguments)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   gin.H{"code": codeInternal, "message": err.Error()},
			"isError": true,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"content": []gin.H{{"type": "text", "text": text}},
		"isError": false,
	})
}

// callTool forwards one tool invocation to the remote analyzer and returns
// the text payload for the MCP envelope. Remote failures are rendered as
// an error document inside the text, mirroring how clients expect tool
// results to degrade.
func (p *Proxy) callTool(name string, args json.RawMessage) (string, error) {
	var path string
	switch name {
	case toolAnalyze:
		path = "/api/analyze"
	case toolDecompile:
		path = "/api/decompile"
	case toolFindAndDecompile:
		path = "/api/find-and-decompile"
	default:
		return "", xerrors.Errorf("unknown tool: %s", name)
	}
	slog.Info("Forwarding tool call", slog.String("tool", name), slog.String("path", path))

	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	text, err := p.forward(path, args)
	if err != nil {
		slog.Error("Forwarding failed", slog.String("tool", name), slog.String("error", err.Error()))
		b, _ := json.Marshal(map[string]string{
			"error":      "Remote server error: " + err.Error(),
			"remote_url": p.remoteURL,
		})
		return string(b), nil
	}
	return text, nil
}

// forward POSTs the JSON body verbatim and returns the remote response
// re-indented. A non-2xx status is an error carrying the remote URL.
func (p *Proxy) forward(path string, body json.RawMessage) (string, error) {
	resp, err := p.client.Post(p.remoteURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", xerrors.Errorf("request to %s failed: %w", p.remoteURL+path, err)
	}
	defer resp.Body.Close()

	var payload json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", xerrors.Errorf("invalid response from %s: %w", p.remoteURL+path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", xerrors.Errorf("%s returned status %d: %s", p.remoteURL+path, resp.StatusCode, string(payload))
	}

	var out bytes.Buffer
	if err := json.Indent(&out, payload, "", "  "); err != nil {
		return string(payload), nil
	}
	return out.String(), nil
}

// sse keeps the event stream open with periodic pings until the client
// disconnects.
func (p *Proxy) sse(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	endpoint, _ := json.Marshal(gin.H{"jsonrpc": "2.0", "method": "notifications/initialized", "params": gin.H{}})
	c.SSEvent("endpoint", string(endpoint))
	c.Writer.Flush()

	ticker := time.NewTicker(ssePingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			slog.Debug("SSE client disconnected")
			return
		case <-ticker.C:
			c.SSEvent("ping", `{"type":"ping"}`)
			c.Writer.Flush()
		}
	}
}
