package proxy

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON-RPC 2.0 error codes used by the MCP envelope.
const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternal       = -32603
	codeParse          = -32700
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

// rpc handles the streamable-http root endpoint: initialize, tools/list,
// tools/call and the initialized notification.
func (p *Proxy) rpc(c *gin.Context) {
	var req rpcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: codeParse, Message: err.Error()},
		})
		return
	}
	slog.Info("JSON-RPC request", slog.String("method", req.Method))

	switch req.Method {
	case "initialize":
		c.JSON(http.StatusOK, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: gin.H{
				"protocolVersion": protocolVersion,
				"capabilities": gin.H{
					"tools":     gin.H{},
					"resources": gin.H{},
					"prompts":   gin.H{},
				},
				"serverInfo": gin.H{
					"name":    serverName,
					"version": serverVersion,
				},
			},
		})

	case "tools/list":
		c.JSON(http.StatusOK, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  gin.H{"tools": toolCatalog()},
		})

	case "tools/call":
		p.rpcToolCall(c, req)

	case "notifications/initialized":
		slog.Info("Client initialized")
		c.JSON(http.StatusOK, gin.H{"jsonrpc": "2.0"})

	default:
		c.JSON(http.StatusOK, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeMethodNotFound, Message: "Method not found: " + req.Method},
		})
	}
}

func (p *Proxy) rpcToolCall(c *gin.Context, req rpcRequest) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			c.JSON(http.StatusOK, rpcResponse{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error:   &rpcError{Code: codeInvalidParams, Message: err.Error()},
			})
			return
		}
	}
	if params.Name == "" {
		c.JSON(http.StatusOK, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeInvalidParams, Message: "Missing tool name in params"},
		})
		return
	}

	text, err := p.callTool(params.Name, params.Arguments)
	if err != nil {
		c.JSON(http.StatusOK, rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &rpcError{Code: codeInternal, Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: gin.H{
			"content": []gin.H{{"type": "text", "text": text}},
		},
	})
}
