package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"scribe/internal/errors"
)

// decode unmarshals MCP request arguments into a typed request struct.
// Failures surface as INVALID_REQUEST so bad arguments read the same here as
// on every other surface.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, errors.NewInvalidRequest(fmt.Sprintf("unreadable arguments: %v", err))
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, errors.NewInvalidRequest(fmt.Sprintf("malformed arguments: %v", err))
	}
	return result, nil
}
