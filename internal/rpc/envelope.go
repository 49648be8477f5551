// Package rpc implements the JSON-RPC 2.0 gateway. Every application
// operation is a named method dispatched through a single POST /rpc
// endpoint; the method table declares which roles may call each
// method, so authorization happens uniformly at the boundary instead
// of inside handlers.
package rpc

import "encoding/json"

// Request is the JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// ErrorBody is the structured error returned in place of a result.
// Codes follow the reserved JSON-RPC values for protocol failures and
// HTTP-style values for domain errors.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is the JSON-RPC 2.0 response envelope. Exactly one of
// Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *ErrorBody      `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

func resultResponse(id json.RawMessage, result any) Response {
	return Response{JSONRPC: "2.0", Result: result, ID: id}
}

func errorResponse(id json.RawMessage, code int, message string) Response {
	if id == nil {
		id = json.RawMessage("null")
	}
	return Response{JSONRPC: "2.0", Error: &ErrorBody{Code: code, Message: message}, ID: id}
}
