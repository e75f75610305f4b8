// Package rpc accepts request bodies either as raw JSON objects or wrapped in
// a JSON-RPC 2.0 envelope, and answers in the same shape the caller used.
package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	// Version is the only JSON-RPC version recognised.
	Version = "2.0"

	localsKey = "rpc_request"
)

// Request is the decoded call. Params always holds an object, possibly empty.
type Request struct {
	Enveloped bool
	ID        json.RawMessage
	Params    map[string]json.RawMessage
}

// Response is the JSON-RPC 2.0 reply.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the error object carried by both envelope styles.
type Error struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Middleware parses the body and stores the call in the request locals. GET
// query values are merged into the params without overriding body values.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parse(c.Body())
		if req != nil {
			c.Locals(localsKey, req)
		}
		if err != nil {
			return err
		}
		if c.Method() == fiber.MethodGet {
			for key, value := range c.Queries() {
				if _, ok := req.Params[key]; ok {
					continue
				}
				encoded, _ := json.Marshal(value)
				req.Params[key] = encoded
			}
		}
		return c.Next()
	}
}

func parse(body []byte) (*Request, error) {
	req := &Request{Params: map[string]json.RawMessage{}}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return req, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewValidationError("invalid JSON body", nil)
	}

	var version string
	if v, ok := raw["jsonrpc"]; ok {
		_ = json.Unmarshal(v, &version)
	}
	if version != Version {
		if raw != nil {
			req.Params = raw
		}
		return req, nil
	}

	req.Enveloped = true
	req.ID = raw["id"]
	params := bytes.TrimSpace(raw["params"])
	if len(params) == 0 || bytes.Equal(params, []byte("null")) {
		return req, nil
	}
	if err := json.Unmarshal(params, &req.Params); err != nil || req.Params == nil {
		req.Params = map[string]json.RawMessage{}
		return req, apperrors.NewValidationError("params must be a JSON object", nil)
	}
	return req, nil
}

// From returns the call parsed by Middleware. Routes mounted without it see an
// empty raw request.
func From(c *fiber.Ctx) *Request {
	if req, ok := c.Locals(localsKey).(*Request); ok {
		return req
	}
	return &Request{Params: map[string]json.RawMessage{}}
}

// Bind decodes the params into dst. Type mismatches are reported against the
// offending parameter name.
func Bind(c *fiber.Ctx, dst any) error {
	data, err := json.Marshal(From(c).Params)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperrors.NewValidationError(
				fmt.Sprintf("invalid value for '%s'", typeErr.Field),
				map[string]any{"field": typeErr.Field},
			)
		}
		return apperrors.NewValidationError("invalid parameters", nil)
	}
	return nil
}

// Reply writes result with status 200, wrapped in an envelope when the call
// arrived in one.
func Reply(c *fiber.Ctx, result any) error {
	req := From(c)
	if !req.Enveloped {
		return c.JSON(result)
	}
	return c.JSON(Response{JSONRPC: Version, ID: idOrNull(req.ID), Result: result})
}

// ReplyError writes a domain error. The HTTP status equals the error code.
func ReplyError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	rpcErr := &Error{
		Code:    domainErr.HTTPStatus,
		Message: domainErr.Message,
		Data:    domainErr.Details,
	}
	c.Status(domainErr.HTTPStatus)

	req := From(c)
	if !req.Enveloped {
		return c.JSON(fiber.Map{"error": rpcErr})
	}
	return c.JSON(Response{JSONRPC: Version, ID: idOrNull(req.ID), Error: rpcErr})
}

func idOrNull(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}
