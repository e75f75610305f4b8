package rpc

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type echoParams struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newEchoApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return ReplyError(c, apperrors.ToDomainError(err))
		},
	})
	app.Use(Middleware())
	app.All("/echo", func(c *fiber.Ctx) error {
		var p echoParams
		if err := Bind(c, &p); err != nil {
			return err
		}
		return Reply(c, p)
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return resp.StatusCode, out
}

func TestRawBodyIsParams(t *testing.T) {
	status, out := doRequest(t, newEchoApp(), "POST", "/echo", `{"name":"a","count":2}`)
	if status != 200 {
		t.Fatalf("status = %d", status)
	}
	if out["name"] != "a" || out["count"] != float64(2) {
		t.Fatalf("body = %v", out)
	}
	if _, ok := out["jsonrpc"]; ok {
		t.Fatal("raw request must get a bare reply")
	}
}

func TestEnvelopedCall(t *testing.T) {
	status, out := doRequest(t, newEchoApp(), "POST", "/echo",
		`{"jsonrpc":"2.0","id":7,"method":"call","params":{"name":"b"}}`)
	if status != 200 {
		t.Fatalf("status = %d", status)
	}
	if out["jsonrpc"] != "2.0" || out["id"] != float64(7) {
		t.Fatalf("envelope = %v", out)
	}
	result, ok := out["result"].(map[string]any)
	if !ok || result["name"] != "b" {
		t.Fatalf("result = %v", out["result"])
	}
}

func TestEnvelopedErrorKeepsEnvelope(t *testing.T) {
	status, out := doRequest(t, newEchoApp(), "POST", "/echo",
		`{"jsonrpc":"2.0","id":"x","params":{"count":"many"}}`)
	if status != 400 {
		t.Fatalf("status = %d", status)
	}
	errObj, ok := out["error"].(map[string]any)
	if !ok {
		t.Fatalf("missing error: %v", out)
	}
	if errObj["code"] != float64(400) || errObj["message"] != "invalid value for 'count'" {
		t.Fatalf("error = %v", errObj)
	}
	if out["id"] != "x" {
		t.Fatalf("id = %v", out["id"])
	}
}

func TestEmptyBodyAndQueryMerge(t *testing.T) {
	status, out := doRequest(t, newEchoApp(), "GET", "/echo?name=q", "")
	if status != 200 || out["name"] != "q" {
		t.Fatalf("status=%d body=%v", status, out)
	}
}

func TestInvalidJSON(t *testing.T) {
	status, out := doRequest(t, newEchoApp(), "POST", "/echo", `{"name":`)
	if status != 400 {
		t.Fatalf("status = %d", status)
	}
	errObj := out["error"].(map[string]any)
	if errObj["message"] != "invalid JSON body" {
		t.Fatalf("error = %v", errObj)
	}
}
