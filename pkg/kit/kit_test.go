package kit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestChain_Order(t *testing.T) {
	var trace []string
	mw := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, req any) (any, error) {
				trace = append(trace, name)
				return next(ctx, req)
			}
		}
	}
	ep := Chain(mw("a"), mw("b"), mw("c"))(func(context.Context, any) (any, error) {
		trace = append(trace, "endpoint")
		return nil, nil
	})
	ep(context.Background(), nil)

	if want := []string{"a", "b", "c", "endpoint"}; !reflect.DeepEqual(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}

func TestRequestID(t *testing.T) {
	echo := func(ctx context.Context, _ any) (any, error) { return GetRequestID(ctx), nil }
	ep := RequestID()(echo)

	got, _ := ep(context.Background(), nil)
	if id, _ := got.(string); len(id) != 36 {
		t.Errorf("generated id = %q", got)
	}
	got, _ = ep(WithRequestID(context.Background(), "fixed"), nil)
	if got != "fixed" {
		t.Errorf("existing id replaced: %v", got)
	}
}

func TestLogging_PassesThrough(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	boom := errors.New("boom")
	ep := Logging(logger, "test")(func(context.Context, any) (any, error) { return 1, boom })
	resp, err := ep(context.Background(), nil)
	if resp != 1 || err != boom {
		t.Errorf("got %v, %v", resp, err)
	}
}

func TestTransportDefault(t *testing.T) {
	if got := GetTransport(context.Background()); got != "http" {
		t.Errorf("default transport = %q", got)
	}
}

func TestMCPHandler(t *testing.T) {
	ep := func(ctx context.Context, req any) (any, error) {
		if req.(string) == "fail" {
			return nil, errors.New("nope")
		}
		return map[string]string{"echo": req.(string), "transport": GetTransport(ctx)}, nil
	}
	decode := func(r mcp.CallToolRequest) (*MCPDecodeResult, error) {
		v, _ := r.GetArguments()["v"].(string)
		if v == "" {
			return nil, errors.New("v is required")
		}
		return &MCPDecodeResult{Request: v}, nil
	}
	h := MCPHandler(ep, decode)

	call := func(args map[string]any) *mcp.CallToolResult {
		var req mcp.CallToolRequest
		req.Params.Arguments = args
		res, err := h(context.Background(), req)
		if err != nil {
			t.Fatalf("handler returned protocol error: %v", err)
		}
		return res
	}

	res := call(map[string]any{"v": "hi"})
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res)
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok || text.Text != `{"echo":"hi","transport":"mcp"}` {
		t.Errorf("content = %+v", res.Content)
	}

	if res := call(map[string]any{}); !res.IsError {
		t.Error("expected tool error for bad arguments")
	}
	if res := call(map[string]any{"v": "fail"}); !res.IsError {
		t.Error("expected tool error for endpoint failure")
	}
}
