package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCallSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req["jsonrpc"] != "2.0" {
			t.Errorf("jsonrpc = %v, want 2.0", req["jsonrpc"])
		}
		if req["method"] != "eth_chainId" {
			t.Errorf("method = %v, want eth_chainId", req["method"])
		}
		resp := map[string]any{
			"jsonrpc": "2.0",
			"id":      req["id"],
			"result":  "0x14a34",
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := New(srv.URL)

	var result string
	if err := c.Call(context.Background(), "eth_chainId", nil, &result); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result != "0x14a34" {
		t.Errorf("result = %q, want 0x14a34", result)
	}
}

func TestCallRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"error": map[string]any{
				"code":    CodeUserRejected,
				"message": "User rejected the request",
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := New(srv.URL)

	err := c.Call(context.Background(), "eth_requestAccounts", nil, nil)
	if err == nil {
		t.Fatal("Expected an error")
	}

	var rpcErr *Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Expected *Error, got %T: %v", err, err)
	}
	if rpcErr.Code != CodeUserRejected {
		t.Errorf("Code = %d, want %d", rpcErr.Code, CodeUserRejected)
	}
}

func TestCallHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.Call(context.Background(), "eth_blockNumber", nil, nil); err == nil {
		t.Fatal("Expected an error on non-200 status")
	}
}

func TestCallUnreachableEndpoint(t *testing.T) {
	c := New("http://127.0.0.1:1")
	if err := c.Call(context.Background(), "eth_blockNumber", nil, nil); err == nil {
		t.Fatal("Expected an error for an unreachable endpoint")
	}
}

func TestCallContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := New(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Call(ctx, "eth_blockNumber", nil, nil); err == nil {
		t.Fatal("Expected an error for a cancelled context")
	}
}

func TestRequestIDsIncrease(t *testing.T) {
	var ids []float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		ids = append(ids, req["id"].(float64))
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req["id"],
			"result":  "0x0",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	for i := 0; i < 3; i++ {
		var out string
		if err := c.Call(context.Background(), "eth_blockNumber", nil, &out); err != nil {
			t.Fatalf("Call %d failed: %v", i, err)
		}
	}

	if len(ids) != 3 {
		t.Fatalf("Expected 3 requests, got %d", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Errorf("Request IDs must increase: %v", ids)
		}
	}
}
