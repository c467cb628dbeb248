package orders

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestHandler() *Handler {
	return NewHandler(nil, nil, nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing orderItems", `{"shippingAddress1":"1 Main St","city":"Lisbon","zip":"1000","country":"PT","phone":"555","status":"pending","user":"u1"}`},
		{"orderItems not a list", `{"orderItems":"nope","shippingAddress1":"1 Main St","city":"Lisbon","zip":"1000","country":"PT","phone":"555","status":"pending","user":"u1"}`},
		{"zero quantity", `{"orderItems":[{"product":"p1","quantity":0}],"shippingAddress1":"1 Main St","city":"Lisbon","zip":"1000","country":"PT","phone":"555","status":"pending","user":"u1"}`},
		{"negative quantity", `{"orderItems":[{"product":"p1","quantity":-2}],"shippingAddress1":"1 Main St","city":"Lisbon","zip":"1000","country":"PT","phone":"555","status":"pending","user":"u1"}`},
		{"item without product", `{"orderItems":[{"quantity":1}],"shippingAddress1":"1 Main St","city":"Lisbon","zip":"1000","country":"PT","phone":"555","status":"pending","user":"u1"}`},
		{"missing shippingAddress1", `{"orderItems":[{"product":"p1","quantity":1}],"city":"Lisbon","zip":"1000","country":"PT","phone":"555","status":"pending","user":"u1"}`},
		{"missing city", `{"orderItems":[{"product":"p1","quantity":1}],"shippingAddress1":"1 Main St","zip":"1000","country":"PT","phone":"555","status":"pending","user":"u1"}`},
		{"missing zip", `{"orderItems":[{"product":"p1","quantity":1}],"shippingAddress1":"1 Main St","city":"Lisbon","country":"PT","phone":"555","status":"pending","user":"u1"}`},
		{"missing country", `{"orderItems":[{"product":"p1","quantity":1}],"shippingAddress1":"1 Main St","city":"Lisbon","zip":"1000","phone":"555","status":"pending","user":"u1"}`},
		{"missing phone", `{"orderItems":[{"product":"p1","quantity":1}],"shippingAddress1":"1 Main St","city":"Lisbon","zip":"1000","country":"PT","status":"pending","user":"u1"}`},
		{"missing status", `{"orderItems":[{"product":"p1","quantity":1}],"shippingAddress1":"1 Main St","city":"Lisbon","zip":"1000","country":"PT","phone":"555","user":"u1"}`},
		{"missing user", `{"orderItems":[{"product":"p1","quantity":1}],"shippingAddress1":"1 Main St","city":"Lisbon","zip":"1000","country":"PT","phone":"555","status":"pending"}`},
	}

	handler := newTestHandler()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.HandleCreate(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}

			var resp map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["error"] == "" {
				t.Error("expected an error message in the response")
			}
		})
	}
}

func TestHandleCreate_EmptyItemListPassesValidation(t *testing.T) {
	// An explicitly empty list is list-typed input, so it passes field
	// validation and only fails later at user resolution in this setup.
	req := createOrderRequest{
		OrderItems:       []createOrderItem{},
		ShippingAddress1: "1 Main St",
		City:             "Lisbon",
		Zip:              "1000",
		Country:          "PT",
		Phone:            "555",
		Status:           "pending",
		User:             "u1",
	}

	if msg := req.validate(); msg != "" {
		t.Errorf("expected empty item list to validate, got %q", msg)
	}
}

func TestHandleUpdateStatus_Validation(t *testing.T) {
	handler := newTestHandler()

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/orders/abc", strings.NewReader(`{`))
		req.SetPathValue("id", "abc")
		rec := httptest.NewRecorder()

		handler.HandleUpdateStatus(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("empty status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/orders/abc", strings.NewReader(`{"status":""}`))
		req.SetPathValue("id", "abc")
		rec := httptest.NewRecorder()

		handler.HandleUpdateStatus(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}
