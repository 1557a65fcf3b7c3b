package activation

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func setupHandlerApp(t *testing.T) (*fiber.App, *fixture) {
	t.Helper()
	f := newFixture(t)
	handler := NewHandler(f.svc)

	app := fiber.New()
	app.Post("/mpesa/stk-push", handler.StkPush)
	app.Post("/mpesa/callback", handler.Callback)
	return app, f
}

func TestStkPushEndpoint(t *testing.T) {
	app, f := setupHandlerApp(t)

	body := `{"phone":"0712345678","amount":500,"sessionId":"s1","name":"Jane","email":"jane@example.com","password":"secret123"}`
	req := httptest.NewRequest(fiber.MethodPost, "/mpesa/stk-push", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	payload, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if decoded["CheckoutRequestID"] != "ws_1" || decoded["MerchantRequestID"] != "mr_1" {
		t.Fatalf("unexpected response %s", payload)
	}

	if _, ok, _ := f.store.Take(req.Context(), "ws_1"); !ok {
		t.Fatal("expected pending entry stored before the response was sent")
	}
}

func TestStkPushEndpointRejectsMissingFields(t *testing.T) {
	app, f := setupHandlerApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/mpesa/stk-push", strings.NewReader(`{"phone":"0712345678"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if f.provider.calls != 0 {
		t.Fatal("provider must not be called on invalid input")
	}
}

func TestCallbackEndpointAcknowledgesSuccess(t *testing.T) {
	app, f := setupHandlerApp(t)

	initBody := `{"phone":"0712345678","amount":500,"sessionId":"s1","name":"Jane","email":"jane@example.com","password":"secret123"}`
	initReq := httptest.NewRequest(fiber.MethodPost, "/mpesa/stk-push", strings.NewReader(initBody))
	initReq.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if _, err := app.Test(initReq); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	cbBody := `{"Body":{"stkCallback":{"MerchantRequestID":"mr_1","CheckoutRequestID":"ws_1","ResultCode":0,"ResultDesc":"Success"}}}`
	cbReq := httptest.NewRequest(fiber.MethodPost, "/mpesa/callback", strings.NewReader(cbBody))
	cbReq.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(cbReq)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	payload, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	var ack map[string]any
	if err := json.Unmarshal(payload, &ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack["ResultCode"] != float64(0) || ack["ResultDesc"] != "Accepted" {
		t.Fatalf("unexpected ack %s", payload)
	}

	if _, err := f.repo.FindByEmail(cbReq.Context(), "jane@example.com"); err != nil {
		t.Fatalf("expected activated user: %v", err)
	}
}

func TestCallbackEndpointAcknowledgesGarbage(t *testing.T) {
	app, _ := setupHandlerApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/mpesa/callback", strings.NewReader(`not json at all`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("garbage callback must still be acknowledged with 200, got %d", resp.StatusCode)
	}
}

func TestCallbackEndpointAcknowledgesUnknownRequest(t *testing.T) {
	app, _ := setupHandlerApp(t)

	body := `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_ghost","ResultCode":0,"ResultDesc":"Success"}}}`
	req := httptest.NewRequest(fiber.MethodPost, "/mpesa/callback", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
