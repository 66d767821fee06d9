package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prepjet/prepjet/internal/identity"
	"github.com/prepjet/prepjet/internal/metrics"
)

const webhookTestSecret = "whsec_test"

func signedWebhookRequest(body string) *http.Request {
	ts := time.Now().Unix()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/identity", strings.NewReader(body))
	req.Header.Set(identity.HeaderWebhookTimestamp, fmt.Sprintf("%d", ts))
	req.Header.Set(identity.HeaderWebhookSignature, identity.SignWebhook(webhookTestSecret, ts, []byte(body)))
	return req
}

func TestWebhookHandler_MissingSignature(t *testing.T) {
	h := NewWebhookHandler(nil, webhookTestSecret, metrics.NewNoop(), discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/identity", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.IdentitySync(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestWebhookHandler_BadSignature(t *testing.T) {
	h := NewWebhookHandler(nil, webhookTestSecret, metrics.NewNoop(), discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/identity", strings.NewReader(`{}`))
	req.Header.Set(identity.HeaderWebhookTimestamp, fmt.Sprintf("%d", time.Now().Unix()))
	req.Header.Set(identity.HeaderWebhookSignature, "deadbeef")
	rec := httptest.NewRecorder()

	h.IdentitySync(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestWebhookHandler_StaleTimestamp(t *testing.T) {
	h := NewWebhookHandler(nil, webhookTestSecret, metrics.NewNoop(), discardLogger())

	body := `{}`
	ts := time.Now().Add(-time.Hour).Unix()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/identity", strings.NewReader(body))
	req.Header.Set(identity.HeaderWebhookTimestamp, fmt.Sprintf("%d", ts))
	req.Header.Set(identity.HeaderWebhookSignature, identity.SignWebhook(webhookTestSecret, ts, []byte(body)))
	rec := httptest.NewRecorder()

	h.IdentitySync(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestWebhookHandler_MalformedJSON(t *testing.T) {
	h := NewWebhookHandler(nil, webhookTestSecret, metrics.NewNoop(), discardLogger())

	rec := httptest.NewRecorder()
	h.IdentitySync(rec, signedWebhookRequest(`{not json`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestWebhookHandler_MissingEventID(t *testing.T) {
	h := NewWebhookHandler(nil, webhookTestSecret, metrics.NewNoop(), discardLogger())

	rec := httptest.NewRecorder()
	h.IdentitySync(rec, signedWebhookRequest(`{"type":"user.created","data":{"id":"u1","email":"a@b.com"}}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestWebhookHandler_UnknownEventTypeAcknowledged(t *testing.T) {
	h := NewWebhookHandler(nil, webhookTestSecret, metrics.NewNoop(), discardLogger())

	rec := httptest.NewRecorder()
	h.IdentitySync(rec, signedWebhookRequest(`{"id":"evt_1","type":"session.ended","data":{}}`))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("unknown event types must be acknowledged, got %d", rec.Code)
	}
}
