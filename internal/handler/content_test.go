package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prepjet/prepjet/internal/handler/dto"
)

func TestContentHandler_Landing(t *testing.T) {
	h := NewContentHandler("pri_test_123")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Landing(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp dto.LandingResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Hero.Title != "Ace Your Interviews with AI" {
		t.Errorf("hero title = %q", resp.Hero.Title)
	}
	if len(resp.Features) != 4 {
		t.Errorf("expected 4 features, got %d", len(resp.Features))
	}
}

func TestContentHandler_Pricing(t *testing.T) {
	h := NewContentHandler("pri_test_123")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/content/pricing", nil)
	rec := httptest.NewRecorder()

	h.Pricing(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp dto.PricingResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Plans) != 1 {
		t.Fatalf("expected 1 plan, got %d", len(resp.Plans))
	}
	plan := resp.Plans[0]
	if plan.Name != "Pro Plan" || plan.Price != "$5" || plan.Interval != "month" {
		t.Errorf("unexpected plan: %+v", plan)
	}
	if plan.PriceID != "pri_test_123" {
		t.Errorf("price ID = %q", plan.PriceID)
	}
	if len(plan.Features) != 6 {
		t.Errorf("expected 6 features, got %d", len(plan.Features))
	}
}
