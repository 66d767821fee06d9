package handler

import (
	"net/http"

	"github.com/prepjet/prepjet/internal/handler/dto"
)

// ContentHandler serves the public marketing content consumed by the
// landing and pricing pages.
type ContentHandler struct {
	priceID string
}

// NewContentHandler creates a new ContentHandler. priceID is the
// configured subscription price, surfaced so clients can pass it back
// when opening a checkout.
func NewContentHandler(priceID string) *ContentHandler {
	return &ContentHandler{priceID: priceID}
}

// Landing handles GET / and returns the landing page content.
func (h *ContentHandler) Landing(w http.ResponseWriter, r *http.Request) {
	response := dto.LandingResponse{
		Hero: dto.HeroContent{
			Title:    "Ace Your Interviews with AI",
			Subtitle: "Practice interviews with our AI assistant. Get real-time feedback, improve your answers, and land your dream job with confidence.",
			CTALabel: "Get Started",
		},
		Features: []dto.FeatureContent{
			{
				Name:        "AI-Powered Mock Interviews",
				Description: "Practice with realistic interview scenarios tailored to your industry and role.",
				Icon:        "🎯",
			},
			{
				Name:        "Real-Time Feedback",
				Description: "Get instant analysis on your answers, body language, and communication skills.",
				Icon:        "⚡",
			},
			{
				Name:        "Personalized Improvement",
				Description: "Track your progress and receive customized tips to enhance your performance.",
				Icon:        "📈",
			},
			{
				Name:        "Industry-Specific Questions",
				Description: "Access thousands of questions across tech, finance, healthcare, and more.",
				Icon:        "💼",
			},
		},
		CTA: dto.CTAContent{
			Title:    "Ready to ace your next interview?",
			Subtitle: "Join thousands of professionals who have improved their interview skills with our AI assistant",
			CTALabel: "Get Started Now",
		},
	}

	writeJSON(w, http.StatusOK, response)
}

// Pricing handles GET /api/v1/content/pricing and returns the
// available subscription plans.
func (h *ContentHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	response := dto.PricingResponse{
		Plans: []dto.PlanResponse{
			{
				Name:     "Pro Plan",
				Price:    "$5",
				Interval: "month",
				PriceID:  h.priceID,
				Features: []string{
					"Unlimited AI mock interviews",
					"Real-time feedback and analysis",
					"Industry-specific question bank",
					"Progress tracking dashboard",
					"Interview recording playback",
					"Email support",
				},
				Trial: "7-day free trial. Cancel anytime.",
			},
		},
	}

	writeJSON(w, http.StatusOK, response)
}
