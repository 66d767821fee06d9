package dto

// HeroContent is the landing page hero section.
type HeroContent struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	CTALabel string `json:"cta_label"`
}

// FeatureContent describes one product feature on the landing page.
type FeatureContent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CTAContent is the closing call-to-action section.
type CTAContent struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	CTALabel string `json:"cta_label"`
}

// LandingResponse is the full landing page content.
type LandingResponse struct {
	Hero     HeroContent      `json:"hero"`
	Features []FeatureContent `json:"features"`
	CTA      CTAContent       `json:"cta"`
}
