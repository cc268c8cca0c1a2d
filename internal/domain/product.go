package domain

import (
	"fmt"
	"strings"
)

// Tone labels form a closed set; anything else is rejected before the
// pipeline issues a single network call.
const (
	ToneWarmHealing  = "warm/healing"
	TonePlayful      = "playful"
	ToneProReview    = "professional review"
	ToneEndorsement  = "persuasive/endorsement"
	ToneMinimalist   = "minimalist/premium"
)

var allowedTones = map[string]struct{}{
	ToneWarmHealing: {},
	TonePlayful:     {},
	ToneProReview:   {},
	ToneEndorsement: {},
	ToneMinimalist:  {},
}

// Tones returns the accepted tone labels in a stable order.
func Tones() []string {
	return []string{ToneWarmHealing, TonePlayful, ToneProReview, ToneEndorsement, ToneMinimalist}
}

// ProductInput is the user-supplied subject of one generation run.
type ProductInput struct {
	ProductID      string   `json:"product_id"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Price          float64  `json:"price"`
	TargetAudience string   `json:"target_audience"`
	Features       []string `json:"features"`
	SellingPoint   string   `json:"selling_point"`
	Tone           string   `json:"tone"`
}

// Validate enforces the pipeline entry contract.
func (p ProductInput) Validate() error {
	if strings.TrimSpace(p.ProductID) == "" {
		return fmt.Errorf("%w: product_id is required", ErrValidation)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if strings.TrimSpace(p.TargetAudience) == "" {
		return fmt.Errorf("%w: target_audience is required", ErrValidation)
	}
	if len(p.Features) == 0 {
		return fmt.Errorf("%w: at least one feature is required", ErrValidation)
	}
	for i, f := range p.Features {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%w: features[%d] is empty", ErrValidation, i)
		}
	}
	if strings.TrimSpace(p.SellingPoint) == "" {
		return fmt.Errorf("%w: selling_point is required", ErrValidation)
	}
	if _, ok := allowedTones[p.Tone]; !ok {
		return fmt.Errorf("%w: tone must be one of %s", ErrValidation, strings.Join(Tones(), ", "))
	}
	return nil
}
