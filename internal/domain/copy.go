package domain

import (
	"fmt"
	"strings"
)

// CopyResult is the stage-one output: marketing copy for one product.
// SeedreamPrompt carries the image-generation prompt so the image stage
// does not depend on the visual stage succeeding first.
type CopyResult struct {
	ProductID       string   `json:"product_id"`
	Tone            string   `json:"tone"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Tags            []string `json:"tags"`
	SellingKeywords []string `json:"selling_keywords"`
	SeedreamPrompt  string   `json:"seedream_prompt_cn"`
}

// Validate checks the copy-stage schema. Downstream stages assume at
// least one selling keyword exists.
func (c CopyResult) Validate() error {
	if strings.TrimSpace(c.ProductID) == "" {
		return fmt.Errorf("%w: copy product_id is required", ErrValidation)
	}
	if strings.TrimSpace(c.Tone) == "" {
		return fmt.Errorf("%w: copy tone is required", ErrValidation)
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: copy title is required", ErrValidation)
	}
	if strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("%w: copy content is required", ErrValidation)
	}
	if len(c.SellingKeywords) == 0 {
		return fmt.Errorf("%w: copy selling_keywords must not be empty", ErrValidation)
	}
	if strings.TrimSpace(c.SeedreamPrompt) == "" {
		return fmt.Errorf("%w: copy seedream_prompt_cn is required", ErrValidation)
	}
	return nil
}
