package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"rednote/internal/domain"
)

// GenerateAll runs the complete four-stage chain in one request.
func (a *App) GenerateAll(w http.ResponseWriter, r *http.Request) {
	var input domain.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	result, err := a.Gen.GenerateAll(r.Context(), input)
	if err != nil {
		a.generateError(w, err)
		return
	}
	a.json(w, http.StatusOK, result)
}

func (a *App) GenerateCopy(w http.ResponseWriter, r *http.Request) {
	var input domain.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	result, err := a.Gen.GenerateCopy(r.Context(), input)
	if err != nil {
		a.generateError(w, err)
		return
	}
	a.json(w, http.StatusOK, result)
}

func (a *App) GenerateVisual(w http.ResponseWriter, r *http.Request) {
	var copyResult domain.CopyResult
	if err := json.NewDecoder(r.Body).Decode(&copyResult); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := copyResult.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	result, err := a.Gen.GenerateVisualStrategy(r.Context(), copyResult)
	if err != nil {
		a.generateError(w, err)
		return
	}
	a.json(w, http.StatusOK, result)
}

type imageStageRequest struct {
	Copy   domain.CopyResult     `json:"copy"`
	Visual domain.VisualStrategy `json:"visual"`
}

func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req imageStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	url, err := a.Gen.GenerateImage(r.Context(), req.Copy, req.Visual)
	if err != nil {
		a.generateError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"background_image": url})
}

type layoutStageRequest struct {
	Copy            domain.CopyResult     `json:"copy"`
	Visual          domain.VisualStrategy `json:"visual"`
	BackgroundImage string                `json:"background_image"`
}

func (a *App) GenerateLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.BackgroundImage == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "background_image required")
		return
	}
	layout, err := a.Gen.GenerateLayout(r.Context(), req.Copy, req.Visual, req.BackgroundImage)
	if err != nil {
		a.generateError(w, err)
		return
	}
	a.json(w, http.StatusOK, layout)
}

// generateError maps pipeline failures onto the API surface: caller
// mistakes are 400, everything downstream of the request is 502.
func (a *App) generateError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrValidation) {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.Log.Error().Err(err).Msg("generation failed")
	a.error(w, http.StatusBadGateway, "upstream_failed", err.Error())
}
