package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/trustflow/trustflow-backend/api/responses"
	"github.com/trustflow/trustflow-backend/api/validators"
	"github.com/trustflow/trustflow-backend/internal/spaces"
	pkgerrors "github.com/trustflow/trustflow-backend/pkg/errors"
	"github.com/trustflow/trustflow-backend/pkg/logger"
	"github.com/trustflow/trustflow-backend/pkg/types"
)

type spaceCreateRequest struct {
	SpaceName         string  `json:"space_name" validate:"required,max=120"`
	Slug              string  `json:"slug" validate:"required,min=3,max=64"`
	HeaderTitle       string  `json:"header_title,omitempty" validate:"max=200"`
	CustomMessage     *string `json:"custom_message,omitempty" validate:"omitempty,max=2000"`
	CollectStarRating *bool   `json:"collect_star_rating,omitempty"`
}

func (r spaceCreateRequest) toInput() spaces.CreateSpaceInput {
	return spaces.CreateSpaceInput{
		SpaceName:         r.SpaceName,
		Slug:              strings.ToLower(r.Slug),
		HeaderTitle:       r.HeaderTitle,
		CustomMessage:     r.CustomMessage,
		CollectStarRating: r.CollectStarRating,
	}
}

type spaceUpdateRequest struct {
	SpaceName         *string `json:"space_name,omitempty" validate:"omitempty,max=120"`
	Slug              *string `json:"slug,omitempty" validate:"omitempty,min=3,max=64"`
	HeaderTitle       *string `json:"header_title,omitempty" validate:"omitempty,max=200"`
	CustomMessage     *string `json:"custom_message,omitempty" validate:"omitempty,max=2000"`
	LogoURL           *string `json:"logo_url,omitempty" validate:"omitempty,url"`
	CollectStarRating *bool   `json:"collect_star_rating,omitempty"`
}

func (r spaceUpdateRequest) toInput() spaces.UpdateSpaceInput {
	in := spaces.UpdateSpaceInput{
		SpaceName:         r.SpaceName,
		HeaderTitle:       r.HeaderTitle,
		CustomMessage:     r.CustomMessage,
		LogoURL:           r.LogoURL,
		CollectStarRating: r.CollectStarRating,
	}
	if r.Slug != nil {
		slug := strings.ToLower(*r.Slug)
		in.Slug = &slug
	}
	return in
}

// SpaceCreate creates a space owned by the caller.
func SpaceCreate(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload spaceCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		space, err := svc.Create(r.Context(), owner, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, space)
	}
}

func SpaceList(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func SpaceGet(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, spaceID, err := ownerAndSpace(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		space, err := svc.Get(r.Context(), owner, spaceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, space)
	}
}

func SpaceUpdate(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, spaceID, err := ownerAndSpace(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload spaceUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		space, err := svc.Update(r.Context(), owner, spaceID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, space)
	}
}

// SpaceWidgetSettings replaces the widget and popup settings wholesale.
func SpaceWidgetSettings(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, spaceID, err := ownerAndSpace(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var settings types.WidgetSettings
		if err := validators.DecodeJSONBody(r, &settings); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		space, err := svc.UpdateWidgetSettings(r.Context(), owner, spaceID, settings)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, space)
	}
}

func SpaceDelete(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, spaceID, err := ownerAndSpace(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), owner, spaceID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// SpaceSlugAvailability answers whether ?slug= can be claimed, ignoring the
// space named by ?exclude=.
func SpaceSlugAvailability(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := ownerFromRequest(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		slug := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("slug")))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}
		exclude, err := validators.ParseQueryUUID(r, "exclude")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SlugAvailability(r.Context(), slug, exclude)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// SpacePublicForm serves the collection form config for /{slug}.
func SpacePublicForm(svc spaces.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := svc.PublicForm(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, form)
	}
}
