package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/trustflow/trustflow-backend/api/responses"
	"github.com/trustflow/trustflow-backend/api/validators"
	"github.com/trustflow/trustflow-backend/internal/testimonials"
	"github.com/trustflow/trustflow-backend/pkg/enums"
	"github.com/trustflow/trustflow-backend/pkg/logger"
	"github.com/trustflow/trustflow-backend/pkg/pagination"
)

const maxNameLength = 120

type testimonialSubmitRequest struct {
	Type               string `json:"type,omitempty" validate:"omitempty,oneof=text video"`
	Content            string `json:"content,omitempty" validate:"max=5000"`
	VideoURL           string `json:"video_url,omitempty" validate:"omitempty,url"`
	Rating             *int   `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	RespondentName     string `json:"respondent_name" validate:"required"`
	RespondentEmail    string `json:"respondent_email,omitempty" validate:"omitempty,email"`
	RespondentPhotoURL string `json:"respondent_photo_url,omitempty" validate:"omitempty,url"`
}

func (r testimonialSubmitRequest) toInput() testimonials.SubmitInput {
	return testimonials.SubmitInput{
		Type:               enums.TestimonialType(r.Type),
		Content:            r.Content,
		VideoURL:           r.VideoURL,
		Rating:             r.Rating,
		RespondentName:     validators.SanitizeString(r.RespondentName, maxNameLength),
		RespondentEmail:    r.RespondentEmail,
		RespondentPhotoURL: r.RespondentPhotoURL,
	}
}

// TestimonialSubmit accepts a public submission. New rows start unliked.
func TestimonialSubmit(svc testimonials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spaceID, err := validators.URLParamUUID(r, "spaceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload testimonialSubmitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Submit(r.Context(), spaceID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"id":         created.ID,
			"created_at": created.CreatedAt,
		})
	}
}

// TestimonialList pages through a space's testimonials, newest first.
func TestimonialList(svc testimonials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, spaceID, err := ownerAndSpace(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		liked, err := validators.ParseQueryBool(r, "liked")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), owner, spaceID, testimonials.ListParams{
			Params: pagination.Params{Limit: limit, Cursor: strings.TrimSpace(r.URL.Query().Get("cursor"))},
			Liked:  liked,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

type likeRequest struct {
	Liked *bool `json:"liked" validate:"required"`
}

// TestimonialLike sets the approval flag that gates public display.
func TestimonialLike(svc testimonials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, spaceID, err := ownerAndSpace(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.URLParamUUID(r, "testimonialId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload likeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.SetLiked(r.Context(), owner, spaceID, id, *payload.Liked)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func TestimonialDelete(svc testimonials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, spaceID, err := ownerAndSpace(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.URLParamUUID(r, "testimonialId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), owner, spaceID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// TestimonialExport downloads every live testimonial as CSV. The body is
// buffered so a failure mid-export still answers with a JSON error.
func TestimonialExport(svc testimonials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, spaceID, err := ownerAndSpace(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var buf bytes.Buffer
		if err := svc.Export(r.Context(), owner, spaceID, &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("testimonials-%s.csv", time.Now().UTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

// TestimonialWall serves the public wall of love.
func TestimonialWall(svc testimonials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spaceID, err := validators.URLParamUUID(r, "spaceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		wall, err := svc.Wall(r.Context(), spaceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wall)
	}
}
