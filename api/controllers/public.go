package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/trustflow/trustflow-backend/api/responses"
	"github.com/trustflow/trustflow-backend/api/validators"
	"github.com/trustflow/trustflow-backend/internal/avatars"
	"github.com/trustflow/trustflow-backend/internal/testimonials"
	"github.com/trustflow/trustflow-backend/internal/widget"
	pkgerrors "github.com/trustflow/trustflow-backend/pkg/errors"
	"github.com/trustflow/trustflow-backend/pkg/logger"
)

// PublicDataReader returns the encoded public payload of a space.
type PublicDataReader interface {
	JSON(ctx context.Context, spaceID uuid.UUID) ([]byte, error)
}

// WallReader lists the liked testimonials shown on public surfaces.
type WallReader interface {
	Wall(ctx context.Context, spaceID uuid.UUID) ([]testimonials.PublicTestimonialDTO, error)
}

// StreamServer hosts popup streams.
type StreamServer interface {
	Serve(ctx context.Context, w http.ResponseWriter, spaceID string) error
	SetPaused(streamID string, paused bool) bool
}

// PublicData serves {widget_settings, testimonials} without the success
// envelope, in the shape the popup engine fetches.
func PublicData(svc PublicDataReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spaceID, err := validators.URLParamUUID(r, "spaceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body, err := svc.JSON(r.Context(), spaceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=30")
		responses.WriteRawJSON(w, http.StatusOK, body)
	}
}

// Avatar renders an initials PNG. Responses are deterministic per query so
// they cache for a day.
func Avatar(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		size := 0
		if raw := strings.TrimSpace(q.Get("size")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "size must be numeric"))
				return
			}
			size = n
		}

		png, err := avatars.RenderPNG(avatars.Options{
			Name:       validators.SanitizeString(q.Get("name"), maxNameLength),
			Size:       size,
			Background: q.Get("background"),
			Color:      q.Get("color"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render avatar"))
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}

// EmbedScript serves the loader with the configured fallback origin baked in.
func EmbedScript(publicBaseURL string) http.HandlerFunc {
	script := widget.EmbedJS(publicBaseURL)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(script)
	}
}

// WidgetPage renders the iframe document for an embed.
func WidgetPage(svc WallReader, avatarBase string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spaceID, err := validators.URLParamUUID(r, "spaceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Wall(r.Context(), spaceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := widget.NewPage(spaceID.String(), widget.AttributesFromQuery(r.URL.Query()), items, avatarBase)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := page.Render(w); err != nil && logg != nil {
			logg.Error(r.Context(), "widget.render_failed", err)
		}
	}
}

// PopupStream opens the server-sent event stream that drives popups on a
// host page. Unknown spaces are rejected before the stream starts.
func PopupStream(streams StreamServer, data PublicDataReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spaceID, err := validators.URLParamUUID(r, "spaceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := data.JSON(r.Context(), spaceID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := streams.Serve(r.Context(), w, spaceID.String()); err != nil && !errors.Is(err, context.Canceled) {
			if logg != nil {
				logg.Error(r.Context(), "popup.stream_failed", err)
			}
		}
	}
}

type pauseRequest struct {
	Paused *bool `json:"paused" validate:"required"`
}

// PopupPause forwards hover state to a live stream.
func PopupPause(streams StreamServer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		streamID := strings.TrimSpace(chi.URLParam(r, "streamId"))
		if streamID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "stream id is required"))
			return
		}

		var payload pauseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !streams.SetPaused(streamID, *payload.Paused) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "stream not found"))
			return
		}
		responses.WriteNoContent(w)
	}
}
