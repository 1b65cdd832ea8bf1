package controllers

import (
	"net/http"

	"github.com/trustflow/trustflow-backend/api/middleware"
	"github.com/trustflow/trustflow-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if owner, ok := middleware.OwnerIDFromContext(r.Context()); ok {
			payload["owner_id"] = owner.String()
		}
		responses.WriteSuccess(w, payload)
	}
}
