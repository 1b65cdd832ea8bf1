package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/trustflow/trustflow-backend/api/middleware"
	"github.com/trustflow/trustflow-backend/api/validators"
	pkgerrors "github.com/trustflow/trustflow-backend/pkg/errors"
)

func ownerFromRequest(r *http.Request) (uuid.UUID, error) {
	owner, ok := middleware.OwnerIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner context missing")
	}
	return owner, nil
}

// ownerAndSpace resolves the caller and the {spaceId} path parameter.
func ownerAndSpace(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	owner, err := ownerFromRequest(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	spaceID, err := validators.URLParamUUID(r, "spaceId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return owner, spaceID, nil
}
