package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ctxOwnerID contextKey = "owner_id"

// OwnerIDFromContext returns the authenticated space owner, if any.
func OwnerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	id, ok := ctx.Value(ctxOwnerID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// WithOwnerID injects the owner identifier into the context.
func WithOwnerID(ctx context.Context, ownerID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOwnerID, ownerID)
}
