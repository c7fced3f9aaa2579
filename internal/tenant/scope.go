// Package tenant centralizes the organization filter every query must carry.
// Handlers never append "organization_id = ?" by hand; they go through the
// scope, so omitting the tenant boundary is structurally impossible.
package tenant

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey struct{}

// WithOrganization stores the active organization id in the context. Set by
// the auth middleware from the token claims.
func WithOrganization(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, orgID)
}

// OrganizationID returns the active organization id, or uuid.Nil when the
// caller has no organization attached.
func OrganizationID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(ctxKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// Scope restricts a query to one organization.
func Scope(orgID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("organization_id = ?", orgID)
	}
}

// Scoped restricts a query to the context's organization. A context without
// an organization scopes to uuid.Nil, which matches no tenant rows.
func Scoped(ctx context.Context) func(*gorm.DB) *gorm.DB {
	return Scope(OrganizationID(ctx))
}
