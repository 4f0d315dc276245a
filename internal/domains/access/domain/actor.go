package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Role enumerates the account kinds that can act inside a shop.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

// Capability names a guarded action class.
type Capability string

const (
	CapabilityRead   Capability = "read"
	CapabilityAdd    Capability = "add"
	CapabilityEdit   Capability = "edit"
	CapabilityDelete Capability = "delete"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrMissingActor     = errors.New("actor missing from context")
	ErrInvalidRole      = errors.New("actor role is invalid")
	ErrMissingTenant    = errors.New("actor tenant is required")
)

// Permissions are the per-staff flags granted by an owner.
type Permissions struct {
	CanAdd    bool `json:"canAdd"`
	CanEdit   bool `json:"canEdit"`
	CanDelete bool `json:"canDelete"`
}

// Actor is the resolved caller of a use case.
type Actor struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	Role        Role
	Permissions Permissions
}

// Validate rejects actors that cannot be scoped to a tenant.
func (a Actor) Validate() error {
	if a.TenantID == uuid.Nil {
		return ErrMissingTenant
	}
	switch a.Role {
	case RoleAdmin, RoleOwner, RoleStaff:
		return nil
	default:
		return ErrInvalidRole
	}
}

// Can reports whether the actor holds the capability. Admins and owners hold
// all of them; staff may always read and need the matching flag for the rest.
func (a Actor) Can(capability Capability) bool {
	if a.Validate() != nil {
		return false
	}
	if a.Role == RoleAdmin || a.Role == RoleOwner {
		return true
	}
	switch capability {
	case CapabilityRead:
		return true
	case CapabilityAdd:
		return a.Permissions.CanAdd
	case CapabilityEdit:
		return a.Permissions.CanEdit
	case CapabilityDelete:
		return a.Permissions.CanDelete
	default:
		return false
	}
}

// Authorize returns ErrPermissionDenied unless the actor holds the capability.
func (a Actor) Authorize(capability Capability) error {
	if !a.Can(capability) {
		return ErrPermissionDenied
	}
	return nil
}

type actorContextKey struct{}

// WithActor attaches the actor to ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor placed by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

// RequireActor extracts the actor and authorizes the capability in one step.
func RequireActor(ctx context.Context, capability Capability) (Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return Actor{}, ErrMissingActor
	}
	if err := actor.Authorize(capability); err != nil {
		return Actor{}, err
	}
	return actor, nil
}

// SystemActor is the identity background jobs act as within one tenant.
func SystemActor(tenantID uuid.UUID) Actor {
	return Actor{TenantID: tenantID, UserID: uuid.Nil, Role: RoleAdmin}
}
