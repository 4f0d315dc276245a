package domain

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestActorCan_OwnerAndAdminHoldEverything(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleOwner} {
		actor := Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: role}
		for _, c := range []Capability{CapabilityRead, CapabilityAdd, CapabilityEdit, CapabilityDelete} {
			require.True(t, actor.Can(c), "%s should hold %s", role, c)
		}
	}
}

func TestActorCan_StaffNeedsFlags(t *testing.T) {
	actor := Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: RoleStaff}
	require.True(t, actor.Can(CapabilityRead))
	require.False(t, actor.Can(CapabilityAdd))
	require.False(t, actor.Can(CapabilityEdit))
	require.ErrorIs(t, actor.Authorize(CapabilityDelete), ErrPermissionDenied)

	actor.Permissions = Permissions{CanEdit: true}
	require.True(t, actor.Can(CapabilityEdit))
	require.False(t, actor.Can(CapabilityDelete))
}

func TestActorCan_InvalidActorHoldsNothing(t *testing.T) {
	require.False(t, Actor{Role: RoleOwner}.Can(CapabilityRead))
	require.ErrorIs(t, Actor{TenantID: uuid.New(), Role: "guest"}.Validate(), ErrInvalidRole)
}

func TestRequireActor(t *testing.T) {
	_, err := RequireActor(context.Background(), CapabilityRead)
	require.ErrorIs(t, err, ErrMissingActor)

	staff := Actor{TenantID: uuid.New(), UserID: uuid.New(), Role: RoleStaff}
	ctx := WithActor(context.Background(), staff)
	got, err := RequireActor(ctx, CapabilityRead)
	require.NoError(t, err)
	require.Equal(t, staff, got)

	_, err = RequireActor(ctx, CapabilityDelete)
	require.ErrorIs(t, err, ErrPermissionDenied)
}
