package auth

import (
	"context"
	"errors"
)

// ErrTenantMismatch indicates the resource belongs to a different tenant.
var ErrTenantMismatch = errors.New("tenant mismatch")

// EnsureTenant verifies the requested tenant matches the token's tenant.
// An empty requested tenant defaults to the token's and is always allowed.
func EnsureTenant(ctx context.Context, requested string) (string, error) {
	tenantID := TenantIDFromContext(ctx)
	if requested == "" {
		return tenantID, nil
	}
	if tenantID != "" && requested != tenantID {
		return "", ErrTenantMismatch
	}
	return requested, nil
}
