package auth

import (
	"github.com/spec-kit/civic-report/internal/domain"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

// Authorize allows callerRole when it equals required or is Admin.
func Authorize(callerRole, required domain.Role) error {
	if callerRole == domain.RoleAdmin {
		return nil
	}
	if callerRole == required && required.Valid() {
		return nil
	}
	return apperrors.NewForbidden(string(required) + " role required")
}

// CheckRoleChange rejects an admin demoting themselves.
func CheckRoleChange(actingID, targetID string, newRole domain.Role) error {
	if actingID == targetID && newRole == domain.RoleUser {
		return apperrors.NewSelfDemotionForbidden()
	}
	return nil
}

// CheckDeletion rejects an admin deleting their own account.
func CheckDeletion(actingID, targetID string) error {
	if actingID == targetID {
		return apperrors.NewSelfDeletionForbidden()
	}
	return nil
}
