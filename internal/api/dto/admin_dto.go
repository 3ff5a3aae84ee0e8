package dto

import "github.com/spec-kit/civic-report/internal/domain"

// UpdateRoleRequest carries the new role and the acting admin's password.
type UpdateRoleRequest struct {
	Role     string `json:"role"`
	Password string `json:"password"`
}

// AccountListResponse is one page of accounts.
type AccountListResponse struct {
	Users       []AccountResponse `json:"users"`
	TotalUsers  int64             `json:"totalUsers"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
}

// StatsResponse is the admin dashboard summary.
type StatsResponse struct {
	TotalUsers        int64 `json:"totalUsers"`
	TotalAdmins       int64 `json:"totalAdmins"`
	TotalRegularUsers int64 `json:"totalRegularUsers"`
	VerifiedUsers     int64 `json:"verifiedUsers"`
	RecentUsers       int64 `json:"recentUsers"`
}

// NewStatsResponse maps aggregate counts.
func NewStatsResponse(s domain.AccountStats) StatsResponse {
	return StatsResponse(s)
}
