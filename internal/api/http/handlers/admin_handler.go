package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report/internal/api/dto"
	"github.com/spec-kit/civic-report/internal/auth"
	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/service"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

// AdminHandler exposes account administration for Admins.
type AdminHandler struct {
	admin  *service.AdminService
	issues *service.IssueService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService, issues *service.IssueService) *AdminHandler {
	return &AdminHandler{admin: admin, issues: issues}
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.admin.DashboardStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewStatsResponse(stats)))
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	query := service.AccountListQuery{Page: page, Limit: limit, Search: c.Query("search")}
	if raw := c.Query("role"); raw != "" {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return apperrors.NewValidationError("invalid role", map[string]any{"role": err.Error()})
		}
		query.Role = &role
	}

	result, err := h.admin.ListAccounts(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.AccountListResponse{
		Users:       dto.NewAccountResponses(result.Items),
		TotalUsers:  result.TotalCount,
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
	}))
}

// GetUser handles GET /api/admin/users/:userId.
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	account, err := h.admin.GetAccount(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(fiber.Map{"user": dto.NewAccountResponse(account)}))
}

// UpdateRole handles PUT /api/admin/role/:userId.
func (h *AdminHandler) UpdateRole(c *fiber.Ctx) error {
	var req dto.UpdateRoleRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}

	account, err := h.admin.UpdateRole(c.UserContext(), actingAccount(c), service.UpdateRoleInput{
		TargetID: c.Params("userId"),
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage(
		fmt.Sprintf("User role updated to %s successfully", account.Role),
		fiber.Map{"user": dto.NewAccountResponse(account)},
	))
}

// DeleteUser handles DELETE /api/admin/users/:userId.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.admin.DeleteAccount(c.UserContext(), actingAccount(c), c.Params("userId")); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("User deleted successfully", nil))
}

// ListIssues handles GET /api/admin/issues. Unlike the public listing it
// includes anonymous reporters' contact details.
func (h *AdminHandler) ListIssues(c *fiber.Ctx) error {
	query, err := issueListQuery(c)
	if err != nil {
		return err
	}
	result, err := h.issues.List(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(issueList(result, dto.NewAdminIssueResponse)))
}

// GetIssue handles GET /api/admin/issues/:issueId.
func (h *AdminHandler) GetIssue(c *fiber.Ctx) error {
	issue, err := h.issues.Get(c.UserContext(), c.Params("issueId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(fiber.Map{"issue": dto.NewAdminIssueResponse(issue)}))
}

// UpdateIssueStatus handles PUT /api/admin/issues/:issueId/status.
func (h *AdminHandler) UpdateIssueStatus(c *fiber.Ctx) error {
	var req dto.UpdateIssueStatusRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	issue, err := h.issues.SetStatus(c.UserContext(), actingAccount(c), c.Params("issueId"), req.Status, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("Issue status updated", fiber.Map{"issue": dto.NewAdminIssueResponse(issue)}))
}

// actingAccount is the authenticated caller's account, or nil for anonymous requests.
func actingAccount(c *fiber.Ctx) *domain.Account {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return principal.Account
}
