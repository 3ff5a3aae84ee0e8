package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report/internal/api/dto"
	"github.com/spec-kit/civic-report/internal/auth"
	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/service"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

// IssuesHandler exposes citizen-facing issue endpoints.
type IssuesHandler struct {
	issues *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issues *service.IssueService) *IssuesHandler {
	return &IssuesHandler{issues: issues}
}

// Submit handles POST /api/issues. Works with or without a bearer token.
func (h *IssuesHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitIssueRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if req.Location == nil || req.Location.Latitude == nil || req.Location.Longitude == nil {
		return apperrors.NewValidationError("invalid issue", map[string]any{"location": "latitude and longitude are required"})
	}

	input := service.SubmitIssueInput{
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
		Location: domain.Location{
			Latitude:   *req.Location.Latitude,
			Longitude:  *req.Location.Longitude,
			Street:     req.Location.Street,
			Landmark:   req.Location.Landmark,
			City:       req.Location.City,
			State:      req.Location.State,
			PostalCode: req.Location.PostalCode,
		},
	}
	if req.Contact != nil {
		input.Contact = &domain.Contact{Name: req.Contact.Name, Email: req.Contact.Email, Phone: req.Contact.Phone}
	}

	issue, err := h.issues.Submit(c.UserContext(), actingAccount(c), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OKMessage("Issue submitted", fiber.Map{"issue": dto.NewIssueResponse(issue)}))
}

// List handles GET /api/issues.
func (h *IssuesHandler) List(c *fiber.Ctx) error {
	query, err := issueListQuery(c)
	if err != nil {
		return err
	}
	result, err := h.issues.List(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(issueList(result, dto.NewIssueResponse)))
}

// Mine handles GET /api/issues/mine.
func (h *IssuesHandler) Mine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	result, err := h.issues.ListMine(c.UserContext(), principal.AccountID, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(issueList(result, dto.NewIssueResponse)))
}

// Get handles GET /api/issues/:issueId.
func (h *IssuesHandler) Get(c *fiber.Ctx) error {
	issue, err := h.issues.Get(c.UserContext(), c.Params("issueId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(fiber.Map{"issue": dto.NewIssueResponse(issue)}))
}

// History handles GET /api/issues/:issueId/history.
func (h *IssuesHandler) History(c *fiber.Ctx) error {
	history, err := h.issues.History(c.UserContext(), c.Params("issueId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(fiber.Map{"history": dto.NewStatusChangeResponses(history)}))
}

func issueListQuery(c *fiber.Ctx) (service.IssueListQuery, error) {
	var query service.IssueListQuery
	page, err := queryInt(c, "page")
	if err != nil {
		return query, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return query, err
	}
	lat, err := queryFloat(c, "lat")
	if err != nil {
		return query, err
	}
	lon, err := queryFloat(c, "lon")
	if err != nil {
		return query, err
	}
	return service.IssueListQuery{
		Category:  c.Query("category"),
		Status:    c.Query("status"),
		City:      c.Query("city"),
		State:     c.Query("state"),
		Latitude:  lat,
		Longitude: lon,
		Sort:      c.Query("sort"),
		Page:      page,
		Limit:     limit,
	}, nil
}

func issueList(p *service.Page[domain.Issue], project func(*domain.Issue) dto.IssueResponse) dto.IssueListResponse {
	return dto.IssueListResponse{
		Issues:      dto.NewIssueResponses(p.Items, project),
		TotalCount:  p.TotalCount,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
	}
}
