package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/startera/internal/apperr"
	"github.com/iliyamo/startera/internal/prompts"
	"github.com/iliyamo/startera/internal/service"
)

// PlanHandler serves business plan generation and PDF export.
type PlanHandler struct {
	Plans   *service.PlanService
	Exports *service.ExportService
	// RetryAfter is sent with 504 responses, in seconds.
	RetryAfter string
}

func NewPlanHandler(plans *service.PlanService, exports *service.ExportService) *PlanHandler {
	return &PlanHandler{Plans: plans, Exports: exports, RetryAfter: "5"}
}

type planReq struct {
	Idea       flexString `json:"idea"`
	Capital    flexString `json:"capital"`
	Skills     flexString `json:"skills"`
	Strategy   flexString `json:"strategy"`
	Management flexString `json:"management"`
	Language   flexString `json:"language"`
}

type pdfReq struct {
	Text string `json:"text"`
}

// GeneratePlan asks the gateway for a plan. 503 when no credential is
// configured, 504 with Retry-After on timeout.
func (h *PlanHandler) GeneratePlan(c echo.Context) error {
	var req planReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	plan, err := h.Plans.Generate(c.Request().Context(), prompts.PlanInput{
		Idea:       req.Idea.String(),
		Capital:    req.Capital.String(),
		Skills:     req.Skills.String(),
		Strategy:   req.Strategy.String(),
		Management: req.Management.String(),
		Language:   req.Language.String(),
	})
	if err != nil {
		if apperr.Retryable(err) {
			c.Response().Header().Set("Retry-After", h.RetryAfter)
		}
		return respondError(c, err,
			statusRule{apperr.ErrGatewayUnconfigured, http.StatusServiceUnavailable, "API key missing"},
			statusRule{apperr.ErrGatewayTimeout, http.StatusGatewayTimeout, "plan generation timed out"},
			statusRule{apperr.ErrGateway, http.StatusInternalServerError, "plan generation failed"},
		)
	}
	return c.JSON(http.StatusOK, echo.Map{"plan": plan})
}

// CreatePDF renders text as a downloadable PDF.
func (h *PlanHandler) CreatePDF(c echo.Context) error {
	var req pdfReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	doc, err := h.Exports.Export(c.Request().Context(), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+doc.Filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", doc.Body)
}
