package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/application/service"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/invoice"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/storage"
	"github.com/drh-piracicaba/fatura-coparticipacao/pkg/utils"
)

// WarningsHeader carries the number of values replaced while building the statement
const WarningsHeader = "X-Fatura-Warnings"

const organization = "Prefeitura de Piracicaba | Departamento de Recursos Humanos"

// Handlers contains all HTTP request handlers
type Handlers struct {
	invoices service.InvoiceService
	health   HealthChecker
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(invoices service.InvoiceService, health HealthChecker, logger *zap.Logger) *Handlers {
	return &Handlers{
		invoices: invoices,
		health:   health,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Components interface{} `json:"components,omitempty"`
}

// DownloadRequest is the invoice form
type DownloadRequest struct {
	Month        string `form:"mes"`
	Year         string `form:"ano"`
	FunctionalID string `form:"nr_funcional"`
}

// ListDownloadsRequest represents query parameters for listing downloads
type ListDownloadsRequest struct {
	Limit int `form:"limit"`
}

type monthOption struct {
	Value string
	Label string
}

type formPage struct {
	Months       []monthOption
	Years        []string
	Organization string
}

// Form handles GET /
func (h *Handlers) Form(c *gin.Context) {
	years, err := h.invoices.Years()
	if err != nil {
		h.logger.Warn("Failed to list years", zap.Error(err))
		years = nil
	}

	months := h.invoices.MonthOptions()
	page := formPage{
		Months:       make([]monthOption, 0, len(months)),
		Years:        years,
		Organization: organization,
	}
	for _, m := range months {
		page.Months = append(page.Months, monthOption{Value: m, Label: monthLabel(m)})
	}

	c.HTML(http.StatusOK, "index.html", page)
}

// Download handles POST /: the PDF as an attachment, or a plain-text message
func (h *Handlers) Download(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusOK, service.MsgProcessing, err.Error())
		return
	}

	result, err := h.invoices.Generate(c.Request.Context(), service.InvoiceRequest{
		Year:         req.Year,
		Month:        req.Month,
		FunctionalID: req.FunctionalID,
		ClientIP:     c.ClientIP(),
	})
	if err != nil {
		c.String(http.StatusOK, "%s", service.UserMessage(utils.SanitizeString(req.Year), err))
		return
	}

	c.DataFromReader(http.StatusOK, result.Size, "application/pdf", result.Document, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%s", result.FileName),
		WarningsHeader:        strconv.Itoa(len(result.Statement.Warnings)),
	})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	if h.health != nil {
		health := h.health.Health(c.Request.Context())
		response.Components = health.Components
		if !health.Overall {
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, Response{
		Success: status == http.StatusOK,
		Data:    response,
	})
}

// ListYears handles GET /api/v1/years
func (h *Handlers) ListYears(c *gin.Context) {
	years, err := h.invoices.Years()
	if err != nil {
		h.logger.Error("Failed to list years", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to list years",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"years": years},
	})
}

// ListMonths handles GET /api/v1/months/:year
func (h *Handlers) ListMonths(c *gin.Context) {
	year := c.Param("year")

	months, err := h.invoices.Months(year)
	if err != nil {
		if errors.Is(err, storage.ErrYearDirNotFound) {
			c.JSON(http.StatusNotFound, Response{
				Success: false,
				Error:   fmt.Sprintf(service.MsgYearNotFound, utils.SanitizeString(year)),
			})
			return
		}
		h.logger.Error("Failed to list months", zap.String("year", year), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to list months",
		})
		return
	}
	if months == nil {
		months = []string{}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"year": year, "months": months},
	})
}

// ListDownloads handles GET /api/v1/downloads
func (h *Handlers) ListDownloads(c *gin.Context) {
	var req ListDownloadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 50
	}

	records, err := h.invoices.RecentDownloads(c.Request.Context(), req.Limit)
	if err != nil {
		h.logger.Error("Failed to list downloads", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to list downloads",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}

// monthLabel returns the display name of a form month token ("marco" -> "Março")
func monthLabel(token string) string {
	for i := 1; i <= 12; i++ {
		name := invoice.MonthName(i)
		if utils.NormalizeMonthToken(name) == token {
			return name
		}
	}
	return token
}
