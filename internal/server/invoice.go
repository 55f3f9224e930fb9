package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	"github.com/smallbiznis/promptinvoice/internal/observability/logger"
	"github.com/smallbiznis/promptinvoice/pkg/db/pagination"
	"go.uber.org/zap"
)

type generateInvoiceRequest struct {
	Prompt  string                        `json:"prompt"`
	Company *invoicedomain.CompanyProfile `json:"company"`
}

type generateInvoiceResponse struct {
	Data     invoicedomain.Invoice `json:"data"`
	RecordID string                `json:"record_id,omitempty"`
	Saved    bool                  `json:"saved"`
	Warning  string                `json:"warning,omitempty"`
}

const (
	saveFailedWarning      = "Failed to save invoice to database"
	duplicateNumberWarning = "Failed to save invoice: this invoice number already exists"
)

func (s *Server) GenerateInvoice(c *gin.Context) {
	var req generateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	res, err := s.invoiceSvc.Generate(ctx, invoicedomain.GenerateRequest{
		UserID:  userIDFromContext(c),
		Prompt:  req.Prompt,
		Company: req.Company,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := generateInvoiceResponse{
		Data:     res.Invoice,
		RecordID: res.RecordID,
		Saved:    res.Saved,
	}
	if !res.Saved {
		logger.FromContext(ctx).Warn("invoice returned unsaved", zap.Error(res.SaveError))
		resp.Warning = saveFailedWarning
		if errors.Is(res.SaveError, invoicedomain.ErrDuplicateNumber) {
			resp.Warning = duplicateNumberWarning
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListInvoices(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListRequest{
		UserID:     userIDFromContext(c),
		Pagination: page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":            resp.Invoices,
		"next_page_token": resp.NextPageToken,
		"has_more":        resp.HasMore,
	})
}

func (s *Server) GetInvoice(c *gin.Context) {
	number, ok := invoiceNumberParam(c)
	if !ok {
		return
	}

	inv, err := s.invoiceSvc.Get(c.Request.Context(), userIDFromContext(c), number)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": inv})
}

func (s *Server) DownloadInvoicePDF(c *gin.Context) {
	s.downloadInvoice(c, invoicedomain.RenderFormatPDF)
}

func (s *Server) DownloadInvoiceHTML(c *gin.Context) {
	s.downloadInvoice(c, invoicedomain.RenderFormatHTML)
}

func (s *Server) downloadInvoice(c *gin.Context, format invoicedomain.RenderFormat) {
	number, ok := invoiceNumberParam(c)
	if !ok {
		return
	}

	doc, err := s.invoiceSvc.Render(c.Request.Context(), userIDFromContext(c), number, format)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeDocument(c, doc)
}

// RenderInvoice renders a caller-supplied invoice, typically one edited in
// the client after generation.
func (s *Server) RenderInvoice(c *gin.Context) {
	format := invoicedomain.RenderFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "pdf"))))

	var inv invoicedomain.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	doc, err := s.invoiceSvc.RenderInvoice(c.Request.Context(), inv, format)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writeDocument(c, doc)
}

func invoiceNumberParam(c *gin.Context) (string, bool) {
	number := strings.TrimSpace(c.Param("number"))
	if number == "" {
		AbortWithError(c, newValidationError("number", "required", "invoice number is required"))
		return "", false
	}
	return number, true
}

func writeDocument(c *gin.Context, doc invoicedomain.Document) {
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
