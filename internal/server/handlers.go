package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	invoicepdf "github.com/porticus-lab/go-invoice-pdf"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// generatePDF handles POST /v1/invoices/pdf.
//
// The response body is always an invoicepdf.Response. Malformed bodies and
// records rejected by ?validate=true are 400; export failures are 500.
func (s *Server) generatePDF(c *gin.Context) {
	rec, ok := s.bindRecord(c)
	if !ok {
		return
	}

	if validate, _ := strconv.ParseBool(c.Query("validate")); validate {
		if err := rec.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, invoicepdf.Response{Success: false, Error: err.Error()})
			return
		}
	}

	resp := s.exporter.Generate(c.Request.Context(), rec)
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusInternalServerError
		_ = c.Error(errorString(resp.Error))
	}
	c.JSON(status, resp)
}

// preview handles POST /v1/invoices/preview and returns the composed
// markup without rendering it.
func (s *Server) preview(c *gin.Context) {
	rec, ok := s.bindRecord(c)
	if !ok {
		return
	}

	markup, err := s.composer.Compose(rec)
	if err != nil {
		requestLogger(c, s.logger).Error("compose failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, invoicepdf.Response{Success: false, Error: err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(markup))
}

func (s *Server) bindRecord(c *gin.Context) (*invoicepdf.InvoiceRecord, bool) {
	var rec invoicepdf.InvoiceRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, invoicepdf.Response{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
		return nil, false
	}
	return &rec, true
}

type errorString string

func (e errorString) Error() string { return string(e) }
