package analytics

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	httperr "github.com/ridemart-lab/ridemart/internal/core/errors"
)

// RegisterRoutes registers all analytics API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/analytics/:function", s.HandleQuery)
	r.GET("/v1/reports", s.HandleListReports)
	r.GET("/v1/reports/:name", s.HandleReport)
}

// HandleQuery handles GET /v1/analytics/:function
// Query parameters: partition_by, order_by, desc, k, n
func (s *Service) HandleQuery(c *gin.Context) {
	var query QueryRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}
	query.Function = c.Param("function")

	resp, err := s.Query(c.Request.Context(), query)
	if err != nil {
		writeQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleListReports handles GET /v1/reports
func (s *Service) HandleListReports(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reports": ReportNames()})
}

// HandleReport handles GET /v1/reports/:name
func (s *Service) HandleReport(c *gin.Context) {
	name := c.Param("name")

	resp, found, err := s.Report(c.Request.Context(), name)
	if !found {
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpReportNotFoundError,
			Message:   "Unknown report",
			Details:   gin.H{"name": name, "available": ReportNames()},
		})
		return
	}
	if err != nil {
		writeQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func writeQueryError(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidQuery) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid analytics query",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to run analytics query",
		Details:   err.Error(),
	})
}
