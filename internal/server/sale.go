package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	saledomain "github.com/johnwalle/pharma-stock-api/internal/sale/domain"
)

type createSaleRequest struct {
	// Single-line form.
	MedicineID string `json:"medicine_id"`
	Quantity   int    `json:"quantity"`

	// Batch form. When present it takes precedence.
	Items []saledomain.Line `json:"items"`
}

func (s *Server) CreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lines := req.Items
	if len(lines) == 0 {
		lines = []saledomain.Line{{MedicineID: req.MedicineID, Quantity: req.Quantity}}
	}

	resp, err := s.saleSvc.SellBatch(c.Request.Context(), saledomain.BatchRequest{Lines: lines})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var units int
	for _, record := range resp.Sales {
		units += record.Quantity
	}
	s.metrics.RecordSale(units)

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) SalesAnalytics(c *gin.Context) {
	resp, err := s.reportSvc.Dashboard(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
