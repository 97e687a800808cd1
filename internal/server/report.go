package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) Report(c *gin.Context) {
	rangeKey := strings.TrimSpace(c.Query("range"))
	if rangeKey == "" {
		rangeKey = "weekly"
	}

	resp, err := s.reportSvc.Report(c.Request.Context(), rangeKey)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
