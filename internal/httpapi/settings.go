package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolattend/internal/schedule"
)

type windowBody struct {
	Start string `json:"start" binding:"required,hhmm"`
	End   string `json:"end" binding:"required,hhmm"`
}

func (s *server) getWindow(c *gin.Context) {
	w, err := s.Settings.CurrentWindow(c.Request.Context())
	if err != nil {
		s.internalError(c, err, "load window failed")
		return
	}
	c.JSON(http.StatusOK, windowBody{Start: w.Start.String(), End: w.End.String()})
}

func (s *server) putWindow(c *gin.Context) {
	var req windowBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindErrors(err)})
		return
	}
	w, err := schedule.ParseWindow(req.Start, req.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": map[string]string{"end": "end must not be before start"}})
		return
	}
	if err := s.Settings.Update(c.Request.Context(), w); err != nil {
		s.internalError(c, err, "save window failed")
		return
	}
	c.JSON(http.StatusOK, windowBody{Start: w.Start.String(), End: w.End.String()})
}
