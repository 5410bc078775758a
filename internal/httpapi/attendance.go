package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"schoolattend/internal/attendance"
)

func (s *server) listAttendance(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	records, err := s.Attendance.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.internalError(c, err, "list attendance failed")
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "limit": limit, "offset": offset})
}

func (s *server) correctAttendance(c *gin.Context) {
	var req struct {
		Present *bool  `json:"present" binding:"required"`
		Notes   string `json:"notes" binding:"max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindErrors(err)})
		return
	}
	rec, err := s.Attendance.Correct(c.Request.Context(), c.Param("id"), *req.Present, req.Notes)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		s.internalError(c, err, "update attendance failed")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *server) deleteAttendance(c *gin.Context) {
	if err := s.Attendance.Remove(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		s.internalError(c, err, "delete attendance failed")
		return
	}
	c.Status(http.StatusNoContent)
}
