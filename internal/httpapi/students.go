package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"schoolattend/internal/attendance"
	"schoolattend/internal/badge"
	"schoolattend/internal/roster"
)

func (s *server) listStudents(c *gin.Context) {
	students, err := s.Students.List(c.Request.Context())
	if err != nil {
		s.internalError(c, err, "list students failed")
		return
	}
	if students == nil {
		students = []roster.Student{}
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

func (s *server) upsertStudent(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required,max=200"`
		Status  string `json:"status" binding:"omitempty,oneof=active suspended expelled"`
		ClassID string `json:"class_id" binding:"max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindErrors(err)})
		return
	}
	ctx := c.Request.Context()
	st, err := s.Students.Upsert(ctx, roster.Student{
		ID:      c.Param("id"),
		Name:    req.Name,
		Status:  roster.Status(req.Status),
		ClassID: req.ClassID,
	})
	if err != nil {
		s.internalError(c, err, "save student failed")
		return
	}
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, st.ID); err != nil {
			s.Log.WithError(err).WithField("student_id", st.ID).Warn("roster cache invalidation failed")
		}
	}
	c.JSON(http.StatusOK, st)
}

// findStudent loads the :id student or writes the error response.
func (s *server) findStudent(c *gin.Context) (roster.Student, bool) {
	st, err := s.Students.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		} else {
			s.internalError(c, err, "load student failed")
		}
		return roster.Student{}, false
	}
	return st, true
}

func (s *server) studentQR(c *gin.Context) {
	st, ok := s.findStudent(c)
	if !ok {
		return
	}
	png, err := s.Badges.PNG(st)
	if err != nil {
		s.internalError(c, err, "render badge failed")
		return
	}
	c.Header("Content-Disposition", `inline; filename="QR_`+st.ID+`.png"`)
	c.Data(http.StatusOK, "image/png", png)
}

func (s *server) publishQR(c *gin.Context) {
	if s.Publisher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	}
	st, ok := s.findStudent(c)
	if !ok {
		return
	}
	url, err := s.Publisher.Publish(c.Request.Context(), st)
	if err != nil {
		if errors.Is(err, badge.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
			return
		}
		s.Log.WithError(err).WithField("student_id", st.ID).Error("badge upload failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"student_id": st.ID, "url": url})
}

func (s *server) studentHistory(c *gin.Context) {
	records, err := s.Attendance.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.internalError(c, err, "load attendance failed")
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (s *server) studentStats(c *gin.Context) {
	var q struct {
		From string `form:"from" binding:"required,datetime=2006-01-02"`
		To   string `form:"to" binding:"required,datetime=2006-01-02"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindErrors(err)})
		return
	}
	stats, err := s.Attendance.Stats(c.Request.Context(), c.Param("id"), q.From, q.To)
	if err != nil {
		s.internalError(c, err, "compute stats failed")
		return
	}
	c.JSON(http.StatusOK, stats)
}
