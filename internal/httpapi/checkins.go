package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolattend/internal/auth"
	"schoolattend/internal/checkin"
)

type checkinResponse struct {
	Processed bool              `json:"processed"`
	Outcome   *checkin.Outcome  `json:"outcome,omitempty"`
	Feedback  *checkin.Feedback `json:"feedback,omitempty"`
	Entry     *checkin.Entry    `json:"entry,omitempty"`
}

func respondCheckin(c *gin.Context, res checkin.Result, processed bool) {
	if !processed {
		c.JSON(http.StatusAccepted, checkinResponse{Processed: false})
		return
	}
	c.JSON(http.StatusOK, checkinResponse{
		Processed: true,
		Outcome:   &res.Outcome,
		Feedback:  &res.Feedback,
		Entry:     &res.Entry,
	})
}

func (s *server) scan(c *gin.Context) {
	var req struct {
		Payload string `json:"payload" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindErrors(err)})
		return
	}
	station := stationID(c)
	s.Log.WithField("station", station).Debug("scan received")
	res, processed := s.Pipeline.ProcessFrom(c.Request.Context(), station, req.Payload)
	respondCheckin(c, res, processed)
}

func (s *server) manualCheckIn(c *gin.Context) {
	var req struct {
		StudentID string `json:"student_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindErrors(err)})
		return
	}
	res, processed := s.Pipeline.ProcessManualFrom(c.Request.Context(), stationID(c), req.StudentID)
	respondCheckin(c, res, processed)
}

// stationID is the token subject; each station debounces on its own.
func stationID(c *gin.Context) string {
	claims, _ := auth.ClaimsFrom(c)
	return claims.Subject
}

func (s *server) ledger(c *gin.Context) {
	l := s.Pipeline.Ledger()
	c.JSON(http.StatusOK, gin.H{"entries": l.All(), "counts": l.Counts()})
}

func (s *server) resetLedger(c *gin.Context) {
	s.Pipeline.Ledger().Reset()
	c.Status(http.StatusNoContent)
}
