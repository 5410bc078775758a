// Package httpapi exposes the check-in pipeline and its supporting records
// over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"schoolattend/internal/attendance"
	"schoolattend/internal/auth"
	"schoolattend/internal/badge"
	"schoolattend/internal/checkin"
	"schoolattend/internal/httpmiddleware"
	"schoolattend/internal/roster"
	"schoolattend/internal/schedule"
)

// StudentStore is the roster administration surface.
type StudentStore interface {
	roster.Lookup
	List(ctx context.Context) ([]roster.Student, error)
	Upsert(ctx context.Context, st roster.Student) (roster.Student, error)
}

// CacheInvalidator drops cached roster entries after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, id string) error
}

// WindowStore reads and writes the operating window.
type WindowStore interface {
	schedule.Policy
	Update(ctx context.Context, w schedule.Window) error
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) bool

// TokenConfig carries the station token settings.
type TokenConfig struct {
	Issuer     string
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Deps are the collaborators the handlers need. Cache and Publisher may be
// nil.
type Deps struct {
	Tokens     TokenConfig
	Pipeline   *checkin.Pipeline
	Students   StudentStore
	Cache      CacheInvalidator
	Attendance *attendance.Service
	Settings   WindowStore
	Badges     badge.Generator
	Publisher  *badge.Publisher
	Health     map[string]HealthCheck
	Metrics    http.Handler
	RateLimit  int
	Log        logrus.FieldLogger
}

type server struct {
	Deps
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(d Deps) *gin.Engine {
	registerValidators()
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	s := &server{Deps: d}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(d.Log, "/healthz", "/metrics"))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:          24 * time.Hour,
	}))
	r.Use(httpmiddleware.SecurityHeaders())

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}
	r.GET("/healthz", s.health)

	stations := r.Group("/v1/stations", httpmiddleware.NewTokenBucket(d.RateLimit, d.RateLimit).GinMiddleware())
	stations.POST("/register", s.registerStation)
	stations.POST("/refresh", s.refreshStation)

	v1 := r.Group("/v1",
		auth.StationAuth(d.Tokens.SigningKey, d.Tokens.Issuer),
		httpmiddleware.NewTokenBucket(d.RateLimit, d.RateLimit).WithKey(stationKey).GinMiddleware(),
	)

	v1.POST("/scans", s.scan)
	v1.POST("/checkins/manual", s.manualCheckIn)
	v1.GET("/ledger", s.ledger)
	v1.DELETE("/ledger", s.resetLedger)

	v1.GET("/students", s.listStudents)
	v1.PUT("/students/:id", s.upsertStudent)
	v1.GET("/students/:id/qr", s.studentQR)
	v1.POST("/students/:id/qr/publish", s.publishQR)
	v1.GET("/students/:id/attendance", s.studentHistory)
	v1.GET("/students/:id/attendance/stats", s.studentStats)

	v1.GET("/attendance", s.listAttendance)
	v1.PATCH("/attendance/:id", s.correctAttendance)
	v1.DELETE("/attendance/:id", s.deleteAttendance)

	v1.GET("/settings/window", s.getWindow)
	v1.PUT("/settings/window", s.putWindow)

	return r
}

// stationKey charges authenticated requests to the calling station.
func stationKey(c *gin.Context) string {
	if claims, ok := auth.ClaimsFrom(c); ok {
		return "station:" + claims.Subject
	}
	return httpmiddleware.ClientIP(c)
}

func (s *server) health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}
	for name, check := range s.Health {
		ok := check(c.Request.Context())
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

// internalError logs err and answers 500 without leaking details.
func (s *server) internalError(c *gin.Context, err error, msg string) {
	s.Log.WithError(err).WithField("path", c.FullPath()).Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}
