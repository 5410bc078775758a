package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	testKey    = "test-key"
	testIssuer = "school-checkin"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("gate-1", RoleStation, testIssuer, testKey, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("Issue(): %v", err)
	}
	if !pair.RefreshExp.After(pair.AccessExp) {
		t.Errorf("refresh expiry %v not after access expiry %v", pair.RefreshExp, pair.AccessExp)
	}

	tests := []struct {
		name    string
		token   string
		key     string
		issuer  string
		wantErr bool
	}{
		{name: "valid", token: pair.AccessToken, key: testKey, issuer: testIssuer},
		{name: "wrong key", token: pair.AccessToken, key: "other", issuer: testIssuer, wantErr: true},
		{name: "wrong issuer", token: pair.AccessToken, key: testKey, issuer: "someone", wantErr: true},
		{name: "garbage", token: "not.a.jwt", key: testKey, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := Parse(tt.token, tt.key, tt.issuer)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() err = %v; wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (claims.Subject != "gate-1" || claims.Role != RoleStation || claims.Type != TokenAccess) {
				t.Errorf("claims = %+v", claims)
			}
		})
	}

	refresh, err := Parse(pair.RefreshToken, testKey, testIssuer)
	if err != nil {
		t.Fatalf("Parse(refresh): %v", err)
	}
	if refresh.Type != TokenRefresh {
		t.Errorf("refresh typ = %q; want %q", refresh.Type, TokenRefresh)
	}
}

func TestParseExpired(t *testing.T) {
	pair, err := Issue("gate-1", RoleStation, testIssuer, testKey, -time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("Issue(): %v", err)
	}
	if _, err := Parse(pair.AccessToken, testKey, testIssuer); err == nil {
		t.Error("Parse(expired): want error")
	}
}

func TestStationAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", StationAuth(testKey, testIssuer), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, claims.Subject)
	})

	station, _ := Issue("gate-1", RoleStation, testIssuer, testKey, time.Minute, time.Hour)
	admin, _ := Issue("root", "admin", testIssuer, testKey, time.Minute, time.Hour)

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "missing", wantCode: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "wrong role", header: "Bearer " + admin.AccessToken, wantCode: http.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + station.RefreshToken, wantCode: http.StatusUnauthorized},
		{name: "ok", header: "Bearer " + station.AccessToken, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d; want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK && rec.Body.String() != "gate-1" {
				t.Errorf("body = %q; want gate-1", rec.Body.String())
			}
		})
	}
}
