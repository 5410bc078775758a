package logger

import (
	"testing"

	"github.com/sirupsen/logrus"

	"schoolattend/internal/config"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.App
		wantLevel logrus.Level
		wantJSON  bool
	}{
		{name: "dev text", cfg: config.App{Env: "dev", LogLevel: "debug"}, wantLevel: logrus.DebugLevel},
		{name: "production json", cfg: config.App{Env: "production", LogLevel: "WARN"}, wantLevel: logrus.WarnLevel, wantJSON: true},
		{name: "bad level", cfg: config.App{Env: "dev", LogLevel: "loud"}, wantLevel: logrus.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Init(tt.cfg)
			if l.GetLevel() != tt.wantLevel {
				t.Errorf("level = %s; want %s", l.GetLevel(), tt.wantLevel)
			}
			_, isJSON := l.Formatter.(*logrus.JSONFormatter)
			if isJSON != tt.wantJSON {
				t.Errorf("JSON formatter = %v; want %v", isJSON, tt.wantJSON)
			}
		})
	}
}
