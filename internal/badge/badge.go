// Package badge renders the QR codes printed on student badges. The encoded
// text is the JSON object the check-in pipeline parses as a structured
// payload.
package badge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"

	"schoolattend/internal/cloudinary"
	"schoolattend/internal/roster"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 400

// ErrNotConfigured is returned by Publish when no uploader is wired.
var ErrNotConfigured = errors.New("badge publishing not configured")

// Payload is the JSON encoded into a badge.
type Payload struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	ClassName string `json:"className"`
	// milliseconds since the epoch, when the badge was issued
	Timestamp int64 `json:"timestamp"`
}

// Generator renders badges.
type Generator struct {
	Size int
	Now  func() time.Time
}

// NewGenerator returns a generator for size pixel badges.
func NewGenerator(size int) Generator {
	if size <= 0 {
		size = DefaultSize
	}
	return Generator{Size: size, Now: time.Now}
}

// PayloadFor builds the badge payload of st.
func (g Generator) PayloadFor(st roster.Student) Payload {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return Payload{
		StudentID: st.ID,
		Name:      st.Name,
		ClassName: st.ClassID,
		Timestamp: now().UnixMilli(),
	}
}

// Text returns the string encoded in st's badge.
func (g Generator) Text(st roster.Student) (string, error) {
	b, err := json.Marshal(g.PayloadFor(st))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PNG renders st's badge.
func (g Generator) PNG(st roster.Student) ([]byte, error) {
	text, err := g.Text(st)
	if err != nil {
		return nil, err
	}
	size := g.Size
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrapf(err, "encode qr for %s", st.ID)
	}
	return png, nil
}

// Uploader stores rendered badges.
type Uploader interface {
	UploadPNG(ctx context.Context, data []byte, publicID string) (*cloudinary.UploadResult, error)
}

// Publisher renders badges and uploads them.
type Publisher struct {
	Generator Generator
	Uploader  Uploader
}

// Publish uploads st's badge and returns its public URL. The asset id is the
// student id, so re-publishing replaces the previous badge.
func (p Publisher) Publish(ctx context.Context, st roster.Student) (string, error) {
	if p.Uploader == nil {
		return "", ErrNotConfigured
	}
	png, err := p.Generator.PNG(st)
	if err != nil {
		return "", err
	}
	res, err := p.Uploader.UploadPNG(ctx, png, st.ID)
	if err != nil {
		return "", errors.Wrapf(err, "upload badge for %s", st.ID)
	}
	if res.SecureURL != "" {
		return res.SecureURL, nil
	}
	return res.URL, nil
}
