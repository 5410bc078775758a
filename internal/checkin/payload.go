package checkin

import (
	"encoding/json"
	"strings"
)

// PayloadKind tells how the student id was obtained from a decode event.
type PayloadKind int

const (
	// Raw means the decoded text was used verbatim as the id.
	Raw PayloadKind = iota
	// Structured means the text was a JSON object carrying the id.
	Structured
)

func (k PayloadKind) String() string {
	if k == Structured {
		return "structured"
	}
	return "raw"
}

// Payload is the parsed form of one decode event.
type Payload struct {
	Kind PayloadKind
	ID   string
}

// badge is the JSON printed on student QR badges. Older badges carry "id".
type badge struct {
	StudentID json.RawMessage `json:"studentId"`
	ID        json.RawMessage `json:"id"`
}

// ParsePayload never fails: anything that is not a JSON object with a usable
// studentId or id field is taken as a raw id.
func ParsePayload(raw string) Payload {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "{") {
		var b badge
		if err := json.Unmarshal([]byte(text), &b); err == nil {
			if id := idField(b.StudentID); id != "" {
				return Payload{Kind: Structured, ID: id}
			}
			if id := idField(b.ID); id != "" {
				return Payload{Kind: Structured, ID: id}
			}
		}
	}
	return Payload{Kind: Raw, ID: raw}
}

// idField accepts a JSON string or number.
func idField(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}
