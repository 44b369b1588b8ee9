package session

import "time"

// Hash field names. They are part of the stored format shared with other
// services reading the same keys.
const (
	fieldUserID       = "userId"
	fieldDeviceID     = "deviceId"
	fieldIP           = "ip"
	fieldUserAgent    = "userAgent"
	fieldLastActivity = "lastActivity"
)

// Session is one authenticated device of a subject.
type Session struct {
	SubjectID    string    `json:"userId"`
	DeviceID     string    `json:"deviceId"`
	IP           string    `json:"ip"`
	UserAgent    string    `json:"userAgent"`
	LastActivity time.Time `json:"lastActivity"`
}

// Update lists the fields to merge into an existing session. Nil fields are
// left untouched; LastActivity is always stamped.
type Update struct {
	IP        *string
	UserAgent *string
}

func (s *Session) fields() map[string]interface{} {
	return map[string]interface{}{
		fieldUserID:       s.SubjectID,
		fieldDeviceID:     s.DeviceID,
		fieldIP:           s.IP,
		fieldUserAgent:    s.UserAgent,
		fieldLastActivity: formatTime(s.LastActivity),
	}
}

func fromFields(m map[string]string) *Session {
	if len(m) == 0 {
		return nil
	}
	return &Session{
		SubjectID:    m[fieldUserID],
		DeviceID:     m[fieldDeviceID],
		IP:           m[fieldIP],
		UserAgent:    m[fieldUserAgent],
		LastActivity: parseTime(m[fieldLastActivity]),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime accepts RFC 3339 with or without fractional seconds; anything else
// reads as the zero time.
func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
