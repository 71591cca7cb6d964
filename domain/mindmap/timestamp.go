package mindmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"pgy3-backend/pkg/utils"
)

// Timestamp is a UTC instant that reads any ISO-8601 rendering the frontends
// have produced and writes RFC 3339. The zero value encodes as null.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t, normalised to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(utils.FormatTimestamp(t.Time))
}

// UnmarshalJSON accepts null and "" as absent. Anything else that is not a
// recognisable ISO-8601 string is an error.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be an ISO-8601 string, got %s", data)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := utils.ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = Timestamp{Time: parsed}
	return nil
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return utils.FormatTimestamp(t.Time)
}
