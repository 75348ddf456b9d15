package gesture

import (
	"fmt"
	"time"
)

// ActionTakePhoto is the action name carried by photo events.
const ActionTakePhoto = "take_photo"

// PhotoEvent announces that the photo gesture fired. Consumers use Filename
// to persist the transformed frame.
type PhotoEvent struct {
	Action    string  `json:"action"`
	Timestamp float64 `json:"timestamp"` // unix seconds
	Filename  string  `json:"filename"`
}

// NewPhotoEvent builds the event for a trigger at t.
func NewPhotoEvent(t time.Time) PhotoEvent {
	return PhotoEvent{
		Action:    ActionTakePhoto,
		Timestamp: float64(t.UnixNano()) / 1e9,
		Filename:  fmt.Sprintf("photo_%s_transformed.jpg", t.Format("20060102_150405")),
	}
}

// Time returns the event timestamp as a time.Time.
func (e PhotoEvent) Time() time.Time {
	sec := int64(e.Timestamp)
	nsec := int64((e.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
