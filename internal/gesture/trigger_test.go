package gesture

import (
	"encoding/json"
	"testing"
	"time"
)

// fakeClock advances by step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func newClock(step time.Duration) *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC), step: step}
}

func feed(p *PhotoTrigger, distances ...float64) []*PhotoEvent {
	var fired []*PhotoEvent
	for _, d := range distances {
		if evt, _ := p.Observe(active(d, 0)); evt != nil {
			fired = append(fired, evt)
		}
	}
	return fired
}

func TestPhotoTrigger_FiresOnConvergence(t *testing.T) {
	clock := newClock(0)
	p := NewPhotoTrigger(DefaultTriggerSettings(), clock.Now)

	fired := feed(p, 300, 250, 200, 150, 100)
	if len(fired) != 1 {
		t.Fatalf("expected exactly one trigger, got %d", len(fired))
	}

	evt := fired[0]
	if evt.Action != ActionTakePhoto {
		t.Errorf("expected action %q, got %q", ActionTakePhoto, evt.Action)
	}
	if evt.Filename != "photo_20260304_050607_transformed.jpg" {
		t.Errorf("unexpected filename %q", evt.Filename)
	}
	if p.Cooldown() != 15 {
		t.Errorf("expected cooldown 15, got %d", p.Cooldown())
	}
}

func TestPhotoTrigger_Conditions(t *testing.T) {
	tests := []struct {
		name      string
		distances []float64
		want      int
	}{
		{"too slow", []float64{300, 280, 260, 240, 140}, 0},
		{"too far apart at the end", []float64{600, 500, 450, 420, 390}, 0},
		{"proximity is strict", []float64{400, 350, 300, 200, 150}, 0},
		{"minimum three samples", []float64{400, 300, 100}, 1},
		{"two samples are not enough", []float64{400, 100}, 0},
		{"hands moving apart", []float64{100, 150, 200, 250, 300}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPhotoTrigger(DefaultTriggerSettings(), newClock(0).Now)
			if got := len(feed(p, tt.distances...)); got != tt.want {
				t.Errorf("expected %d triggers, got %d", tt.want, got)
			}
		})
	}
}

func TestPhotoTrigger_HistoryEvictsOldest(t *testing.T) {
	p := NewPhotoTrigger(DefaultTriggerSettings(), newClock(0).Now)

	// The 900 falls out of the window before the hands get close
	feed(p, 900, 300, 290, 280, 270, 260)
	if v := p.Velocity(); v != 40 {
		t.Errorf("expected velocity over the last 5 samples of 40, got %.1f", v)
	}
}

func TestPhotoTrigger_InactiveClearsHistory(t *testing.T) {
	p := NewPhotoTrigger(DefaultTriggerSettings(), newClock(0).Now)

	feed(p, 500, 400, 300)
	p.Observe(TwoHandGesture{})
	if fired := feed(p, 120, 100); len(fired) != 0 {
		t.Errorf("expected history to restart after the gesture dropped, got %d triggers", len(fired))
	}
}

func TestPhotoTrigger_AtMostOncePerSecond(t *testing.T) {
	settings := DefaultTriggerSettings()
	settings.CooldownFrames = 0
	clock := newClock(100 * time.Millisecond)
	p := NewPhotoTrigger(settings, clock.Now)

	var times []time.Time
	for burst := 0; burst < 20; burst++ {
		p.Observe(TwoHandGesture{})
		for _, evt := range feed(p, 300, 250, 200, 150, 100) {
			times = append(times, evt.Time())
		}
	}

	if len(times) < 2 {
		t.Fatalf("expected repeated triggers over 12s, got %d", len(times))
	}
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap <= time.Second {
			t.Errorf("triggers %d and %d only %v apart", i-1, i, gap)
		}
	}
}

func TestPhotoTrigger_RefractoryIsStrict(t *testing.T) {
	settings := DefaultTriggerSettings()
	settings.CooldownFrames = 0
	clock := newClock(0)
	p := NewPhotoTrigger(settings, clock.Now)

	if len(feed(p, 300, 250, 200, 150, 100)) != 1 {
		t.Fatal("expected first trigger")
	}

	clock.t = clock.t.Add(time.Second)
	p.Observe(TwoHandGesture{})
	if len(feed(p, 300, 250, 200, 150, 100)) != 0 {
		t.Error("expected no trigger exactly one second later")
	}

	clock.t = clock.t.Add(time.Millisecond)
	p.Observe(TwoHandGesture{})
	if len(feed(p, 300, 250, 200, 150, 100)) != 1 {
		t.Error("expected a trigger after the refractory period")
	}
}

func TestPhotoTrigger_CooldownDecrementsWhileInactive(t *testing.T) {
	clock := newClock(time.Second)
	p := NewPhotoTrigger(DefaultTriggerSettings(), clock.Now)

	feed(p, 300, 250, 200, 150, 100)
	for i := 0; i < 14; i++ {
		if _, status := p.Observe(TwoHandGesture{}); status != StatusTaken {
			t.Fatalf("frame %d: expected StatusTaken during cooldown, got %v", i, status)
		}
	}
	if p.Cooldown() != 1 {
		t.Fatalf("expected cooldown 1, got %d", p.Cooldown())
	}
	p.Observe(TwoHandGesture{})
	if p.Cooldown() != 0 {
		t.Fatalf("expected cooldown to expire, got %d", p.Cooldown())
	}

	if len(feed(p, 300, 250, 200, 150, 100)) != 1 {
		t.Error("expected trigger to re-arm after cooldown")
	}
}

func TestPhotoTrigger_Status(t *testing.T) {
	p := NewPhotoTrigger(DefaultTriggerSettings(), newClock(0).Now)

	if _, status := p.Observe(TwoHandGesture{}); status != StatusIdle {
		t.Errorf("expected idle, got %v", status)
	}
	if _, status := p.Observe(active(500, 0)); status != StatusHint {
		t.Errorf("expected hint, got %v", status)
	}
	if _, status := p.Observe(active(380, 0)); status != StatusReady {
		t.Errorf("expected ready, got %v", status)
	}
	if StatusReady.String() != "Ready for photo!" || StatusTaken.String() != "Photo taken!" {
		t.Error("unexpected status text")
	}
}

func TestPhotoEvent_JSON(t *testing.T) {
	evt := NewPhotoEvent(time.Unix(1700000000, 500000000).UTC())

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["action"] != "take_photo" {
		t.Errorf("expected action take_photo, got %v", decoded["action"])
	}
	if ts, ok := decoded["timestamp"].(float64); !ok || ts != 1700000000.5 {
		t.Errorf("expected timestamp 1700000000.5, got %v", decoded["timestamp"])
	}
	if decoded["filename"] != "photo_20231114_221320_transformed.jpg" {
		t.Errorf("unexpected filename %v", decoded["filename"])
	}
}
