package gesture

import "time"

// PhotoStatus is the hint shown to the user about the photo gesture.
type PhotoStatus int

const (
	// StatusIdle means no two-hand gesture is in progress.
	StatusIdle PhotoStatus = iota
	// StatusHint invites the user to bring their hands together.
	StatusHint
	// StatusReady means the hands are converging fast enough to be close to firing.
	StatusReady
	// StatusTaken is shown while the trigger is cooling down.
	StatusTaken
)

// String returns the overlay text for the status.
func (s PhotoStatus) String() string {
	switch s {
	case StatusHint:
		return "Move hands together quickly for photo"
	case StatusReady:
		return "Ready for photo!"
	case StatusTaken:
		return "Photo taken!"
	default:
		return ""
	}
}

// PhotoTrigger detects a quick inward convergence of both pinching hands.
// It is driven by the pipeline goroutine only and is not safe for concurrent use.
type PhotoTrigger struct {
	settings TriggerSettings
	now      func() time.Time

	history     []float64
	cooldown    int
	lastTrigger time.Time
}

// NewPhotoTrigger creates a trigger. A nil clock uses time.Now.
func NewPhotoTrigger(settings TriggerSettings, now func() time.Time) *PhotoTrigger {
	if now == nil {
		now = time.Now
	}
	if settings.HistorySize < 2 {
		settings.HistorySize = 2
	}
	if settings.MinSamples < 2 {
		settings.MinSamples = 2
	}
	if settings.MinSamples > settings.HistorySize {
		settings.MinSamples = settings.HistorySize
	}
	return &PhotoTrigger{
		settings: settings,
		now:      now,
		history:  make([]float64, 0, settings.HistorySize),
	}
}

// Observe processes one frame. It returns a non-nil event on the frame the
// gesture fires, together with the status hint for the overlay.
//
// The cooldown counts processed frames, active or not, so a stream that loses
// the hands right after a photo still re-arms.
func (p *PhotoTrigger) Observe(g TwoHandGesture) (*PhotoEvent, PhotoStatus) {
	now := p.now()

	if !g.Active {
		p.history = p.history[:0]
		status := StatusIdle
		if p.cooldown > 0 {
			p.cooldown--
			status = StatusTaken
		}
		return nil, status
	}

	if len(p.history) == p.settings.HistorySize {
		copy(p.history, p.history[1:])
		p.history = p.history[:len(p.history)-1]
	}
	p.history = append(p.history, g.Distance)

	velocity := p.Velocity()
	if len(p.history) >= p.settings.MinSamples &&
		velocity >= p.settings.ConvergenceThreshold &&
		g.Distance < p.settings.ProximityThreshold &&
		p.cooldown == 0 &&
		(p.lastTrigger.IsZero() || now.Sub(p.lastTrigger) > p.settings.Refractory) {
		p.cooldown = p.settings.CooldownFrames
		p.lastTrigger = now
		evt := NewPhotoEvent(now)
		return &evt, StatusTaken
	}

	if p.cooldown > 0 {
		p.cooldown--
		return nil, StatusTaken
	}
	if velocity > p.settings.ConvergenceThreshold/2 {
		return nil, StatusReady
	}
	return nil, StatusHint
}

// Velocity is how far the hands closed across the history window, in pixels.
// Positive when converging.
func (p *PhotoTrigger) Velocity() float64 {
	if len(p.history) < 2 {
		return 0
	}
	return p.history[0] - p.history[len(p.history)-1]
}

// Cooldown returns the remaining cooldown frames.
func (p *PhotoTrigger) Cooldown() int {
	return p.cooldown
}

// Reset clears history and cooldown.
func (p *PhotoTrigger) Reset() {
	p.history = p.history[:0]
	p.cooldown = 0
}
