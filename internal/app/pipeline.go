package app

import (
	"context"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/capture"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/gesture"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/plugin"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/render"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/store"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/viewport"
)

// pipelineState is the mutable state of the frame loop. It is owned by the
// pipeline goroutine and passed by pointer to each step.
type pipelineState struct {
	controller *gesture.Controller

	observations []gesture.HandObservation
	gesture      gesture.TwoHandGesture
	view         gesture.TransformState
	photoStatus  gesture.PhotoStatus
	photos       uint64

	fps fpsCounter
}

// fpsCounter measures frames per second over one-second windows.
type fpsCounter struct {
	start  time.Time
	frames int
	fps    float64
}

func (f *fpsCounter) tick(now time.Time) float64 {
	if f.start.IsZero() {
		f.start = now
	}
	f.frames++
	if elapsed := now.Sub(f.start); elapsed >= time.Second {
		f.fps = float64(f.frames) / elapsed.Seconds()
		f.frames = 0
		f.start = now
	}
	return f.fps
}

// runPipeline is the frame loop. Each iteration:
// 1. Read a frame from the supervised source (mirrored for webcams)
// 2. Detect hands and interpret the two-hand pinch
// 3. Update the view transform and the photo trigger
// 4. Warp the frame, draw the overlay and publish the JPEG to the hub
// 5. Publish photo events and queue their side effects
func (a *App) runPipeline(ctx context.Context, controller *gesture.Controller, done chan struct{}) {
	defer close(done)

	st := &pipelineState{
		controller: controller,
		view:       controller.State(),
	}

	for {
		frame, err := a.supervisor.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			a.fail(err)
			return
		}

		a.processFrame(st, frame, time.Now())
		frame.Close()
	}
}

// processFrame runs one frame through the pipeline. Per-frame errors are
// logged and leave the view at its last value.
func (a *App) processFrame(st *pipelineState, frame *gocv.Mat, now time.Time) {
	if frame.Empty() {
		return
	}

	device := a.supervisor.Device()
	if device.Mirror {
		render.Mirror(frame)
	}
	width, height := frame.Cols(), frame.Rows()
	settings := st.controller.Settings()

	hands, err := a.detector.Detect(frame)
	if err != nil {
		// No hands this frame: keep the view, but the trigger still counts it
		log.Printf("Error detecting hands: %v", err)
		st.observations = nil
		st.gesture = gesture.TwoHandGesture{}
		st.view = st.controller.State()
	} else {
		st.observations = gesture.Observe(hands, width, height, settings.EffectivePinchThreshold())
		st.gesture = gesture.Interpret(st.observations)
		st.view = st.controller.Update(st.gesture)
	}

	var event *gesture.PhotoEvent
	event, st.photoStatus = a.trigger.Observe(st.gesture)
	if event != nil {
		a.firePhoto(st, *event, frame, device)
	}

	fps := st.fps.tick(now)
	a.publishFrame(st, frame, fps)

	a.setStatus(func(s *Status) {
		s.GestureActive = st.gesture.Active
		s.Hands = len(st.observations)
		s.PhotoStatus = st.photoStatus.String()
		s.FPS = fps
		s.Source = device.String()
		s.Width = width
		s.Height = height
		s.Photos = st.photos
	})
}

func (a *App) transformFor(st *pipelineState, width, height int) viewport.Transform {
	return viewport.Transform{
		Zoom:     st.view.Zoom,
		Rotation: st.view.Rotation,
		Width:    width,
		Height:   height,
	}
}

// publishFrame renders the viewer frame and stores it in the hub.
func (a *App) publishFrame(st *pipelineState, frame *gocv.Mat, fps float64) {
	width, height := frame.Cols(), frame.Rows()
	t := a.transformFor(st, width, height)

	out := render.Warp(*frame, t)
	defer out.Close()

	settings := st.controller.Settings()
	render.DrawOverlay(&out, t, render.Overlay{
		Hands:     st.observations,
		Gesture:   st.gesture,
		State:     st.view,
		Status:    st.photoStatus,
		FPS:       fps,
		SourceW:   width,
		SourceH:   height,
		StreamURL: a.config.ViewerURL,
	}, render.Bounds{
		MaxZoom:     settings.MaxZoom,
		MinRotation: settings.MinRotation,
		MaxRotation: settings.MaxRotation,
	})

	data, err := render.EncodeJPEG(out, a.config.JPEGQuality)
	if err != nil {
		log.Printf("Error encoding frame: %v", err)
		return
	}
	a.frames.Publish(data, width, height)
}

// firePhoto publishes the event to viewers and hands the clean transformed
// frame to the dispatcher without blocking the loop.
func (a *App) firePhoto(st *pipelineState, event gesture.PhotoEvent, frame *gocv.Mat, device capture.Device) {
	st.photos++
	log.Printf("Photo gesture: %s (zoom %.2fx, rotation %.1f deg)", event.Filename, st.view.Zoom, st.view.Rotation)

	if err := a.events.Publish(event); err != nil {
		log.Printf("Error publishing photo event: %v", err)
	}

	t := a.transformFor(st, frame.Cols(), frame.Rows())
	clean := render.Warp(*frame, t)
	image, err := render.EncodeJPEG(clean, a.config.JPEGQuality)
	clean.Close()
	if err != nil {
		log.Printf("Error encoding photo %s: %v", event.Filename, err)
	}

	job := photoJob{event: event, view: st.view, source: device.String(), image: image}
	select {
	case a.photos <- job:
	default:
		log.Printf("Photo queue full, dropping side effects for %s", event.Filename)
	}
}

// dispatchPhotos records each photo in the store and runs the photo hooks.
// It exits when jobs is closed.
// Hooks are bounded by the executor timeout, so queued photos are still
// handled after Stop.
func (a *App) dispatchPhotos(jobs <-chan photoJob) {
	defer a.dispatchWG.Done()

	for job := range jobs {
		a.handlePhoto(job)
	}
}

func (a *App) handlePhoto(job photoJob) {
	photo := &store.Photo{
		Filename:  job.event.Filename,
		TakenAt:   job.event.Time(),
		Zoom:      job.view.Zoom,
		Rotation:  job.view.Rotation,
		Source:    job.source,
		SizeBytes: len(job.image),
	}

	recorded := false
	if a.config.Store != nil {
		if err := a.config.Store.Photos().Create(photo); err != nil {
			log.Printf("Failed to record photo %s: %v", photo.Filename, err)
		} else {
			recorded = true
		}
	}

	hooks := a.hooks.ForEvent(gesture.ActionTakePhoto)
	if len(hooks) == 0 {
		return
	}

	results := a.hookExec.RunAll(context.Background(), hooks, &plugin.Request{
		Event:     job.event.Action,
		Filename:  job.event.Filename,
		Timestamp: job.event.Timestamp,
		Zoom:      job.view.Zoom,
		Rotation:  job.view.Rotation,
		Source:    job.source,
		Image:     job.image,
	})

	for _, r := range results {
		if r.OK() {
			log.Printf("Hook %s handled %s in %v", r.Hook, photo.Filename, r.Duration)
		} else {
			log.Printf("Hook %s failed for %s: %s", r.Hook, photo.Filename, r.Message())
		}

		if !recorded {
			continue
		}
		run := &store.HookRun{
			PhotoID:    photo.ID,
			Hook:       r.Hook,
			Success:    r.OK(),
			Message:    r.Message(),
			DurationMS: r.Duration.Milliseconds(),
		}
		if err := a.config.Store.HookRuns().Create(run); err != nil {
			log.Printf("Failed to record hook run %s: %v", r.Hook, err)
		}
	}
}
