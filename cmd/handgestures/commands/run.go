package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/app"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/config"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/discovery"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/gesture"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/hub"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/server"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/store"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/tray"
)

const (
	shutdownTimeout = 5 * time.Second
	trayRefresh     = 500 * time.Millisecond
)

func runViewer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	viewerURL := discovery.ViewerURL(cfg.Server.Port)
	a := app.New(app.Config{
		Store:          st,
		HooksDir:       cfg.Hooks.Dir,
		HookTimeoutMs:  cfg.Hooks.TimeoutMs,
		Capture:        cfg.Supervisor(),
		Gesture:        cfg.GestureSettings(),
		Trigger:        cfg.TriggerSettings(),
		JPEGQuality:    cfg.Server.JPEGQuality,
		EventQueueSize: cfg.Server.EventQueueSize,
		ViewerURL:      viewerURL,
	})
	if err := a.Start(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	defer a.Stop()

	if cfg.Server.StaticDir != "" {
		log.Printf("Serving static files from: %s", cfg.Server.StaticDir)
	}
	srv := server.New(server.Config{
		StaticDir:      cfg.Server.StaticDir,
		Store:          st,
		Frames:         a.Frames(),
		Events:         a.Events(),
		Pipeline:       a,
		Hooks:          a.Hooks(),
		StreamInterval: cfg.StreamInterval(),
		EventInterval:  cfg.EventInterval(),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s (%s)", cfg.Addr(), viewerURL)
		serverErr <- srv.ListenAndServe(cfg.Addr())
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	if cfg.Discovery {
		adv, err := discovery.Advertise(cfg.Server.Port, "version="+Version)
		if err != nil {
			log.Printf("mDNS advertising unavailable: %v", err)
		} else {
			defer adv.Shutdown()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tray {
		runTray(ctx, a, viewerURL, serverErr)
	} else {
		select {
		case <-ctx.Done():
		case <-a.Done():
		case err := <-serverErr:
			if err != nil {
				log.Printf("Server failed: %v", err)
			}
		}
	}

	log.Println("Shutting down")
	return a.Err()
}

// openStore creates the data directories and opens the photo log.
func openStore(cfg *config.Config) (*store.Store, error) {
	for _, dir := range []string{filepath.Dir(cfg.Store.Path), cfg.Hooks.Dir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	return st, nil
}

// runTray shows the tray menu and blocks until it is closed. A signal, a
// pipeline failure or a server failure closes it.
func runTray(ctx context.Context, a *app.App, viewerURL string, serverErr <-chan error) {
	t := tray.New()
	t.OnReset(func() { a.ResetView() })
	t.OnOpenViewer(func() {
		if err := openBrowser(viewerURL); err != nil {
			log.Printf("Error opening viewer: %v", err)
		}
	})

	sub := a.Events().Subscribe()
	go func() {
		defer sub.Close()
		ticker := time.NewTicker(trayRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case <-a.Done():
				t.Quit()
				return
			case err := <-serverErr:
				if err != nil {
					log.Printf("Server failed: %v", err)
				}
				t.Quit()
				return
			case <-ticker.C:
				s := a.Status()
				t.SetView(s.Zoom, s.Rotation)
				if name := lastPhoto(sub); name != "" {
					t.SetLastPhoto(name)
				}
			}
		}
	}()

	t.Run()
}

// lastPhoto returns the filename of the newest queued photo event.
func lastPhoto(sub *hub.Subscription) string {
	msgs := sub.Drain()
	for i := len(msgs) - 1; i >= 0; i-- {
		var event gesture.PhotoEvent
		if err := json.Unmarshal(msgs[i], &event); err == nil && event.Filename != "" {
			return event.Filename
		}
	}
	return ""
}

// openBrowser opens url with the platform's default handler.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and the data directory.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(config.DataDir(), "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
