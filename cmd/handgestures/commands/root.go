package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/config"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var (
	// Global flags
	configPath string

	// Run flags
	rtmpURL   string
	useWebcam bool
	webcamID  int
	port      int
	noTray    bool
	staticDir string
)

var rootCmd = &cobra.Command{
	Use:   "handgestures",
	Short: "Zoom, rotate and take photos with two-hand pinch gestures",
	Long: `handgestures - hand gesture control for a live camera view.

Pinch with both hands to grab the view: move the hands apart to zoom in,
together to zoom out, and turn them to rotate. Bring both pinching hands
together quickly to take a photo.

The transformed view is served to browsers as an MJPEG stream, and photo
events are pushed to viewers over SSE and WebSocket.

Examples:
  # Use the default webcam
  handgestures

  # Read an RTMP stream, falling back to the webcam
  handgestures --rtmp rtmp://192.168.1.20/live/glasses

  # List the last photos taken
  handgestures photos --limit 10`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runViewer,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")

	flags := rootCmd.Flags()
	flags.StringVar(&rtmpURL, "rtmp", "", "RTMP stream URL")
	flags.BoolVar(&useWebcam, "webcam", false, "use the webcam even when a stream is configured")
	flags.IntVar(&webcamID, "webcam-id", 0, "webcam device index")
	flags.IntVarP(&port, "port", "p", 0, "viewer HTTP port")
	flags.BoolVar(&noTray, "no-tray", false, "run without the system tray")
	flags.StringVar(&staticDir, "static", "", "directory of static viewer files")

	rootCmd.AddCommand(photosCmd, discoverCmd, versionCmd)
}

// loadConfig loads the configuration and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("rtmp") {
		cfg.Source.RTMPURL = rtmpURL
	}
	if flags.Changed("webcam") {
		cfg.Source.UseWebcam = useWebcam
	}
	if flags.Changed("webcam-id") {
		cfg.Source.WebcamID = webcamID
	}
	if flags.Changed("port") {
		cfg.Server.Port = port
	}
	if flags.Changed("no-tray") {
		cfg.Tray = !noTray
	}
	if flags.Changed("static") {
		cfg.Server.StaticDir = staticDir
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = findWebDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "handgestures", Version)
	},
}
