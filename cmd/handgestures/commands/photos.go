package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/discovery"
)

var (
	photoLimit      int
	discoverTimeout time.Duration
)

var photosCmd = &cobra.Command{
	Use:   "photos",
	Short: "List the photos taken, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		photos, err := st.Photos().List(photoLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(photos) == 0 {
			fmt.Fprintln(out, "No photos taken yet")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TAKEN\tFILENAME\tZOOM\tROTATION\tSOURCE")
		for _, p := range photos {
			fmt.Fprintf(w, "%s\t%s\t%.2fx\t%.1f\t%s\n",
				p.TakenAt.Local().Format(time.DateTime), p.Filename, p.Zoom, p.Rotation, p.Source)
		}
		return w.Flush()
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find viewers advertised on the local network",
	RunE: func(cmd *cobra.Command, args []string) error {
		instances, err := discovery.Browse(discoverTimeout)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(instances) == 0 {
			fmt.Fprintln(out, "No viewers found")
			return nil
		}
		for _, in := range instances {
			fmt.Fprintf(out, "%s\t%s\n", in.Name, in.URL())
		}
		return nil
	},
}

func init() {
	photosCmd.Flags().IntVarP(&photoLimit, "limit", "n", 20, "maximum number of photos")
	discoverCmd.Flags().DurationVarP(&discoverTimeout, "timeout", "t", 2*time.Second, "how long to listen for answers")
}
