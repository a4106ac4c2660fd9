package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/vesync-go/vesync/pkg/vesync"
)

// NewTimerCommand creates the timer command, a local countdown driven by the
// same state machine device timers use.
func NewTimerCommand() *cobra.Command {
	var action string

	cmd := &cobra.Command{
		Use:   "timer [seconds]",
		Short: "Run a local countdown timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.Atoi(args[0])
			if err != nil || seconds <= 0 {
				return fmt.Errorf("invalid duration: %s", args[0])
			}

			timer := vesync.NewTimer(seconds, action)
			bar, err := pterm.DefaultProgressbar.
				WithTotal(seconds).
				WithTitle(fmt.Sprintf("timer (%s)", action)).
				Start()
			if err != nil {
				return err
			}

			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			shown := 0
			for !timer.IsDone() {
				select {
				case <-cmd.Context().Done():
					timer.Pause()
					bar.Stop()
					return cmd.Context().Err()
				case <-ticker.C:
					elapsed := seconds - timer.Remaining()
					bar.Add(elapsed - shown)
					shown = elapsed
				}
			}
			bar.Add(seconds - shown)
			bar.Stop()
			pterm.Success.Printf("timer done: %s\n", action)
			return nil
		},
	}
	cmd.Flags().StringVar(&action, "action", "off", "Label for what happens when the timer completes")
	return cmd
}
