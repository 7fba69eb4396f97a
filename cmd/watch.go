/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/allbin/portbrain"
	"github.com/allbin/portbrain/internal/tui/models"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <port>",
	Short: "Live dashboard of a PortBrain's ports and analog inputs",
	Long: `Poll every digital port, its direction bits and every analog input,
and show them in a live table.

Normal mode keys:
  p / space  pause or resume polling
  r          poll now
  i          command mode: type raw commands, Enter sends, Esc leaves
  h          toggle hex in the command log
  c          clear the command log
  ?          full help
  q          quit

Example:
  portbrain watch /dev/ttyUSB0 --interval 250ms`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")

		s, err := openSession(cmd, args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		m := models.NewWatchModel(models.WatchConfig{
			PortPath:     args[0],
			Settings:     s.cfg.portSettings,
			Interval:     interval,
			Ports:        portbrain.NumPorts,
			AnalogInputs: portbrain.NumAnalogInputs,
		}, s.ctrl, s.ch)

		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationP("interval", "n", 500*time.Millisecond, "Polling interval")
}
