/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/allbin/portbrain"
	"github.com/allbin/portbrain/channel"
	"github.com/allbin/portbrain/internal/simdev"
	"github.com/allbin/portbrain/internal/tui/styles"
)

// simulatedBench is the set of ports discover scans with --simulate: two
// PortBrains around a port that never answers
var simulatedBench = func() map[string]*simdev.Device {
	return map[string]*simdev.Device{
		"sim0": simdev.New(),
		"sim1": simdev.New(simdev.WithMode(simdev.ModeSilent)),
		"sim2": simdev.New(simdev.WithVersion("1.5")),
	}
}

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find PortBrains on the available serial ports",
	Long: `Probe every available serial port for a PortBrain.

Each port is opened, asked for its firmware version and closed again. Ports
that cannot be opened or do not answer within --probe-timeout are skipped.
Discovery stops after --max devices; ports are scanned in name order.

Examples:
  portbrain discover
  portbrain discover --max 4 --concurrency 4 --format yaml
  portbrain discover --simulate --max 3 --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		maxCount, _ := cmd.Flags().GetInt("max")
		format, _ := cmd.Flags().GetString("format")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		probeTimeout, _ := cmd.Flags().GetDuration("probe-timeout")

		switch format {
		case "text", "yaml", "json":
		default:
			return fmt.Errorf("unknown format %q (want text, yaml or json)", format)
		}

		cfg, err := loadSessionConfig(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		opts := []portbrain.DiscoveryOption{
			portbrain.WithMaxCount(maxCount),
			portbrain.WithConcurrency(concurrency),
			portbrain.WithProbeTimeout(probeTimeout),
			portbrain.WithCommandTimeout(cfg.timeout),
			portbrain.WithPortSettings(cfg.portSettings),
			portbrain.WithDiscoveryLogger(cfg.logger),
		}
		if cfg.simulate {
			opts = append(opts, simulatedDiscovery(simulatedBench())...)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		ctrls, err := portbrain.Discover(ctx, opts...)
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}
		defer portbrain.CloseAll(ctrls)

		infos := make([]portbrain.DeviceInfo, 0, len(ctrls))
		for _, c := range ctrls {
			infos = append(infos, c.DeviceInfo())
		}

		return printDevices(cmd, format, infos)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().IntP("max", "m", 1, "Stop after this many PortBrains")
	discoverCmd.Flags().StringP("format", "o", "text", "Output format: text, yaml, json")
	discoverCmd.Flags().IntP("concurrency", "c", 1, "Number of ports probed at once")
	discoverCmd.Flags().Duration("probe-timeout", portbrain.DefaultProbeTimeout, "Time to wait for a probed port to answer")
}

// simulatedDiscovery points discovery at bench instead of the serial ports
func simulatedDiscovery(bench map[string]*simdev.Device) []portbrain.DiscoveryOption {
	names := make([]string, 0, len(bench))
	for name := range bench {
		names = append(names, name)
	}
	sort.Strings(names)

	return []portbrain.DiscoveryOption{
		portbrain.WithLister(func() ([]string, error) {
			return names, nil
		}),
		portbrain.WithChannelFactory(func(name string, logger *slog.Logger) *channel.Channel {
			return channel.New(bench[name], channel.WithLogger(logger), channel.WithYield(time.Millisecond))
		}),
	}
}

func printDevices(cmd *cobra.Command, format string, infos []portbrain.DeviceInfo) error {
	out := cmd.OutOrStdout()

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(infos); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	if len(infos) == 0 {
		fmt.Fprintln(out, "No PortBrain found")
		return nil
	}

	fmt.Fprintf(out, "Found %d PortBrain(s):\n", len(infos))
	for _, info := range infos {
		fmt.Fprintf(out, "  %s %s %s\n",
			styles.SuccessStyle.Render("✓"),
			styles.ValueStyle.Render(info.ChannelName),
			styles.LabelStyle.Render("version "+info.Version))
	}
	return nil
}
