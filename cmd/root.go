/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/allbin/portbrain"
	"github.com/allbin/portbrain/channel"
	"github.com/allbin/portbrain/internal/simdev"
	"github.com/allbin/portbrain/serial"
)

// ErrUnknownTerminator is returned for --terminator values other than cr, lf and crlf
var ErrUnknownTerminator = errors.New("unknown terminator")

var cfgFile string

// simulator builds the device behind a --simulate session
var simulator = func(terminator []byte) *simdev.Device {
	return simdev.New(simdev.WithTerminator(terminator))
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "portbrain",
	Short: "Talk to PortBrain I/O controllers over serial ports",
	Long: `portbrain finds and drives PortBrain I/O controllers, small ASCII
command/response devices with digital ports and analog inputs.

Every command is a short ASCII verb terminated by a carriage return, and
every reply is a single terminated line:

  VER       firmware version, e.g. 1.4
  PRTRD<n>  read digital port n
  PRTWR<n>v write value v to digital port n
  DIRRD<n>  read the direction bits of port n
  DIRWR<n>v write direction bits v to port n
  ADC<n>    read analog input n

Use --simulate to try any command against a built-in simulated device.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.portbrain.yaml)")
	flags.String("port-settings", portbrain.DefaultPortSettings, "serial settings, e.g. baud=9600,databits=8,parity=N,stopbits=1")
	flags.String("terminator", "cr", "command and response terminator: cr, lf, crlf")
	flags.Duration("timeout", portbrain.DefaultCommandTimeout, "time to wait for each reply")
	flags.Bool("simulate", false, "talk to a simulated PortBrain instead of a serial port")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")

	bindFlags()
}

// bindFlags lets config file and environment values stand in for the global flags
func bindFlags() {
	for _, name := range []string{"port-settings", "terminator", "timeout", "simulate", "log-level"} {
		cobra.CheckErr(viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".portbrain")
	}

	viper.SetEnvPrefix("PORTBRAIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// sessionConfig is the resolved global configuration of one invocation
type sessionConfig struct {
	portSettings string
	terminator   []byte
	timeout      time.Duration
	simulate     bool
	logger       *slog.Logger
}

func loadSessionConfig(stderr io.Writer) (*sessionConfig, error) {
	terminator, err := parseTerminator(viper.GetString("terminator"))
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(stderr, viper.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	return &sessionConfig{
		portSettings: viper.GetString("port-settings"),
		terminator:   terminator,
		timeout:      viper.GetDuration("timeout"),
		simulate:     viper.GetBool("simulate"),
		logger:       logger,
	}, nil
}

func parseTerminator(name string) ([]byte, error) {
	switch strings.ToLower(name) {
	case "", "cr":
		return []byte("\r"), nil
	case "lf":
		return []byte("\n"), nil
	case "crlf":
		return []byte("\r\n"), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTerminator, name)
	}
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// session is an open channel to one PortBrain
type session struct {
	ch   *channel.Channel
	ctrl *portbrain.Controller
	cfg  *sessionConfig
}

// openSession opens portPath with the global configuration. With --simulate
// the port name only labels the simulated device.
func openSession(cmd *cobra.Command, portPath string) (*session, error) {
	cfg, err := loadSessionConfig(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	var ch *channel.Channel
	if cfg.simulate {
		ch = channel.New(simulator(cfg.terminator),
			channel.WithLogger(cfg.logger),
			channel.WithYield(time.Millisecond))
	} else {
		ch = serial.NewChannel(cfg.logger)
	}

	err = ch.Open(channel.Settings{
		ReadTerminator:    cfg.terminator,
		CmdTerminator:     cfg.terminator,
		CmdTimeout:        cfg.timeout,
		TransportName:     portPath,
		TransportSettings: cfg.portSettings,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portPath, err)
	}

	return &session{
		ch:   ch,
		ctrl: portbrain.NewController(ch, portbrain.WithLogger(cfg.logger)),
		cfg:  cfg,
	}, nil
}

func (s *session) Close() error {
	return s.ch.Close()
}
