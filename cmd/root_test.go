package cmd

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allbin/portbrain/internal/simdev"
)

// execute runs the command tree with args and fresh configuration
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	bindFlags()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// useSimulator makes --simulate sessions talk to dev
func useSimulator(t *testing.T, dev *simdev.Device) {
	t.Helper()
	old := simulator
	simulator = func([]byte) *simdev.Device { return dev }
	t.Cleanup(func() { simulator = old })
}

func TestParseTerminator(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "\r"},
		{"cr", "\r"},
		{"CR", "\r"},
		{"lf", "\n"},
		{"crlf", "\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTerminator(tt.name)
			require.NoError(t, err)
			assert.Equal(t, []byte(tt.want), got)
		})
	}

	_, err := parseTerminator("nul")
	assert.ErrorIs(t, err, ErrUnknownTerminator)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "info")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown", slog.String("port", "sim0"))
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "port=sim0")

	_, err = newLogger(&buf, "loud")
	assert.Error(t, err)
}

func TestGlobalConfigErrors(t *testing.T) {
	useSimulator(t, simdev.New())

	_, err := execute(t, "version", "sim0", "--simulate", "--terminator", "nul")
	assert.ErrorIs(t, err, ErrUnknownTerminator)

	_, err = execute(t, "version", "sim0", "--simulate", "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestEnvironmentConfig(t *testing.T) {
	dev := simdev.New(simdev.WithTerminator([]byte("\n")))
	useSimulator(t, dev)

	t.Setenv("PORTBRAIN_SIMULATE", "true")
	t.Setenv("PORTBRAIN_TERMINATOR", "lf")

	out, err := execute(t, "version", "sim0")
	require.NoError(t, err)
	assert.Contains(t, out, simdev.DefaultVersion)
}

func TestSessionOpenFailure(t *testing.T) {
	useSimulator(t, simdev.New(simdev.WithOpenError(simdev.ErrClosed)))

	_, err := execute(t, "version", "sim0", "--simulate")
	assert.ErrorIs(t, err, simdev.ErrClosed)
	assert.ErrorContains(t, err, "open sim0")
}
