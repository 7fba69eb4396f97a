/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/allbin/portbrain/internal/tui/components"
	"github.com/allbin/portbrain/internal/tui/styles"
)

// lineReader is the prompt the console reads commands from
type lineReader interface {
	Readline() (string, error)
	Close() error
}

var newLineReader = func(prompt string) (lineReader, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
}

// commandSender is the part of a channel the console needs
type commandSender interface {
	SendCommand(cmd []byte) ([]byte, error)
}

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console <port>",
	Short: "Interactive prompt for raw PortBrain commands",
	Long: `Open a port and type raw commands at a prompt. Each line is sent as
one command and the reply is printed below it.

Console commands:
  :hex    toggle hex display of commands and replies
  :help   show this help
  exit    leave the console (Ctrl+D works too)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		rl, err := newLineReader("portbrain> ")
		if err != nil {
			return fmt.Errorf("failed to create readline: %w", err)
		}
		defer rl.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", styles.InfoStyle.Render("⚡ Connected to"), s.ch.Name())
		runConsole(rl, s.ch, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

// runConsole reads lines until EOF or exit and sends each one to dev
func runConsole(rl lineReader, dev commandSender, out io.Writer) {
	formatter := components.NewExchangeFormatter(false, true)

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			return
		}

		input := strings.TrimSpace(line)
		switch input {
		case "":
			continue
		case "exit", "quit":
			return
		case ":help":
			fmt.Fprintln(out, "Type a command such as VER, PRTRD0 or ADC1. :hex toggles hex display, exit leaves.")
			continue
		case ":hex":
			formatter.ToggleHex()
			fmt.Fprintf(out, "hex display %v\n", formatter.GetDisplayMode().ShowHex)
			continue
		}

		data := []byte(input)
		resp, err := dev.SendCommand(data)
		fmt.Fprintln(out, formatter.FormatExchange(components.Exchange{
			Timestamp: time.Now(),
			Command:   data,
			Response:  resp,
			Err:       err,
		}))
	}
}
