package main

import (
	"fmt"
	"os"
	"time"

	logp "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var log = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "paradox",
})

var clientLog = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "mgsp",
})

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const manufacturer = "Paradox"

var debug bool

var rootCmd = &cobra.Command{
	Use:   "paradox-mgsp",
	Short: "Talk to Paradox MG/SP alarm panels over their serial protocol",
	Long: `paradox-mgsp speaks the binary serial protocol of Paradox MG/SP alarm
panels, through a local serial port or an IP100/IP150 serial-over-IP bridge.

The connection is configured through the environment:
  Serial:    PARADOX_DEVICE=/dev/ttyUSB0 [PARADOX_BAUD=9600]
  IP bridge: PARADOX_HOST=192.168.1.50 [PARADOX_PORT=10000]

The pc password (4 hexadecimal digits, "0000" from the factory) is read from
PARADOX_PASSWORD, or prompted interactively if not set. There is no
--password flag, to keep credentials out of shell history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			log.SetLevel(logp.DebugLevel)
			clientLog.SetLevel(logp.DebugLevel)
		}
	},
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log protocol chatter")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal("command failed", "err", err)
	}
}
