package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bypassZone int

var bypassCmd = &cobra.Command{
	Use:   "bypass",
	Short: "Toggle the bypass state of a zone",
	Long: `Bypasses a zone, or puts a bypassed zone back in service. The panel has a
single toggle code for both, so run the command again to undo it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, _, err := openClient(true)
		if err != nil {
			return err
		}
		defer closeClient(cli)

		result, err := cli.BypassZone(bypassZone)
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("the panel refused the bypass: %s", result.Code)
		}
		log.Info("bypass toggled", "zone", bypassZone)
		return nil
	},
}

func init() {
	bypassCmd.Flags().IntVarP(&bypassZone, "zone", "z", 1, "Zone number (1-192)")
	rootCmd.AddCommand(bypassCmd)
}
