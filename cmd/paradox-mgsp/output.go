package main

import (
	"fmt"

	client "github.com/panelmon/paradox-mgsp"
	"github.com/spf13/cobra"
)

var (
	outputNumber int
	outputMode   string
)

var outputCmd = &cobra.Command{
	Use:   "output",
	Short: "Drive a PGM output",
	Long: `Switches a programmable output. The override modes hold the output in the
requested state regardless of its programmed behavior.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, _, err := openClient(true)
		if err != nil {
			return err
		}
		defer closeClient(cli)

		result, err := cli.SetOutput(outputNumber, client.OutputMode(outputMode))
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("the panel refused the output command: %s", result.Code)
		}
		log.Info("output set", "output", outputNumber, "mode", outputMode)
		return nil
	},
}

func init() {
	outputCmd.Flags().IntVarP(&outputNumber, "number", "n", 1, "PGM output number (1-16)")
	outputCmd.Flags().StringVarP(&outputMode, "mode", "m", string(client.OutputOn),
		"One of: on, off, on_override, off_override")
	rootCmd.AddCommand(outputCmd)
}
