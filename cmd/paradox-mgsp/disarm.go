package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var disarmPartition int

var disarmCmd = &cobra.Command{
	Use:   "disarm",
	Short: "Disarm a partition",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, _, err := openClient(true)
		if err != nil {
			return err
		}
		defer closeClient(cli)

		result, err := cli.Disarm(disarmPartition)
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("the panel refused to disarm: %s", result.Code)
		}
		log.Info("partition disarmed", "partition", disarmPartition)
		return nil
	},
}

func init() {
	disarmCmd.Flags().IntVarP(&disarmPartition, "partition", "p", 1, "Partition number (1-8)")
	rootCmd.AddCommand(disarmCmd)
}
