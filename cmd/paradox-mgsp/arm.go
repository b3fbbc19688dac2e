package main

import (
	"fmt"

	client "github.com/panelmon/paradox-mgsp"
	"github.com/spf13/cobra"
)

var (
	armPartition int
	armMode      string
)

var armCmd = &cobra.Command{
	Use:   "arm",
	Short: "Arm a partition",
	Long: `Arms a partition in the given mode. Modes map to the panel's arming
variants: arm (away), arm_stay, arm_sleep, arm_instant, arm_stay_instant.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, _, err := openClient(true)
		if err != nil {
			return err
		}
		defer closeClient(cli)

		result, err := cli.Arm(armPartition, client.ArmMode(armMode))
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("the panel refused to arm: %s", result.Code)
		}
		log.Info("partition armed", "partition", armPartition, "mode", armMode)
		return nil
	},
}

func init() {
	armCmd.Flags().IntVarP(&armPartition, "partition", "p", 1, "Partition number (1-8)")
	armCmd.Flags().StringVarP(&armMode, "mode", "m", string(client.ArmAway),
		"One of: arm, arm_stay, arm_sleep, arm_instant, arm_stay_instant")
	rootCmd.AddCommand(armCmd)
}
