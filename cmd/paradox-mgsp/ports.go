package main

import (
	"fmt"

	client "github.com/panelmon/paradox-mgsp"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial devices on this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := client.ListPorts()
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			log.Warn("no serial ports found")
			return nil
		}
		for _, port := range ports {
			fmt.Println(port)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
