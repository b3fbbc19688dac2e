package main

import (
	client "github.com/panelmon/paradox-mgsp"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Identify the panel and print what it reports",
	Long: `Performs the handshake and prints the panel's identity: product, firmware,
and panel id. No password needed, the handshake is unauthenticated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, cfg, err := openClient(false)
		if err != nil {
			return err
		}
		defer closeClient(cli)

		macAddr := ""
		if cfg.Host != "" {
			macAddr, err = client.MacAddress(cfg.Host)
			if err != nil {
				log.Warn(
					"could not get the mac address, needs 'cap_net_raw+ep' capabilities",
					"err", err,
				)
			}
		}

		id := cli.Identity()
		log.Info(
			"got panel information",
			"manufacturer", manufacturer,
			"product", id.ProductID,
			"firmware", id.Firmware,
			"panel", id.PanelID,
			"source", id.SourceID,
			"mac", macAddr,
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
