package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	readAddress string
	readRecords int
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read records from the panel EEPROM",
	Long: `Reads raw records from the panel's EEPROM and hex-dumps them. Useful for
poking at zone labels, user slots, and whatever else lives in there.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		address, err := strconv.ParseUint(readAddress, 0, 16)
		if err != nil {
			return fmt.Errorf("bad address %q: %w", readAddress, err)
		}

		cli, _, err := openClient(true)
		if err != nil {
			return err
		}
		defer closeClient(cli)

		data, err := cli.ReadMemory(uint16(address), readRecords)
		if err != nil {
			return err
		}
		fmt.Print(hex.Dump(data))
		return nil
	},
}

func init() {
	readCmd.Flags().StringVarP(&readAddress, "address", "a", "0x0", "EEPROM address, hex or decimal")
	readCmd.Flags().IntVarP(&readRecords, "records", "r", 1, "Records to read (1-32)")
	rootCmd.AddCommand(readCmd)
}
