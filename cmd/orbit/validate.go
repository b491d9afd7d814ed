package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an experiment file and print its parameter groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := loadExperiment()
		if err != nil {
			return err
		}
		optMap, err := buildOptMap(exp)
		if err != nil {
			return err
		}

		fmt.Printf("experiment ok: %d parameter groups, %d channels, drive channel %s\n",
			optMap.Len(), len(exp.Channels), exp.DriveChannel)
		for _, group := range optMap.Describe() {
			fmt.Printf("  [%d] %s", group.Index, group.Representative)
			if len(group.Members) > 1 {
				fmt.Printf(" (+%d aliases: %s)", len(group.Members)-1, strings.Join(group.Members[1:], ", "))
			}
			fmt.Println()
		}
		return nil
	},
}
