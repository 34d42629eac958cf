package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listPreload int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Seed simulated incidents and list the repository",
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listPreload, "preload", 3, "number of simulated incidents to seed")
}

func runList(cmd *cobra.Command, args []string) error {
	sys, err := newSystem()
	if err != nil {
		return err
	}
	defer sys.Cleanup()

	if listPreload > 0 {
		sys.PreloadIncidents(listPreload)
	}

	incidents := sys.ListIncidents()
	fmt.Printf("%d incident(s)\n", len(incidents))
	for _, inc := range incidents {
		fmt.Printf("%s  [%s/%s]  %s\n", inc.ID, inc.Severity, inc.Status, inc.Title)
	}
	return nil
}
