package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var stationsCmd = &cobra.Command{
	Use:   "stations [query]",
	Short: "Lists or searches curated stations",
	Args:  cobra.MaximumNArgs(1),
	RunE:  stations,
}

func stations(cmd *cobra.Command, args []string) error {
	manager, _, err := buildManager(cmd)
	if err != nil {
		return err
	}

	registry := manager.Registry()
	entries := registry.Stations()
	if len(args) == 1 {
		entries = registry.Search(args[0])
	}

	for _, station := range entries {
		stops := make([]string, 0, len(station.Stops))
		for _, stop := range station.Stops {
			stops = append(stops, stop.String())
		}
		fmt.Printf("%-24s %-28s %s\n", station.ID, station.DisplayName, strings.Join(stops, " "))
	}

	return nil
}
