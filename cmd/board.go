package main

import (
	"fmt"

	"github.com/spf13/cobra"

	transit "nycboard.dev/transit"
)

var boardCmd = &cobra.Command{
	Use:   "board <station>",
	Short: "Shows upcoming arrivals for a station",
	Args:  cobra.ExactArgs(1),
	RunE:  board,
}

var (
	minMinutes int
	maxMinutes int
	routes     []string
	limit      int
)

func init() {
	boardCmd.Flags().IntVarP(&minMinutes, "min", "m", -1, "Minimum minutes until arrival")
	boardCmd.Flags().IntVarP(&maxMinutes, "max", "M", -1, "Maximum minutes until arrival")
	boardCmd.Flags().StringSliceVarP(&routes, "route", "r", []string{}, "Restrict to specific routes")
	boardCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Limit the number of arrivals returned")
}

func board(cmd *cobra.Command, args []string) error {
	aggregator, cfg, err := buildAggregator(cmd)
	if err != nil {
		return err
	}

	spec := transit.FilterSpec{
		StationID:  args[0],
		MinMinutes: cfg.Board.MinMinutes,
		MaxMinutes: cfg.Board.MaxMinutes,
		Routes:     routes,
		Limit:      cfg.Board.Limit,
	}
	if minMinutes >= 0 {
		spec.MinMinutes = minMinutes
	}
	if maxMinutes >= 0 {
		spec.MaxMinutes = maxMinutes
	}
	if limit > 0 {
		spec.Limit = limit
	}

	b, err := aggregator.Aggregate(cmd.Context(), spec)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", b.StationName, b.Timestamp.Format("15:04:05"))
	for _, arrival := range b.Arrivals {
		fmt.Printf("%3d min  %-22s %s\n", arrival.Minutes, arrival.Route, arrival.Destination)
	}

	return nil
}
