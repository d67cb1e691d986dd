package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes <station>",
	Short: "Lists the routes serving a station",
	Args:  cobra.ExactArgs(1),
	RunE:  routesList,
}

func routesList(cmd *cobra.Command, args []string) error {
	aggregator, _, err := buildAggregator(cmd)
	if err != nil {
		return err
	}

	labels, err := aggregator.AvailableRoutes(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Println(strings.Join(labels, "\n"))
	return nil
}
