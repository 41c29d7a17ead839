package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yash/laeportal/internal/catalog"
	"github.com/yash/laeportal/internal/motion"
	"github.com/yash/laeportal/pkg/models"
)

var (
	routeVehicle string
	routeFrom    string
	routeTo      string
	routeIndex   int
	routeAt      time.Duration
	routeSteps   int
	routeEvery   time.Duration
)

// routeCmd is assigned in init to avoid an initialization cycle through
// cmdFlagChanged.
var routeCmd *cobra.Command

func routeVehicleFromFlags() (models.Vehicle, int, error) {
	if routeVehicle != "" {
		data := catalog.Default()
		for i, v := range data.Vehicles {
			if v.ID == routeVehicle {
				if !cmdFlagChanged("index") {
					return v, i, nil
				}
				return v, routeIndex, nil
			}
		}
		return models.Vehicle{}, 0, fmt.Errorf("unknown vehicle %q", routeVehicle)
	}

	if routeFrom == "" || routeTo == "" {
		return models.Vehicle{}, 0, fmt.Errorf("need --vehicle or both --from and --to")
	}
	from, err := models.ParsePosition(routeFrom)
	if err != nil {
		return models.Vehicle{}, 0, fmt.Errorf("--from: %w", err)
	}
	to, err := models.ParsePosition(routeTo)
	if err != nil {
		return models.Vehicle{}, 0, fmt.Errorf("--to: %w", err)
	}
	return models.Vehicle{ID: "custom", Type: models.VehicleDrone, From: from, To: to}, routeIndex, nil
}

func cmdFlagChanged(name string) bool {
	f := routeCmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func init() {
	routeCmd = &cobra.Command{
		Use:   "route",
		Short: "Print marker positions along a route",
		Long: `Computes the marker a vehicle would show on the map. Pick a catalog
vehicle with --vehicle, or give --from and --to as "lat,lng". With --steps
the command prints a timeline starting at --at, one marker every --every.`,
		Example: `  laeportal route --vehicle AV-002 --at 7s
  laeportal route --from 22.3080,113.9185 --to 22.2855,114.1577 --steps 5 --every 4s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			v, index, err := routeVehicleFromFlags()
			if err != nil {
				return err
			}
			if routeSteps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}

			mc := motion.Config{Cycle: cfg.Simulator.CycleDuration, Stagger: cfg.Simulator.Stagger}
			enc := json.NewEncoder(os.Stdout)

			if !motion.Defined(v.From, v.To) {
				fmt.Fprintln(os.Stderr, "Warning: route endpoints coincide or are antipodal, heading is not meaningful")
			}
			fmt.Fprintf(os.Stderr, "%s bearing %.2f° distance %.2f km\n",
				v.ID, motion.Bearing(v.From, v.To), motion.DistanceKM(v.From, v.To))

			for i := 0; i < routeSteps; i++ {
				if err := enc.Encode(motion.Animate(v, index, routeAt+time.Duration(i)*routeEvery, mc)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	f := routeCmd.Flags()
	f.StringVar(&routeVehicle, "vehicle", "", "catalog vehicle id, e.g. AV-001")
	f.StringVar(&routeFrom, "from", "", "start position as lat,lng")
	f.StringVar(&routeTo, "to", "", "end position as lat,lng")
	f.IntVar(&routeIndex, "index", 0, "vehicle index used for the stagger offset")
	f.DurationVar(&routeAt, "at", 0, "elapsed time since the animation epoch")
	f.IntVar(&routeSteps, "steps", 1, "number of markers to print")
	f.DurationVar(&routeEvery, "every", time.Second, "time between printed markers")
	rootCmd.AddCommand(routeCmd)
}
