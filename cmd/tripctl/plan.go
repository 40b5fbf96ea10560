package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"triptracks-service/internal/api/dto"
	"triptracks-service/internal/app"
	"triptracks-service/internal/config"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/services"

	"github.com/spf13/cobra"
)

var (
	flagFrom       string
	flagTo         string
	flagStops      []string
	flagDailyKm    float64
	flagTravelerID string
	flagWithCost   bool
)

func init() {
	planCmd.Flags().StringVar(&flagFrom, "from", "", "Source as [name=]lat,lng")
	planCmd.Flags().StringVar(&flagTo, "to", "", "Destination as [name=]lat,lng")
	planCmd.Flags().StringArrayVar(&flagStops, "stop", nil, "Intermediate stop as [name=]lat,lng (repeatable)")
	planCmd.Flags().Float64Var(&flagDailyKm, "daily-km", 0, "Daily driving budget in km")
	planCmd.Flags().StringVar(&flagTravelerID, "traveler", "", "Traveler id for saved vehicles and rates")
	planCmd.Flags().BoolVar(&flagWithCost, "cost", false, "Include the trip cost estimate")
	_ = planCmd.MarkFlagRequired("from")
	_ = planCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(autocompleteCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build an itinerary between two points",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		req, err := buildPlanRequest(flagFrom, flagTo, flagStops, flagDailyKm, flagTravelerID)
		if err != nil {
			return err
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if flagWithCost {
			costed, err := a.Planner.PlanCost(cmd.Context(), services.CostRequest{PlanRequest: req})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dto.NewCostResponse(costed))
		}

		it, err := a.Planner.Plan(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), dto.NewItineraryResponse(it))
	},
}

var autocompleteCmd = &cobra.Command{
	Use:   "autocomplete [query]",
	Short: "Look up places matching a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return fmt.Errorf("query must not be empty")
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		places := a.Resolver.Autocomplete(cmd.Context(), query)
		return printJSON(cmd.OutOrStdout(), dto.NewPlaceResponses(places))
	},
}

func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, nil)
}

func buildPlanRequest(from, to string, stops []string, dailyKm float64, travelerID string) (services.PlanRequest, error) {
	src, err := parseLocation(from)
	if err != nil {
		return services.PlanRequest{}, fmt.Errorf("--from: %w", err)
	}
	dst, err := parseLocation(to)
	if err != nil {
		return services.PlanRequest{}, fmt.Errorf("--to: %w", err)
	}

	req := services.PlanRequest{
		Source:          src,
		Destination:     dst,
		DailyDistanceKm: dailyKm,
		TravelerID:      travelerID,
	}
	for i, s := range stops {
		loc, err := parseLocation(s)
		if err != nil {
			return services.PlanRequest{}, fmt.Errorf("--stop #%d: %w", i+1, err)
		}
		req.Stops = append(req.Stops, loc)
	}

	if dailyKm < 0 {
		return services.PlanRequest{}, fmt.Errorf("--daily-km must not be negative")
	}
	return req, nil
}

// parseLocation accepts "lat,lng" or "name=lat,lng".
func parseLocation(s string) (domain.Location, error) {
	var loc domain.Location

	if name, coords, ok := strings.Cut(s, "="); ok {
		loc.Name = strings.TrimSpace(name)
		s = coords
	}

	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Location{}, fmt.Errorf("expected lat,lng, got %q", s)
	}

	var err error
	if loc.Lat, err = strconv.ParseFloat(strings.TrimSpace(latStr), 64); err != nil {
		return domain.Location{}, fmt.Errorf("invalid latitude %q", latStr)
	}
	if loc.Lng, err = strconv.ParseFloat(strings.TrimSpace(lngStr), 64); err != nil {
		return domain.Location{}, fmt.Errorf("invalid longitude %q", lngStr)
	}
	if !loc.Valid() {
		return domain.Location{}, fmt.Errorf("coordinates out of range: %q", s)
	}

	if loc.Name == "" {
		loc.Name = fmt.Sprintf("%g,%g", loc.Lat, loc.Lng)
	}
	return loc, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
