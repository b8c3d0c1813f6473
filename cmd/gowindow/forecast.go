package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/gowindow/internal/config"
	"github.com/i474232898/gowindow/internal/weather"
)

type forecastFlags struct {
	lat      float64
	lon      float64
	timezone string
	activity string
	hourly   bool
	compact  bool
}

func forecastCommand(cfg *config.AppConfig) *cobra.Command {
	var flags forecastFlags

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Print a classified forecast for a coordinate",
		Example: `  gowindow forecast --lat 39.64 --lon -106.37
  gowindow forecast --lat 44.53 --lon -72.78 --activity dogwalk --hourly`,
		RunE: func(cmd *cobra.Command, args []string) error {
			activity, err := weather.ParseActivity(flags.activity)
			if err != nil {
				return err
			}
			if flags.lat < -90 || flags.lat > 90 || flags.lon < -180 || flags.lon > 180 {
				return fmt.Errorf("coordinates out of range: %v, %v", flags.lat, flags.lon)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			c := newClients(cfg)
			tz := flags.timezone
			if tz == "" {
				if tz, err = c.forecast.Timezone(ctx, flags.lat, flags.lon); err != nil {
					return err
				}
			}

			loc := weather.Location{
				Name:      fmt.Sprintf("%.4f, %.4f", flags.lat, flags.lon),
				Latitude:  flags.lat,
				Longitude: flags.lon,
				Timezone:  tz,
			}
			service := newService(cfg, c.forecast, nil)

			if flags.hourly {
				outlook, err := service.Hourly(ctx, loc, activity)
				if err != nil {
					return err
				}
				return printHours(cmd.OutOrStdout(), outlook)
			}

			outlook, err := service.Daily(ctx, loc, activity, flags.compact)
			if err != nil {
				return err
			}
			return printDays(cmd.OutOrStdout(), outlook)
		},
	}

	cmd.Flags().Float64Var(&flags.lat, "lat", 0, "Latitude in decimal degrees")
	cmd.Flags().Float64Var(&flags.lon, "lon", 0, "Longitude in decimal degrees")
	cmd.Flags().StringVar(&flags.timezone, "timezone", "", "IANA timezone (looked up when empty)")
	cmd.Flags().StringVar(&flags.activity, "activity", string(weather.ActivitySkiing), "Activity: skiing or dogwalk")
	cmd.Flags().BoolVar(&flags.hourly, "hourly", false, "Print the hourly forecast instead of daily")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "Daily view: only the upcoming days")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")

	return cmd
}

func printDays(out io.Writer, o weather.DailyOutlook) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s (%s)\n", o.Location.Name, o.Location.Timezone)
	fmt.Fprintln(tw, "DAY\tHI/LO °F\tDAYLIGHT °F\tPRECIP %\tSNOW\tRAIN mm\tQUALITY\t")
	for _, d := range o.Days {
		day := d.Label
		if d.IsHistorical {
			day += " *"
		}
		fmt.Fprintf(tw, "%s\t%.0f/%.0f\t%.0f/%.0f\t%d\t%.1f\t%.1f\t%s\t\n",
			day, d.TempMax, d.TempMin, d.DaylightTempMax, d.DaylightTempMin,
			d.DaylightPrecipMax, d.DaylightSnowSum, d.RainSum, d.QualityLabel)
	}
	return tw.Flush()
}

func printHours(out io.Writer, o weather.HourlyOutlook) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s (%s)\n", o.Location.Name, o.Location.Timezone)
	fmt.Fprintln(tw, "TIME\t°F\tPRECIP %\tSNOW\tWIND mph\tGUSTS\tQUALITY\t")
	for _, h := range o.Hours {
		if h.IsNewDay {
			fmt.Fprintf(tw, "%s %d\t\t\t\t\t\t\t\n", h.DayName, h.DayNum)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%d\t%d\t%s\t\n",
			h.Time.Format("15:04"), h.Temperature, h.Precip, h.Snowfall, h.Wind, h.Gusts, h.QualityLabel)
	}
	return tw.Flush()
}
