// Command riskcli is a terminal client for the accident risk prediction
// service. It drives the same form controller the web front end uses, with
// a presenter that renders to stdout.
//
// Usage:
//
//	go run ./cmd/riskcli -server http://localhost:8080 -lat 19.0760 -lon 72.8777
//	go run ./cmd/riskcli -server http://localhost:8080 -detect -detect-lat 19.0760 -detect-lon 72.8777
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/client"
	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/domain"
	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/geolocate"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "prediction service base URL")
	lat := flag.String("lat", "", "latitude for a coordinate prediction")
	lon := flag.String("lon", "", "longitude for a coordinate prediction")
	detect := flag.Bool("detect", false, "resolve a position to a named location before predicting")
	detectLat := flag.Float64("detect-lat", 0, "position latitude used with -detect")
	detectLon := flag.Float64("detect-lon", 0, "position longitude used with -detect")
	timeout := flag.Duration("timeout", 15*time.Second, "request timeout")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	logOut := io.Discard
	if *verbose {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logOut, nil))

	api := client.NewClient(*server, *timeout, logger)
	presenter := &terminalPresenter{out: os.Stdout}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var locations *client.LocationService
	if *detect {
		provider := &geolocate.StaticProvider{
			Position: geolocate.Position{
				Coordinates: domain.Coordinates{Lat: *detectLat, Lon: *detectLon},
				Accuracy:    10,
			},
		}
		locations = client.NewLocationService(api, provider, presenter, logger)
		locations.Detect(ctx)
	}

	if *lat == "" || *lon == "" {
		if !*detect {
			fmt.Fprintln(os.Stderr, "either -lat/-lon or -detect is required")
			flag.Usage()
			os.Exit(2)
		}
		return
	}

	ctrl := client.NewFormController(api, presenter, locations, nil, logger)
	ctrl.Submit(ctx, *lat, *lon)

	if presenter.failed {
		os.Exit(1)
	}
}

// terminalPresenter renders controller output as plain text.
type terminalPresenter struct {
	out    io.Writer
	failed bool
}

func (p *terminalPresenter) ShowBusy(control client.Control, busy bool) {
	if busy {
		fmt.Fprintf(p.out, "... %s\n", control)
	}
}

func (p *terminalPresenter) ShowResult(r client.RenderedResult) {
	fmt.Fprintf(p.out, "\n%s (%s)\n", r.Severity, r.ConfidenceText)
	if r.LocationName != "" {
		fmt.Fprintf(p.out, "Location:   %s\n", r.LocationName)
	}
	fmt.Fprintf(p.out, "Risk score: %s\n", r.RiskScoreText)
	fmt.Fprintf(p.out, "Slight %.0f%%  Serious %.0f%%  Fatal %.0f%%\n", r.SlightBar, r.SeriousBar, r.FatalBar)
	for _, rec := range r.Recommendations {
		fmt.Fprintf(p.out, "  - %s\n", rec)
	}
	if r.TimestampText != "" {
		fmt.Fprintf(p.out, "As of %s\n", r.TimestampText)
	}
}

func (p *terminalPresenter) Notify(n client.Notice) {
	fmt.Fprintf(p.out, "[%s] %s\n", n.Level, n.Message)
	if n.Level == client.NoticeError {
		p.failed = true
	}
}

func (p *terminalPresenter) Alert(message string) {
	fmt.Fprintf(p.out, "ERROR: %s\n", message)
	p.failed = true
}

func (p *terminalPresenter) SetLocation(res domain.LocationResolution) {
	fmt.Fprintf(p.out, "Detected: %s (%s, %s accuracy)\n", res.Location, res.Method, res.Accuracy)
}

func (p *terminalPresenter) NavigateToResults() {}
