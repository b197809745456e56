// Command farefinder drives one route estimation end to end: resolve pickup
// and destination, fetch ranked fare options from the backend, and optionally
// hand the selected option off to the external ride-hailing app.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RobertJ1102/SP2025-Group-5/internal/backend"
	"github.com/RobertJ1102/SP2025-Group-5/internal/booking"
	"github.com/RobertJ1102/SP2025-Group-5/internal/config"
	"github.com/RobertJ1102/SP2025-Group-5/internal/geocode"
	"github.com/RobertJ1102/SP2025-Group-5/internal/location"
	"github.com/RobertJ1102/SP2025-Group-5/internal/logging"
	"github.com/RobertJ1102/SP2025-Group-5/internal/mapview"
	"github.com/RobertJ1102/SP2025-Group-5/internal/models"
	"github.com/RobertJ1102/SP2025-Group-5/internal/savedaddr"
	"github.com/RobertJ1102/SP2025-Group-5/internal/session"
	"github.com/RobertJ1102/SP2025-Group-5/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	var (
		pickupCoord = flag.String("pickup", "", "pickup coordinate as lat,lng (skips geolocation)")
		pickupText  = flag.String("pickup-addr", "", "pickup address text")
		destCoord   = flag.String("dest", "", "destination coordinate as lat,lng")
		destText    = flag.String("dest-addr", "", "destination address text")
		savedID     = flag.String("saved", "", "saved address id to use as the destination")
		bookIndex   = flag.Int("book", -1, "after estimating, book the option at this index")
		printLink   = flag.Bool("print-link", false, "print the booking deep link instead of opening a browser")
	)
	flag.Parse()

	cfg, err := config.LoadClientConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	if cfg.MapAPIKey != "" {
		// Embedding frontends load the basemap from this URL.
		logger.Debug("basemap loader", "url", mapview.LoaderURL(cfg.MapAPIKey, cfg.MapStyleID))
	}

	client, err := backend.New(cfg.BackendBaseURL, cfg.HTTPTimeout, logging.WithComponent(logger, "backend"))
	if err != nil {
		fatal(logger, "backend client", err)
	}

	sess := session.New(client)
	if user := os.Getenv("FAREFINDER_USER"); user != "" {
		if err := sess.Login(ctx, user, os.Getenv("FAREFINDER_PASSWORD")); err != nil {
			fatal(logger, "login", err)
		}
	} else if err := sess.Bootstrap(ctx); err != nil {
		logger.Warn("session bootstrap failed, continuing anonymous", "error", err)
	}
	if u := sess.Current(); u != nil {
		logger.Info("signed in", "username", u.Username)
	}

	var cache geocode.Cache
	if cfg.RedisAddr != "" {
		cache = geocode.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.GeocodeCacheTTL)
	} else {
		cache = geocode.NewMemoryCache(cfg.GeocodeCacheTTL)
	}
	resolver := geocode.NewResolver(client, cache, logging.WithComponent(logger, "geocode"))

	wf := workflow.New(client, resolver,
		workflow.Config{SearchRangeFt: cfg.SearchRangeFt, ResultLimit: cfg.ResultLimit},
		logging.WithComponent(logger, "workflow"))

	if sess.LoggedIn() {
		if prefs, err := client.Preferences(ctx); err == nil {
			wf.ApplyPreferences(prefs)
		} else {
			logger.Warn("preferences unavailable, using defaults", "error", err)
		}
	}

	setPickup(ctx, cfg, wf, logger, *pickupCoord, *pickupText)
	setDestination(ctx, client, wf, logger, *destCoord, *destText, *savedID)

	options, err := wf.EstimateRoute(ctx)
	if err != nil {
		fatal(logger, "estimate", err)
	}
	printOptions(wf, options)

	if *bookIndex >= 0 {
		if err := wf.Select(*bookIndex); err != nil {
			fatal(logger, "select", err)
		}
		var opener booking.Opener = booking.BrowserOpener{}
		if *printLink {
			opener = stdoutOpener{}
		}
		h := booking.NewHandoff(opener, client, cfg.UberClientID, cfg.UberProductID,
			logging.WithComponent(logger, "booking"))
		if _, err := wf.Book(ctx, h); err != nil {
			fatal(logger, "booking handoff", err)
		}
	}
}

func setPickup(ctx context.Context, cfg config.ClientConfig, wf *workflow.Workflow, logger *slog.Logger, coordArg, textArg string) {
	switch {
	case coordArg != "":
		c, err := parseCoord(coordArg)
		if err != nil {
			fatal(logger, "pickup", err)
		}
		if err := wf.SetPickupCoordinate(ctx, c); err != nil {
			logger.Warn("pickup address unresolved", "error", err)
		}
	case textArg != "":
		if err := wf.SetPickupText(ctx, textArg); err != nil {
			fatal(logger, "pickup", err)
		}
	case cfg.LocationFeedURL != "":
		provider := &location.FeedProvider{URL: cfg.LocationFeedURL, Logger: logging.WithComponent(logger, "location")}
		if err := wf.Start(ctx, provider); err != nil {
			fatal(logger, "location watch", err)
		}
		if !waitForPickup(ctx, wf, cfg.LocationWait) {
			fatal(logger, "pickup", fmt.Errorf("no position fix within %s", cfg.LocationWait))
		}
	default:
		fatal(logger, "pickup", fmt.Errorf("pass -pickup or -pickup-addr, or set LOCATION_FEED_URL"))
	}
}

func setDestination(ctx context.Context, client *backend.Client, wf *workflow.Workflow, logger *slog.Logger, coordArg, textArg, savedID string) {
	switch {
	case savedID != "":
		panel := savedaddr.NewPanel(client)
		if err := panel.Refresh(ctx); err != nil {
			fatal(logger, "saved addresses", err)
		}
		a, ok := panel.Find(savedID)
		if !ok {
			fatal(logger, "saved addresses", fmt.Errorf("no saved address with id %q", savedID))
		}
		wf.UseSavedAddress(a)
	case coordArg != "":
		c, err := parseCoord(coordArg)
		if err != nil {
			fatal(logger, "destination", err)
		}
		if err := wf.SetDestinationCoordinate(ctx, c); err != nil {
			logger.Warn("destination address unresolved", "error", err)
		}
	case textArg != "":
		if err := wf.SetDestinationText(ctx, textArg); err != nil {
			fatal(logger, "destination", err)
		}
	default:
		fatal(logger, "destination", fmt.Errorf("pass -dest, -dest-addr, or -saved"))
	}
}

func waitForPickup(ctx context.Context, wf *workflow.Workflow, wait time.Duration) bool {
	deadline := time.After(wait)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			if wf.Pickup().Coord != nil {
				return true
			}
			if wf.LocationErr() != nil {
				return false
			}
		case <-deadline:
			return false
		case <-ctx.Done():
			return false
		}
	}
}

func printOptions(wf *workflow.Workflow, options []models.FareOption) {
	pickup, dest := wf.Pickup(), wf.Destination()
	fmt.Printf("Pickup:      %s (%s)\n", pickup.Address, fmtCoordPtr(pickup.Coord))
	fmt.Printf("Destination: %s (%s)\n", dest.Address, fmtCoordPtr(dest.Coord))
	if len(options) == 0 {
		fmt.Println("No fare options available.")
		return
	}
	for i, o := range options {
		fmt.Printf("%2d. $%.2f  %-10s  %s (%.6f, %.6f)\n",
			i, o.Price, o.RideType, o.PickupLabel, o.Pickup.Lat, o.Pickup.Lng)
	}
}

func fmtCoordPtr(c *models.Coordinate) string {
	if c == nil {
		return "unset"
	}
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lng)
}

func parseCoord(s string) (models.Coordinate, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return models.Coordinate{}, fmt.Errorf("want lat,lng: %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("bad latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("bad longitude: %w", err)
	}
	c := models.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return models.Coordinate{}, fmt.Errorf("coordinate out of range: %q", s)
	}
	return c, nil
}

func serveMetrics(addr string, logger *slog.Logger) {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")
	logger.Info("metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("metrics server", "error", err)
	}
}

type stdoutOpener struct{}

func (stdoutOpener) Open(u string) error {
	_, err := fmt.Println(u)
	return err
}

func fatal(logger *slog.Logger, what string, err error) {
	logger.Error(what, "error", err)
	fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	os.Exit(1)
}
