package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cli/browser"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Zachdehooge/damage-map/internal/config"
	"github.com/Zachdehooge/damage-map/internal/fetcher"
	"github.com/Zachdehooge/damage-map/internal/generator"
	"github.com/Zachdehooge/damage-map/internal/marker"
	"github.com/Zachdehooge/damage-map/internal/popup"
	"github.com/Zachdehooge/damage-map/internal/report"
	"github.com/Zachdehooge/damage-map/internal/server"
	"github.com/Zachdehooge/damage-map/internal/store"
)

var (
	configFile string
	outputFile string
	dataURL    string
	lang       string
	verbose    bool
	interval   int
	watchMode  bool
	openPage   bool
	noLegend   bool
	addr       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "damage-map",
		Short: "Fetch disaster reports and generate a map page",
		Long: `damage-map fetches geolocated disaster reports from a GeoJSON /data
endpoint and generates a Leaflet map page with styled markers and popups.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig()
			if err != nil {
				cmd.PrintErrln(err)
				os.Exit(1)
			}

			if err := generateMapHTML(cmd, cfg); err != nil {
				cmd.PrintErrln(fmt.Errorf("failed to generate map: %w", err))
				os.Exit(1)
			}

			if openPage {
				if abs, err := filepath.Abs(cfg.Output); err == nil {
					if err := browser.OpenFile(abs); err != nil {
						cmd.PrintErrln(fmt.Errorf("failed to open browser: %w", err))
					}
				}
			}

			if watchMode {
				runWatchMode(cmd, cfg)
			}
		},
	}

	// Flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&dataURL, "data-url", "", "Report feed URL (GeoJSON FeatureCollection)")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "", "Display language (ja, en)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output HTML file path")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.Flags().IntVarP(&interval, "interval", "i", 300, "Update interval in seconds (minimum 30)")
	rootCmd.Flags().BoolVar(&watchMode, "watch", false, "Continuously update the map HTML")
	rootCmd.Flags().BoolVar(&openPage, "open", false, "Open the generated page in a browser")
	rootCmd.Flags().BoolVar(&noLegend, "no-legend", false, "Omit the legend")

	// Additional commands
	addListCmd(rootCmd)
	addServeCmd(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}
	if dataURL != "" {
		cfg.DataURL = dataURL
	}
	if lang != "" {
		cfg.Lang = lang
	}
	if outputFile != "" {
		cfg.Output = outputFile
	}
	if noLegend {
		cfg.Legend = false
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	return cfg, nil
}

func mapOptions(cfg config.Config) generator.Options {
	return generator.Options{
		Locale:      popup.LocaleFor(cfg.Lang),
		Legend:      cfg.Legend,
		Center:      cfg.Map.Center,
		Zoom:        cfg.Map.Zoom,
		TileURL:     cfg.Map.TileURL,
		Attribution: cfg.Map.Attribution,
		Marker:      marker.Options{IconBase: cfg.Marker.IconBase},
	}
}

// generateMapHTML fetches the feed once and writes the page
func generateMapHTML(cmd *cobra.Command, cfg config.Config) error {
	if verbose {
		cmd.Println(fmt.Sprintf("Fetching reports from %s...", cfg.DataURL))
	}

	n, err := generator.Generate(cmd.Context(), fetcher.NewClient(cfg.DataURL, 15*time.Second), cfg.Output, mapOptions(cfg))
	if err != nil {
		return err
	}

	cmd.Println(fmt.Sprintf("%d reports saved to %s", n, cfg.Output))
	return nil
}

// runWatchMode regenerates the page until interrupted
func runWatchMode(cmd *cobra.Command, cfg config.Config) {
	// Enforce minimum interval
	if interval < 30 {
		interval = 30
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Println(fmt.Sprintf("Watch mode activated. Updating every %d seconds. Press Ctrl+C to stop.", interval))
	generator.StartPoller(ctx, fetcher.NewClient(cfg.DataURL, 15*time.Second), cfg.Output,
		time.Duration(interval)*time.Second, mapOptions(cfg))
	<-ctx.Done()
}

// addListCmd adds a 'list' subcommand to print reports without generating HTML
func addListCmd(rootCmd *cobra.Command) {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List current disaster reports",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig()
			if err != nil {
				cmd.PrintErrln(err)
				os.Exit(1)
			}

			reports, err := fetcher.NewClient(cfg.DataURL, 15*time.Second).FetchReports(cmd.Context())
			if err != nil {
				cmd.PrintErrln(fmt.Errorf("failed to fetch reports: %w", err))
				os.Exit(1)
			}

			if len(reports) == 0 {
				cmd.Println("No reports.")
				return
			}

			loc := popup.LocaleFor(cfg.Lang)
			for _, r := range reports {
				style := marker.Resolve(r, marker.Options{})
				head := fmt.Sprintf("%s%s (%.5f, %.5f)", style.Shape, style.Symbol, r.Lat, r.Lng)
				cmd.Println("---")
				cmd.Println(colorFor(r.Health()).Sprint(head))
				cmd.Println(popup.Format(r, loc).Text())
			}
		},
	}

	rootCmd.AddCommand(listCmd)
}

func colorFor(h report.HealthStatus) *color.Color {
	switch h {
	case report.HealthSevere:
		return color.New(color.FgRed, color.Bold)
	case report.HealthMinor:
		return color.New(color.FgYellow)
	case report.HealthUninjured:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgWhite)
	}
}

// addServeCmd adds a 'serve' subcommand hosting /data, /map and the LINE webhook
func addServeCmd(rootCmd *cobra.Command) {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report feed and live map",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig()
			if err != nil {
				cmd.PrintErrln(err)
				os.Exit(1)
			}
			if err := runServer(cfg); err != nil {
				log.Fatalf("server error: %v", err)
			}
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :8080 or $PORT)")

	rootCmd.AddCommand(serveCmd)
}

func runServer(cfg config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := store.Open(ctx, cfg.Store)
	cancel()
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	srv, err := server.New(st, server.Options{
		Map:                    mapOptions(cfg),
		CORSOrigins:            cfg.Server.CORSOrigins,
		StaticDir:              cfg.Server.StaticDir,
		LineChannelSecret:      cfg.Line.ChannelSecret,
		LineChannelAccessToken: cfg.Line.ChannelAccessToken,
	})
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s (store: %s)", cfg.Server.Addr, cfg.Store.Driver)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-sigs:
	}
	log.Printf("[server] shutdown initiated...")

	srv.Shutdown()
	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	return httpSrv.Shutdown(sctx)
}
