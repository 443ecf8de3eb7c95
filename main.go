package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"dramafeed/api"
	"dramafeed/config"
	"dramafeed/handlers"
	"dramafeed/services/calendar"
	"dramafeed/services/catalog"
	"dramafeed/utils"
)

func main() {
	configPath := os.Getenv("DRAMAFEED_CONFIG")
	if configPath == "" {
		configPath = "config.json"
	}

	fs := afero.NewOsFs()
	cfg := config.NewManager(fs, configPath)
	settings, err := cfg.Load()
	if err != nil {
		log.Fatalf("[main] load settings: %v", err)
	}

	if settings.Server.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   settings.Server.LogFile,
			MaxSize:    20, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
		}))
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	catalogSvc := catalog.New(cfg, httpClient, fs, settings.Server.CacheDir)

	feed := catalog.NewReleaseFeed(catalogSvc, 3)
	calendarSvc := calendar.New(feed)
	calendarSvc.StartBackgroundRefresh(time.Duration(settings.Calendar.RefreshIntervalMinutes) * time.Minute)
	defer calendarSvc.Stop()

	r := utils.NewRouter()

	limiter := api.NewIPRateLimiter(rate.Limit(10), 30)
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(api.RequestLog(), api.RateLimit(limiter))

	catalogHandler := handlers.NewCatalogHandler(catalogSvc)
	apiRouter.HandleFunc("/shortdrama/list", catalogHandler.GetList).Methods(http.MethodGet, http.MethodOptions)
	apiRouter.HandleFunc("/shortdrama/search", catalogHandler.GetSearch).Methods(http.MethodGet, http.MethodOptions)
	apiRouter.HandleFunc("/shortdrama/recommend", catalogHandler.GetRecommend).Methods(http.MethodGet, http.MethodOptions)

	calendarHandler := handlers.NewReleaseCalendarHandler(calendarSvc)
	apiRouter.HandleFunc("/release-calendar", calendarHandler.GetCalendar).Methods(http.MethodGet, http.MethodOptions)
	apiRouter.HandleFunc("/release-calendar/status", calendarHandler.GetStatus).Methods(http.MethodGet, http.MethodOptions)
	apiRouter.HandleFunc("/release-calendar/refresh", calendarHandler.PostRefresh).Methods(http.MethodPost, http.MethodOptions)

	sourcesHandler := handlers.NewSourcesHandler(cfg)
	apiRouter.HandleFunc("/admin/sources", sourcesHandler.GetSources).Methods(http.MethodGet, http.MethodOptions)
	apiRouter.HandleFunc("/admin/sources", sourcesHandler.UpsertSource).Methods(http.MethodPost)
	apiRouter.HandleFunc("/admin/sources/{key}", sourcesHandler.DeleteSource).Methods(http.MethodDelete, http.MethodOptions)

	srv := &http.Server{
		Addr:              settings.Server.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", settings.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("[main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
