package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"

	"nfl-pickem-go/config"
	"nfl-pickem-go/database"
	"nfl-pickem-go/handlers"
	"nfl-pickem-go/logging"
	"nfl-pickem-go/middleware"
	"nfl-pickem-go/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Configure(logging.Config{
		Level:       cfg.Logging.Level,
		Prefix:      cfg.Logging.Prefix,
		EnableColor: cfg.Logging.EnableColor,
	})
	cfg.LogConfiguration()

	db, err := database.NewMongoConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
	})
	if err != nil {
		logging.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	gameRepo := database.NewMongoGameRepository(db)
	pickRepo := database.NewMongoPickRepository(db)
	statsRepo := database.NewMongoStatsRepository(db)
	userRepo := database.NewMongoUserRepository(db)
	syncRepo := database.NewMongoSyncStateRepository(db)

	clock := clockwork.NewRealClock()

	espn := services.NewESPNService()
	gameSync := services.NewGameSyncService(gameRepo)
	reconciler := services.NewReconciliationService(pickRepo, gameRepo)
	stats := services.NewStatsService(pickRepo, statsRepo, userRepo, clock)
	auth := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, clock)
	migration := services.NewMigrationService(pickRepo, gameRepo, stats, userRepo, clock)
	updater := services.NewScoreUpdater(espn, gameSync, reconciler, stats, syncRepo, clock,
		cfg.App.UpdateInterval, cfg.App.UpdateCooldown)

	gamesHandler := handlers.NewGamesHandler(gameRepo, espn, syncRepo, clock, cfg.App.CurrentSeason)
	picksHandler := handlers.NewPicksHandler(pickRepo, gameRepo, userRepo, clock, cfg.App.CurrentSeason)
	leaderboardHandler := handlers.NewLeaderboardHandler(statsRepo, userRepo, cfg.App.CurrentSeason)
	authHandler := handlers.NewAuthHandler(auth)
	adminHandler := handlers.NewAdminHandler(updater, stats, reconciler, migration, clock, cfg.App.CurrentSeason)

	authMiddleware := middleware.NewAuthMiddleware(auth)

	router := mux.NewRouter()
	router.Use(middleware.RequestLogging)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/games", gamesHandler.GetGames).Methods("GET")
	api.HandleFunc("/current-week", gamesHandler.GetCurrentWeek).Methods("GET")
	api.HandleFunc("/leaderboard", leaderboardHandler.GetLeaderboard).Methods("GET")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")

	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware.RequireAuth)
	protected.HandleFunc("/picks", picksHandler.GetPicks).Methods("GET")
	protected.HandleFunc("/picks", picksHandler.SubmitPick).Methods("POST")
	protected.HandleFunc("/picks/all", picksHandler.GetAllPicks).Methods("GET")
	protected.HandleFunc("/admin/refresh", adminHandler.Refresh).Methods("POST")
	protected.HandleFunc("/admin/recalculate", adminHandler.Recalculate).Methods("POST")
	protected.HandleFunc("/admin/migrate-picks", adminHandler.MigratePicks).Methods("POST")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.TestConnection(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}
		upstream := "ok"
		if !espn.HealthCheck(r.Context()) {
			upstream = "unreachable"
		}
		w.Write([]byte(`{"status":"ok","upstream":"` + upstream + `"}`))
	}).Methods("GET")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(router)

	if cfg.App.UpdaterEnabled {
		updater.Start()
		defer updater.Stop()
	}

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Infof("Server listening on %s", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Errorf("Forced shutdown: %v", err)
	}
}
