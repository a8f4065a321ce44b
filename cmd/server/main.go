package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tabular-file-service/conf"
	"tabular-file-service/controller"
	"tabular-file-service/database"
	"tabular-file-service/model/dao"
	"tabular-file-service/service/file_service"
	"tabular-file-service/storage"
)

var ENV string

func init() {
	flag.StringVar(&ENV, "env", "prod", "Environment: loc/prod/example")
}

// @title           Tabular File Service API
// @version         1.0
// @description     Streaming file upload with asynchronous tabular parsing, progress polling and parsed-content retrieval
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:7290
// @BasePath  /api/v1

// @schemes https http

func main() {
	// Initialize all components
	recovery, srv, cleanup := initAll()
	defer cleanup()

	// Start stalled-record recovery sweep (in goroutine)
	recovery.Start()

	// Start HTTP API service (in goroutine)
	go startServer(srv)
	log.Println("File API service started successfully")

	// Wait for shutdown signal
	waitForShutdown()

	log.Println("Shutting down file service...")

	// Stop recovery sweep
	recovery.Stop()

	// Gracefully shutdown HTTP service
	shutdownServer(srv)

	log.Println("Server exited")
}

// initEnv initialize environment
func initEnv() {
	if ENV == "loc" {
		conf.SystemEnvironmentEnum = conf.LocalEnvironmentEnum
	} else if ENV == "example" {
		conf.SystemEnvironmentEnum = conf.ExampleEnvironmentEnum
	} else {
		conf.SystemEnvironmentEnum = conf.ProdEnvironmentEnum
	}
	fmt.Printf("Environment: %s\n", ENV)
}

// initAll initialize all components
func initAll() (*file_service.RecoveryProcessor, *http.Server, func()) {
	// Parse command line parameters
	flag.Parse()

	// Set environment
	initEnv()

	// Initialize configuration
	if err := conf.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	log.Printf("Configuration loaded: env=%s, port=%s", ENV, conf.Cfg.Port)

	// Initialize database
	if err := initDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (optional, won't fail if disabled or unavailable)
	if err := database.InitRedis(); err != nil {
		log.Printf("⚠️  Redis initialization failed (cache will be disabled): %v", err)
	}

	// Initialize storage
	stor, err := storage.NewStorage()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Printf("Storage initialized: type=%s", conf.Cfg.Storage.Type)

	recordDAO := dao.NewFileRecordDAO()
	tracker := file_service.NewUploadTracker()

	fileService := file_service.NewFileService(recordDAO, stor, tracker, file_service.ParserOptions{
		MaxRows:      conf.Cfg.Parser.MaxRows,
		ChunkCount:   conf.Cfg.Parser.ChunkCount,
		TickInterval: time.Duration(conf.Cfg.Parser.TickMs) * time.Millisecond,
	})

	recovery := file_service.NewRecoveryProcessor(recordDAO,
		time.Duration(conf.Cfg.Parser.StalledThreshold)*time.Second)

	// Setup file service router
	router := controller.SetupFileRouter(fileService)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + conf.Cfg.Port,
		Handler: router,
	}

	// Return processor instance and cleanup function
	cleanup := func() {
		if database.DB != nil {
			database.DB.Close()
		}
		if err := database.CloseRedis(); err != nil {
			log.Printf("Failed to close Redis: %v", err)
		}
	}

	return recovery, srv, cleanup
}

// initDatabase initialize database based on configuration
func initDatabase() error {
	dbType := database.DBType(conf.Cfg.Database.Type)

	switch dbType {
	case database.DBTypeMySQL:
		config := &database.MySQLConfig{
			DSN:          conf.Cfg.Database.Dsn,
			MaxOpenConns: conf.Cfg.Database.MaxOpenConns,
			MaxIdleConns: conf.Cfg.Database.MaxIdleConns,
		}
		return database.InitDatabase(database.DBTypeMySQL, config)

	case database.DBTypePebble:
		config := &database.PebbleConfig{
			DataDir: conf.Cfg.Database.DataDir,
		}
		return database.InitDatabase(database.DBTypePebble, config)

	default:
		log.Printf("Database type not specified, defaulting to PebbleDB")
		config := &database.PebbleConfig{
			DataDir: conf.Cfg.Database.DataDir,
		}
		return database.InitDatabase(database.DBTypePebble, config)
	}
}

// startServer start HTTP server
func startServer(srv *http.Server) {
	log.Printf("File API service starting on port %s...", conf.Cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// waitForShutdown wait for shutdown signal
func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}

// shutdownServer gracefully shutdown server
func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
