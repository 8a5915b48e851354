package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/examdesk/exam-seat-allocation/internal/config"
	"github.com/examdesk/exam-seat-allocation/internal/database"
	"github.com/examdesk/exam-seat-allocation/internal/handler"
	"github.com/examdesk/exam-seat-allocation/internal/queue"
	"github.com/examdesk/exam-seat-allocation/internal/repository"
	"github.com/examdesk/exam-seat-allocation/internal/roster"
	"github.com/examdesk/exam-seat-allocation/internal/router"
)

func main() {
	_ = godotenv.Load() // Load .env when present; real env wins

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the roster upload cache.  The service runs fine
	// without it; uploads are simply not reviewable afterwards.
	rdb := config.NewRedisClient()
	uploadCache := roster.NewCache(rdb, config.LoadRosterCacheConfig())

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	students := repository.NewStudentRepo(db)
	staff := repository.NewStaffRepo(db)
	halls := repository.NewHallRepo(db)
	slots := repository.NewSlotRepo(db)
	ledger := repository.NewLedgerRepo(db)

	authH := handler.NewAuthHandler(cfg, users, sessions)
	adminH := handler.NewAdminHandler(students, staff, halls, slots, ledger)
	uploadH := handler.NewUploadHandler(db, students, slots, halls, uploadCache)
	allocH := handler.NewAllocationHandler(db, cfg, slots, halls, ledger)
	exportH := handler.NewExportHandler(cfg, ledger, students)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterAPI(e, cfg.JWTSecret, adminH, uploadH, allocH, exportH)

	// Consume allocation.completed events into the audit log.  The
	// consumer reconnects on its own; a missing broker only disables
	// the audit trail.
	go func() {
		if err := queue.StartAllocationConsumer(); err != nil {
			log.Printf("allocation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
