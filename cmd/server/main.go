package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/10190997/stud-do/internal/config"
	"github.com/10190997/stud-do/internal/database"
	"github.com/10190997/stud-do/internal/handler"
	"github.com/10190997/stud-do/internal/queue"
	"github.com/10190997/stud-do/internal/repository"
	"github.com/10190997/stud-do/internal/router"
	"github.com/10190997/stud-do/internal/service"
)

func main() {
	// .env is optional; production supplies real environment variables.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and response cache disabled")
	}

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	scheduleRepo := repository.NewScheduleRepo(db)
	eventRepo := repository.NewEventRepo(db)
	postRepo := repository.NewPostRepo(db)

	roomSvc := service.NewRoomService(roomRepo)
	scheduleSvc := service.NewScheduleService(scheduleRepo)
	eventSvc := service.NewEventService(eventRepo, scheduleRepo)
	postSvc := service.NewPostService(postRepo, roomRepo)

	// Reminder consumer reconnects on its own; a broker outage must not
	// block serving HTTP.
	go func() {
		if err := queue.StartReminderConsumer(); err != nil {
			log.Printf("reminder consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, userRepo, tokenRepo),
		Users:     handler.NewUserHandler(userRepo),
		Rooms:     handler.NewRoomHandler(roomSvc, userRepo),
		Schedules: handler.NewScheduleHandler(scheduleSvc),
		Events:    handler.NewEventHandler(eventSvc, scheduleSvc),
		Posts:     handler.NewPostHandler(postSvc),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
