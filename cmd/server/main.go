package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-booking/internal/booking"
	"github.com/iliyamo/hotel-room-booking/internal/config"
	"github.com/iliyamo/hotel-room-booking/internal/database"
	"github.com/iliyamo/hotel-room-booking/internal/handler"
	"github.com/iliyamo/hotel-room-booking/internal/queue"
	"github.com/iliyamo/hotel-room-booking/internal/repository"
	"github.com/iliyamo/hotel-room-booking/internal/router"
	queue_publisher "github.com/iliyamo/hotel-room-booking/internal/service"
)

func main() {
	// .env is optional; container environments inject config directly.
	if err := godotenv.Load(); err != nil {
		log.Println("[main] no .env file found, relying on environment")
	}

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("[main] database connect failed: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it rate limiting and response caching
	// are disabled and every other surface keeps working.
	rdb := config.NewRedisClient()

	hotels := repository.NewHotelRepo(db)
	rooms := repository.NewRoomRepo(db)
	requests := repository.NewBookingRequestRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	coordinator := booking.NewCoordinator(db, rooms, requests, queue_publisher.Publisher{})

	// The outcome consumer drains booking.outcome and records payment
	// capture requests and guest notifications.  It reconnects on its
	// own; a missing broker never blocks the API.
	go func() {
		if err := queue.StartOutcomeConsumer(); err != nil {
			log.Printf("[main] outcome consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(hotels, rooms), rdb)
	router.RegisterGuest(e, handler.NewGuestHandler(hotels, requests), rdb)
	router.RegisterHotelier(e, handler.NewHotelierHandler(hotels, rooms, requests), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(users, hotels, requests, coordinator), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("[main] listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
