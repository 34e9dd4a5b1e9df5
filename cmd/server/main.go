package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/movie-ticket-booking/internal/booking"
	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/database"
	"github.com/iliyamo/movie-ticket-booking/internal/fanout"
	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/inventory"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/payment"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/router"
	queuepub "github.com/iliyamo/movie-ticket-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	movies := repository.NewMovieRepo(db)
	theaters := repository.NewTheaterRepo(db)
	showtimes := repository.NewShowtimeRepo(db)
	bookings := repository.NewBookingRepo(db)

	// The fanout hub receives every seat state change the engine emits
	// and streams them to websocket viewers.
	hub := fanout.NewHub()
	engine := inventory.NewEngine(hub)

	// Load every upcoming showtime's seat layout into the engine so
	// seats are sellable as soon as the server is up.
	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 30*time.Second)
	registered, err := bootstrapEngine(bootstrapCtx, engine, showtimes)
	cancelBootstrap()
	if err != nil {
		log.Fatalf("engine bootstrap: %v", err)
	}
	log.Printf("engine: registered %d upcoming showtimes", registered)

	// Background sweeper reclaims expired seat holds.
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go inventory.NewSweeper(engine, cfg.SweepInterval).Run(sweepCtx)

	payments := payment.NewGatewayProvider(cfg.PaymentSecret)
	publisher := queuepub.NewService(showtimes)
	coordinator := booking.NewCoordinator(engine, showtimes, bookings, payments, publisher, cfg.HoldTTL)

	// Consumer drains confirmed-booking events into the ticket log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking-consumer: stopped: %v", err)
		}
	}()

	// Redis is optional: without it the cache and rate limiter become
	// pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis: unavailable, cache and rate limit disabled")
	}
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(rateLimit)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users), cfg.JWTSecret)
	router.RegisterCatalog(e, handler.NewCatalogHandler(movies, theaters, showtimes, engine), cache)
	router.RegisterSeats(e, handler.NewSeatsHandler(engine, hub))
	router.RegisterBooking(e, handler.NewBookingHandler(engine, coordinator), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewCatalogHandler(movies, theaters, showtimes, engine), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// bootstrapEngine registers the seat layout of every upcoming showtime
// with the inventory engine.  A showtime with no seat layout is logged
// and skipped rather than failing startup.
func bootstrapEngine(ctx context.Context, engine *inventory.Engine, showtimes *repository.ShowtimeRepo) (int, error) {
	upcoming, err := showtimes.ListUpcoming(ctx, 0)
	if err != nil {
		return 0, err
	}
	registered := 0
	for _, st := range upcoming {
		layout, err := showtimes.SeatLayout(ctx, st.ID)
		if err != nil {
			log.Printf("engine: skipping showtime %d: %v", st.ID, err)
			continue
		}
		if err := engine.Register(st.ID, layout); err != nil {
			log.Printf("engine: skipping showtime %d: %v", st.ID, err)
			continue
		}
		registered++
	}
	return registered, nil
}
