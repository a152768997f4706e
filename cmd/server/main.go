package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/abhikhya/shopcart/internal/config"
	"github.com/abhikhya/shopcart/internal/es"
	"github.com/abhikhya/shopcart/internal/httpserver"
	"github.com/abhikhya/shopcart/internal/logging"
	"github.com/abhikhya/shopcart/internal/mail"
	"github.com/abhikhya/shopcart/internal/middleware"
	"github.com/abhikhya/shopcart/internal/mykafka"
	"github.com/abhikhya/shopcart/internal/repo"
	"github.com/abhikhya/shopcart/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var sender mail.Sender
	if cfg.SMTP_HOST != "" {
		smtp, err := mail.NewSMTPSender(cfg)
		if err != nil {
			log.Fatalf("mail init error: %v", err)
		}
		sender = smtp
	} else {
		logger.Warn("SMTP_HOST not set, OTP mail delivery disabled")
	}

	var producer *mykafka.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer(strings.Split(cfg.KAFKA_ADDRESS, ","))
		defer producer.Close()
	}

	r := repo.New(db)

	authSvc := &service.AuthService{
		Repo:          r,
		JWTSecret:     []byte(cfg.JWT_SECRET),
		RefreshSecret: []byte(cfg.REFRESH_SECRET),
		Producer:      producer,
	}
	otpSvc := &service.OTPService{
		Repo:   r,
		Mail:   sender,
		Sender: cfg.MAIL_SENDER,
	}
	cartSvc := &service.CartService{Repo: r, Producer: producer}
	catalogSvc := &service.CatalogService{Repo: r, Producer: producer}

	deps := &httpserver.Deps{
		Auth:      &httpserver.AuthHTTP{Svc: authSvc},
		OTP:       &httpserver.OTPHTTP{Svc: otpSvc},
		Cart:      &httpserver.CartHTTP{Svc: cartSvc},
		Product:   &httpserver.ProductHTTP{Svc: catalogSvc},
		JWTSecret: []byte(cfg.JWT_SECRET),
	}

	if cfg.ES_URL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("es init error: %v", err)
		}
		catalogSvc.ES = esClient
		deps.Search = &httpserver.SearchHTTP{ES: esClient, Index: es.ProductIndex}
	}

	e := echo.New()
	e.HideBanner = true

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.RequestLogger(logger))

	httpserver.Register(e, deps)

	port := cfg.SERVER_PORT
	if port == "" {
		port = "8080"
	}

	go func() {
		logger.Info("starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
