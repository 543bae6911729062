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

	"github.com/sharkweb/boardsite/internal/config"
	"github.com/sharkweb/boardsite/internal/es"
	"github.com/sharkweb/boardsite/internal/httpserver"
	"github.com/sharkweb/boardsite/internal/logging"
	authmw "github.com/sharkweb/boardsite/internal/middleware/auth"
	loggingmw "github.com/sharkweb/boardsite/internal/middleware/logging"
	"github.com/sharkweb/boardsite/internal/mykafka"
	"github.com/sharkweb/boardsite/internal/repo"
	"github.com/sharkweb/boardsite/internal/service"
	"github.com/sharkweb/boardsite/internal/service/search"
	"github.com/sharkweb/boardsite/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.AccessTTL)
	if err != nil {
		log.Fatalf("token codec error: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: db}

	var events *mykafka.Producer
	if cfg.KafkaAddress != "" {
		events = mykafka.NewProducer(strings.Split(cfg.KafkaAddress, ","))
		defer events.Close()
	}

	var searchSvc *search.Service
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		searchSvc = &search.Service{ES: esClient, Index: search.DefaultIndex}
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{
			Svc:    &service.AuthService{Repo: gormRepo, Codec: codec},
			Events: events,
		},
		Board: &httpserver.BoardHTTP{
			Svc:    &service.BoardService{Repo: gormRepo},
			Events: events,
			Search: searchSvc,
		},
		Authenticator: authmw.NewAuthenticator(codec, gormRepo),
		AllowedOrigin: cfg.AllowedOrigin,
	})

	go func() {
		if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
