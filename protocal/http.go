package protocal

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"talk-lmstudio/configs"
	httpAdapter "talk-lmstudio/internal/adapters/input/http"
	"talk-lmstudio/internal/adapters/output/lmstudio"
	"talk-lmstudio/internal/application"
	"talk-lmstudio/internal/ports/input"

	swagger "github.com/arsmn/fiber-swagger/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type config struct {
	ENV string `mapstructure:"env"`
}

// ServeHTTP func
func ServeHTTP() error {
	var cfg config
	flag.StringVar(&cfg.ENV, "env", "", "the environment to use")
	flag.Parse()
	configs.InitViper("./configs", cfg.ENV)
	return Serve(configs.GetViper())
}

// Serve starts the HTTP API for conf and blocks until the server stops
func Serve(conf *configs.Config) error {
	ConfigureLogging(conf.App)
	logrus.Info(conf.Env)

	// Wire up the hexagonal architecture layers
	// Output adapter (LLM backend)
	backend := lmstudio.NewLMStudioBackend(lmstudio.OptionsFromConfig(conf.LMStudio))
	if err := backend.Init(); err != nil {
		return err
	}
	// Application service (use case)
	srv := application.NewGenerationService(backend)

	app := NewApp(conf, srv)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range c {
			log.Println("Gracefull shut down ...")
			backend.Shutdown()
			err := app.Shutdown()
			if err != nil {
				log.Println("Error when shutdown server: ", err)
			}
		}
	}()

	logrus.Println("Listerning on port: ", conf.App.Port)
	return app.Listen(":" + conf.App.Port)
}

// NewApp builds the fiber application with every route registered
func NewApp(conf *configs.Config, srv input.GenerationService) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: !conf.Debug,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept,Authorization",
	}))
	app.Use(requestid.New())

	// Input adapter (HTTP handler)
	hdl := httpAdapter.New(srv, GenerateDefaults(conf))

	app.Get("/swagger/*", swagger.HandlerDefault) // default
	app.Get("/health", hdl.HealthCheck)
	if conf.Metrics.Enabled {
		app.Get(conf.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	v1 := app.Group("/v1")
	{
		v1.Get("/models", hdl.ListModels)
		v1.Post("/generate", hdl.Generate)
	}

	return app
}
