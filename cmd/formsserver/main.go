package main

import (
	"github.com/AlhimicMan/formsadvanced/config"
	"github.com/AlhimicMan/formsadvanced/generator"
	"github.com/AlhimicMan/formsadvanced/handlers/registrations"
	"github.com/AlhimicMan/formsadvanced/registration"
	"github.com/AlhimicMan/formsadvanced/submission"
	"github.com/AlhimicMan/formsadvanced/wrapper"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {
	e := echo.New()
	cfg, err := config.Load(".env")
	if err != nil {
		e.Logger.Fatalf("cannot load config: %v", err)
	}
	e.Logger.SetLevel(cfg.LoggerLevel())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.BodyLimit()))

	schema, err := registration.NewSchema(cfg.SchemaOptions()...)
	if err != nil {
		e.Logger.Fatalf("cannot build registration schema: %v", err)
	}
	store, err := cfg.NewStore()
	if err != nil {
		e.Logger.Fatalf("cannot configure %s storage: %v", cfg.StorageDriver, err)
	}
	submitter := submission.NewHandler(store, e.Logger, submission.WithBucket(cfg.Bucket))

	router := wrapper.NewRouter(e)
	group := router.Group("/registrations", "Registrations")
	if err := registrations.New(schema, submitter).RegisterRoutes(group); err != nil {
		e.Logger.Fatalf("cannot register routes: %v", err)
	}
	for _, route := range e.Routes() {
		e.Logger.Infof("registered %s: %s %s", route.Method, route.Path, route.Name)
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	_, err = router.GenerateSwagger(generator.DocInfo{
		Title:       "Forms Advanced API",
		Description: "Registration form validation and submission",
	})
	if err != nil {
		e.Logger.Fatalf("cannot generate swagger: %v", err)
	}

	e.Logger.Fatal(e.Start(cfg.Addr))
}
