package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/AlhimicMan/formsadvanced/config"
	"github.com/AlhimicMan/formsadvanced/console"
	"github.com/AlhimicMan/formsadvanced/form"
	"github.com/AlhimicMan/formsadvanced/registration"
	"github.com/AlhimicMan/formsadvanced/storage"
	"github.com/AlhimicMan/formsadvanced/submission"
	"github.com/gookit/color"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, console.ErrAborted) {
			color.Yellow.Println("Aborted.")
			os.Exit(130)
		}
		color.Red.Println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	schema, err := registration.NewSchema(cfg.SchemaOptions()...)
	if err != nil {
		return errors.Wrap(err, "cannot build registration schema")
	}

	var store storage.Store
	if s, err := cfg.NewStore(); err != nil {
		color.Yellow.Printf("Storage unavailable, profile pictures cannot be sent: %v\n", err)
	} else {
		store = s
	}
	logger := log.New("formscli")
	logger.SetLevel(cfg.LoggerLevel())
	// a nil store makes submissions with a picture fail with ErrNoStorage
	handler := submission.NewHandler(store, logger, submission.WithBucket(cfg.Bucket))

	submit := func(ctx context.Context, reg registration.UserRegistration) error {
		res, err := handler.Submit(ctx, reg)
		if err != nil {
			return err
		}
		color.Green.Printf("Registration id %s\n", res.ID)
		return nil
	}
	session := console.NewSession(console.NewSurveyDriver(), form.New(schema), submit, os.Stdout)
	submitted, err := session.Loop(ctx)
	if submitted > 0 {
		color.Green.Printf("%d registration(s) submitted\n", submitted)
	}
	return err
}
