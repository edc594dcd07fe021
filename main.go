package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"xlinventory/adapters/output"
	"xlinventory/internal/config"
	"xlinventory/internal/container"
	"xlinventory/internal/errors"
)

func main() {
	os.Exit(run(context.Background(), os.Stdout, os.Stderr))
}

// run builds the inventory from common_val.yml in the working directory and
// writes it to stdout. Failures go to stderr and give exit status 1.
func run(ctx context.Context, stdout, stderr io.Writer) int {
	if err := build(ctx, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func build(ctx context.Context, stdout io.Writer) error {
	// Load environment variables from .env file
	_ = godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		return err
	}

	c, err := container.New(appConfig, config.DefaultSettingsFile, nil)
	if err != nil {
		return err
	}

	doc, err := c.Service.Build(ctx)
	if err != nil {
		return err
	}

	indent := 0
	if appConfig.Output.Indent {
		indent = 2
	}
	if err := output.NewJSONWriter(stdout, indent).Write(doc); err != nil {
		return errors.OutputError(err)
	}
	return nil
}
