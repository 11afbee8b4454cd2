package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/loan-desk/internal/config"
	"github.com/iwvelando/loan-desk/internal/evaluation"
	"github.com/iwvelando/loan-desk/internal/logging"
	"github.com/iwvelando/loan-desk/pkg/constants"
	"github.com/iwvelando/loan-desk/pkg/output"
	"github.com/iwvelando/loan-desk/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if conf.EnvFile != "" {
		logger.Debug("loaded environment file",
			zap.String("op", "main"),
			zap.String("path", conf.EnvFile),
		)
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	results, err := evaluation.EvaluateAll(context.Background(), logger, *conf, nil)
	if err != nil {
		logger.Fatal("failed to evaluate applications",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := output.Render(os.Stdout, outputFormat, results); err != nil {
		logger.Fatal("failed to write results",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
