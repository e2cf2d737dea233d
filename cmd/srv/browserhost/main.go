package main

import (
	"fmt"
	"os"

	"github.com/browser-tools/browserhost-go/pkg/logging"
	"github.com/browser-tools/browserhost-go/pkg/supervisor"

	flags "github.com/jessevdk/go-flags"
)

type flagOptions struct {
	Config   string `long:"config" short:"c" description:"Configuration file path (YAML), environment variables take precedence"`
	LogLevel string `long:"log-level" description:"Log level (debug, info, warn, error)" default:"info"`
}

func logPrefix(module string) string {
	return fmt.Sprintf("module: %s , ", module)
}

func main() {
	var opts flagOptions
	var argv []string = os.Args[1:]
	var parser = flags.NewParser(&opts, flags.HelpFlag)
	var err error
	_, err = parser.ParseArgs(argv)
	if err != nil {
		fmt.Printf("Command line flags parsing failed: %v", err)
		os.Exit(1)
	}

	zapLogger, err := logging.NewZapLogger(opts.LogLevel)
	if err != nil {
		fmt.Printf("Logger setup failed: %v", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(
		logPrefix("browserhost"), logging.LogFuncs{
			Debugf: zapLogger.Debugf,
			Infof:  zapLogger.Infof,
			Warnf:  zapLogger.Warnf,
			Errorf: zapLogger.Errorf,
		})

	exitCode, err := supervisor.Run(opts.Config, logger)
	if err != nil {
		logger.Errorf("Failed to run: %v", err)
	}
	os.Exit(exitCode)
}
