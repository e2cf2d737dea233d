package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/browser-tools/browserhost-go/pkg/config"
	"github.com/browser-tools/browserhost-go/pkg/monitoring"

	flags "github.com/jessevdk/go-flags"
)

// Single-shot probe of the browser control endpoint, intended as a container
// HEALTHCHECK command: exit 0 when the version-info path answers with a
// success status within the timeout, exit 1 otherwise.

type flagOptions struct {
	Port    int           `long:"port" short:"p" description:"Control port to probe (defaults to REMOTE_DEBUGGING_PORT or 9222)"`
	Timeout time.Duration `long:"timeout" short:"t" description:"Probe timeout" default:"5s"`
}

func main() {
	var opts flagOptions
	var parser = flags.NewParser(&opts, flags.HelpFlag)
	_, err := parser.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Printf("Command line flags parsing failed: %v\n", err)
		os.Exit(1)
	}

	port := opts.Port
	if port == 0 {
		port = config.DefaultControlPort
		if value, ok := os.LookupEnv(config.EnvRemoteDebuggingPort); ok {
			fmt.Sscanf(value, "%d", &port)
		}
	}

	info, err := monitoring.ProbeOnce(context.Background(), monitoring.ProbeOptions{
		Port:    port,
		Timeout: opts.Timeout,
	})
	if err != nil {
		fmt.Printf("unhealthy: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("healthy: %s\n", info.Browser)
	os.Exit(0)
}
