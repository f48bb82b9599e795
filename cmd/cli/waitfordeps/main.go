package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lumeria1/aeroknite-genai-rag/pkg/compose"
	"github.com/Lumeria1/aeroknite-genai-rag/pkg/logging"
	"github.com/Lumeria1/aeroknite-genai-rag/pkg/orchestration"
	"github.com/Lumeria1/aeroknite-genai-rag/pkg/probe"
	"github.com/Lumeria1/aeroknite-genai-rag/pkg/waiter"

	flags "github.com/jessevdk/go-flags"
)

type flagOptions struct {
	Timeout      time.Duration `long:"timeout" default:"180s" description:"global deadline for the whole wait session"`
	PollInterval time.Duration `long:"poll-interval" default:"2s" description:"delay between health polls"`
	LogTail      int           `long:"log-tail" default:"200" description:"number of log lines dumped on failure"`
	LogLevel     string        `long:"log-level" default:"info" description:"log level: debug, info, warn or error"`
	Probes       []string      `long:"probe" description:"direct endpoint probe as service=URL (http, tcp or grpc scheme), repeatable"`

	Positional struct {
		ComposeFile string   `positional-arg-name:"compose-file" description:"path to the compose file"`
		Services    []string `positional-arg-name:"service" description:"services to wait for, in order"`
	} `positional-args:"yes"`
}

func main() {
	var opts flagOptions
	var argv []string = os.Args[1:]
	var parser = flags.NewParser(&opts, flags.HelpFlag)
	var err error
	_, err = parser.ParseArgs(argv)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Println(err)
			os.Exit(0)
		}
		fmt.Printf("Command line flags parsing failed: %v\n", err)
		os.Exit(1)
	}

	base, sync, err := logging.NewZapLogger(logging.ZapConfig{Level: opts.LogLevel})
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(
		"wait-for-deps: ", logging.LogFuncs{
			Debugf: base.Debugf,
			Infof:  base.Infof,
			Warnf:  base.Warnf,
			Errorf: base.Errorf,
		})

	code := run(opts, logger)
	sync()
	os.Exit(code)
}

func run(opts flagOptions, logger logging.Logger) int {
	composeFile := opts.Positional.ComposeFile
	if composeFile == "" {
		composeFile = waiter.DefaultComposeFile
	}
	services := opts.Positional.Services

	composeConfig, err := compose.LoadConfigFromFile(composeFile)
	if err != nil {
		logger.Errorf("Failed to load compose file: %v", err)
		return 1
	}
	project := composeConfig.ProjectName(composeFile)

	// Names outside the compose file are still waited on; compose may be
	// invoked with overrides this tool does not see. The warning is the
	// only hint an operator gets for a typo'd service name.
	for _, service := range services {
		if !composeConfig.HasService(service) {
			logger.Warnf("Service is not defined in the compose file, service: %s, file: %s", service, composeFile)
		}
	}

	probes := make(map[string]probe.Checker)
	for _, spec := range opts.Probes {
		service, checker, err := probe.ParseSpec(spec)
		if err != nil {
			logger.Errorf("Invalid probe spec: %v", err)
			return 1
		}
		probes[service] = checker
	}

	orchestrator, err := orchestration.NewDockerOrchestrator(project, logger)
	if err != nil {
		logger.Errorf("Failed to create orchestrator: %v", err)
		return 1
	}

	session, err := waiter.NewSession(waiter.Config{
		Services:     services,
		Timeout:      opts.Timeout,
		PollInterval: opts.PollInterval,
		LogTail:      opts.LogTail,
		Probes:       probes,
	}, orchestrator, logger)
	if err != nil {
		logger.Errorf("Failed to create wait session: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("Project: %s, compose file: %s", project, composeFile)
	if err := session.Run(ctx); err != nil {
		logger.Errorf("Dependencies are not ready: %v", err)
		return 1
	}
	return 0
}
