// Package waiter implements the dependency health-wait session: block
// until every requested compose service reports healthy, or fail with
// diagnostics once the shared deadline elapses or a service turns
// unhealthy.
package waiter

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/Lumeria1/aeroknite-genai-rag/pkg/errors"
	"github.com/Lumeria1/aeroknite-genai-rag/pkg/logging"
	"github.com/Lumeria1/aeroknite-genai-rag/pkg/orchestration"
	"github.com/Lumeria1/aeroknite-genai-rag/pkg/probe"
)

const (
	// DefaultComposeFile is where the aeroknite stack keeps its compose file
	DefaultComposeFile = "infra/docker-compose.yml"

	// DefaultTimeout is the global deadline for the whole session
	DefaultTimeout = 180 * time.Second

	// DefaultPollInterval is the constant delay between health polls
	DefaultPollInterval = 2 * time.Second

	// DefaultLogTail is how many log lines are dumped on failure
	DefaultLogTail = 200
)

// DefaultServices returns the services waited on when none are named,
// in the order they are checked.
func DefaultServices() []string {
	return []string{"postgres", "query-service", "ingestion-worker"}
}

// Config holds the wait session parameters
type Config struct {
	// Services to wait for, checked sequentially in this order
	Services []string

	// Timeout is the budget for the whole session, shared across all
	// services; it is never reset between services
	Timeout time.Duration

	// PollInterval is the constant delay between polls
	PollInterval time.Duration

	// LogTail is the number of log lines dumped for the offending
	// service on failure
	LogTail int

	// Probes holds optional direct endpoint checks, keyed by service
	// name, run after a service reports healthy
	Probes map[string]probe.Checker
}

func (c *Config) applyDefaults() {
	if len(c.Services) == 0 {
		c.Services = DefaultServices()
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.LogTail == 0 {
		c.LogTail = DefaultLogTail
	}
}

// Session is one wait run across all requested services, bounded by one
// deadline. A Session is not reusable.
type Session struct {
	config       Config
	orchestrator orchestration.Orchestrator
	logger       logging.Logger
	out          io.Writer
}

// NewSession creates a wait session. Zero config fields are filled with
// defaults before validation.
func NewSession(config Config, orchestrator orchestration.Orchestrator, logger logging.Logger) (*Session, error) {
	config.applyDefaults()
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	if orchestrator == nil {
		return nil, errors.NewValidationError("orchestrator is required", nil)
	}
	return &Session{
		config:       config,
		orchestrator: orchestrator,
		logger:       logger,
		out:          os.Stdout,
	}, nil
}

// SetOutput redirects the diagnostic dump, which otherwise goes to stdout
func (s *Session) SetOutput(w io.Writer) {
	s.out = w
}

// Run blocks until every service is healthy, in order. The deadline is
// computed once here and consulted by every poll; it is never extended
// when moving to the next service. Returns nil on success, a timeout or
// unhealthy domain error on failure, and a cancelled error when ctx is
// done before the session completes.
func (s *Session) Run(ctx context.Context) error {
	deadline := time.Now().Add(s.config.Timeout)

	s.logger.Infof("Waiting for services, count: %d, timeout: %v", len(s.config.Services), s.config.Timeout)

	for _, service := range s.config.Services {
		if err := s.waitForService(ctx, service, deadline); err != nil {
			return err
		}
	}

	s.logger.Infof("All services are healthy, count: %d", len(s.config.Services))
	return nil
}

func (s *Session) waitForService(ctx context.Context, service string, deadline time.Time) error {
	s.logger.Infof("Waiting for service, service: %s, remaining: %v", service, time.Until(deadline).Round(time.Second))

	for {
		if time.Now().After(deadline) {
			return s.abort(ctx, service, errors.NewTimeoutError("service did not become healthy before the deadline", nil).
				WithContext("service", service).
				WithContext("timeout", s.config.Timeout.String()))
		}

		status := s.pollService(ctx, service)
		switch status {
		case orchestration.HealthHealthy:
			if checker, ok := s.config.Probes[service]; ok {
				if err := s.probeService(ctx, service, checker, deadline); err != nil {
					return err
				}
			}
			s.logger.Infof("Service is healthy, service: %s", service)
			return nil

		case orchestration.HealthUnhealthy:
			return s.abort(ctx, service, errors.NewUnhealthyError("service reported unhealthy", nil).
				WithContext("service", service))

		default:
			// absent, starting and unknown are all transient and
			// retried until the deadline
			s.logger.Debugf("Service not healthy yet, service: %s, status: %s", service, status)
		}

		if err := s.sleep(ctx, service); err != nil {
			return err
		}
	}
}

// pollService performs one query round against the orchestration layer.
// Query errors are treated the same as transient statuses: logged and
// retried until the deadline.
func (s *Session) pollService(ctx context.Context, service string) orchestration.HealthStatus {
	containerID, err := s.orchestrator.ContainerID(ctx, service)
	if err != nil {
		s.logger.Debugf("Failed to query container id, service: %s, error: %v", service, err)
		return orchestration.HealthUnknown
	}
	if containerID == "" {
		return orchestration.HealthAbsent
	}

	status, err := s.orchestrator.Health(ctx, containerID)
	if err != nil {
		s.logger.Debugf("Failed to query health, service: %s, container_id: %s, error: %v", service, containerID, err)
		return orchestration.HealthUnknown
	}
	return status
}

// probeService retries the direct endpoint check until it passes or the
// shared deadline elapses. Probe failures are transient; only the
// deadline makes them terminal.
func (s *Session) probeService(ctx context.Context, service string, checker probe.Checker, deadline time.Time) error {
	s.logger.Infof("Probing service endpoint, service: %s, target: %s", service, checker.Target())

	for {
		if time.Now().After(deadline) {
			return s.abort(ctx, service, errors.NewTimeoutError("endpoint probe did not pass before the deadline", nil).
				WithContext("service", service).
				WithContext("target", checker.Target()))
		}

		err := checker.Check(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return errors.NewCancelledError("wait session interrupted", ctx.Err()).WithContext("service", service)
		}
		s.logger.Debugf("Endpoint probe failed, service: %s, error: %v", service, err)

		if err := s.sleep(ctx, service); err != nil {
			return err
		}
	}
}

func (s *Session) sleep(ctx context.Context, service string) error {
	select {
	case <-ctx.Done():
		return errors.NewCancelledError("wait session interrupted", ctx.Err()).WithContext("service", service)
	case <-time.After(s.config.PollInterval):
		return nil
	}
}

// abort dumps diagnostics for the blocked service and returns the
// terminal error unchanged.
func (s *Session) abort(ctx context.Context, service string, cause *errors.DomainError) error {
	s.logger.Errorf("Wait session failed, service: %s, error: %v", service, cause)
	s.dumpDiagnostics(ctx, service)
	return cause
}
