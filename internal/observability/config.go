package observability

import (
	"strings"
	"time"

	"github.com/smallbiznis/promptinvoice/internal/config"
)

// Config is the resolved telemetry configuration shared by the logger,
// tracer and meter providers.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64

	SlowQueryThreshold time.Duration
}

// LoadConfig derives telemetry settings from the application config.
// DEPLOYMENT_ENV, when set, labels telemetry instead of ENVIRONMENT.
func LoadConfig(cfg config.Config) Config {
	obs := cfg.Observability

	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "promptinvoice"
	}
	environment := strings.TrimSpace(obs.DeploymentEnv)
	if environment == "" {
		environment = strings.TrimSpace(cfg.Environment)
	}
	level := strings.ToLower(strings.TrimSpace(obs.LogLevel))
	if level == "" {
		level = "info"
	}
	ratio := obs.OtelSamplingRatio
	if ratio < 0 || ratio > 1 {
		ratio = 0.1
	}

	return Config{
		ServiceName:          serviceName,
		Environment:          environment,
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             level,
		LogFormat:            obs.LogFormat,
		OtelEnabled:          obs.OtelEnabled,
		OtelExporterEndpoint: strings.TrimSpace(obs.OtelEndpoint),
		OtelExporterProtocol: obs.OtelProtocol,
		OtelSamplingRatio:    ratio,
		SlowQueryThreshold:   obs.SlowQueryThreshold,
	}
}

// Debug is true for debug log level or any non-production environment.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}
