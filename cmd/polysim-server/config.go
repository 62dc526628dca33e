package main

import (
	"flag"
	"log"
	"os"
	"strconv"
)

// ServerConfig holds the server configuration
type ServerConfig struct {
	Addr          string
	ModelFile     string
	LogLevel      string
	StepBatchSize int
}

// configResolver defines how to resolve a single configuration value
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

// loadServerConfig loads server configuration from CLI flags and environment variables.
// Uses a resolver pattern to make it easy to add new configuration options.
func loadServerConfig() ServerConfig {
	cfg := ServerConfig{}

	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "POLYSIM_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "model-file",
			envVarName:  "POLYSIM_MODEL_FILE",
			defaultVal:  "",
			description: "optional path to a YAML model file to start a run at startup",
			setter:      func(c *ServerConfig, v string) { c.ModelFile = v },
		},
		{
			flagName:    "log-level",
			envVarName:  "POLYSIM_LOG_LEVEL",
			defaultVal:  "info",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
		{
			flagName:    "step-batch-size",
			envVarName:  "POLYSIM_STEP_BATCH_SIZE",
			defaultVal:  "1024",
			description: "Number of simulation actions executed between state reads",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.Atoi(v); err == nil && val > 0 {
					c.StepBatchSize = val
				} else {
					log.Printf("Invalid value for step-batch-size: %s, using default 1024", v)
					c.StepBatchSize = 1024
				}
			},
		},
	}

	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = flag.String(resolver.flagName, "", resolver.description)
	}

	flag.Parse()

	for _, resolver := range resolvers {
		var value string
		if *flagVars[resolver.flagName] != "" {
			value = *flagVars[resolver.flagName]
		} else if envValue := os.Getenv(resolver.envVarName); envValue != "" {
			value = envValue
		} else {
			value = resolver.defaultVal
		}
		resolver.setter(&cfg, value)
	}

	return cfg
}
