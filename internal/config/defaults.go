package config

// SystemDefaults returns the built-in configuration.
func SystemDefaults() *Config {
	enabled := true
	return &Config{
		Output: OutputConfig{
			Format: "pretty",
		},
		Cache: CacheConfig{
			Enabled: &enabled,
			MaxSize: 1000,
			TTL:     "1h",
		},
		Store: StoreConfig{
			Driver: "file",
			Path:   ".quill/reports",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Telemetry: TelemetryConfig{
			Endpoint:    "localhost:4317",
			Protocol:    "grpc",
			ServiceName: "quill",
			SampleRate:  1.0,
		},
	}
}
