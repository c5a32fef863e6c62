// Package config provides a type-safe, cached way to load application
// configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: the
// first Load call reads a .env file when one exists, then each
// configuration struct type is parsed from the environment exactly once
// per process and served from cache afterwards. Concurrent loads of the
// same type are safe and see identical values.
//
// Adapter and storage packages in this module define their configuration as
// annotated structs (EmailConfig, SMSConfig, redis.Config and so on); a
// process wires them like this:
//
//	var cfg channel.SMSConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//	adapter := channel.NewSMSAdapter(cfg)
//
// Load failures can be inspected with errors.Is against ErrParsingConfig
// and ErrNilPointer. MustLoad panics instead, for configuration the process
// cannot run without.
package config
