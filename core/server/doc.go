// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber application from this configuration:
// the listen port, the API key enforced by the auth middleware, and the
// request limits applied to item uploads.
//
// # Usage
//
//	if err := cfg.Server.Validate(); err != nil {
//	    return err
//	}
//	app := fiber.New(fiber.Config{BodyLimit: cfg.Server.BodyLimit()})
package server
