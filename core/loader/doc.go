// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which names it, reports
// whether it is enabled and registers its routes.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager holds the registry of available features. Register rejects
// duplicate names and LoadAll loads the enabled ones in registration order.
// The catalog, integrity and snapshot features are registered by the start
// command.
package loader
