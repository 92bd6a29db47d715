// Package module holds the port registry modules use to find each other at bootstrap
package module

import "crosspost/internal/modkit/httpkit"

// Module is the minimal contract the registry needs
// kept as a sibling of modkit.Module so a module can export its ports without an import knot
type Module interface {
	MountRoutes(r httpkit.Router)
	Ports() any
	Name() string
}
