// Package modkit wires service modules from shared deps and functional options
package modkit

import "stylefix/internal/modkit/module"

// Module is the common surface for API modules, see module.Module
type Module = module.Module
