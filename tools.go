//go:build tools
// +build tools

// Package vitatrack only pins go:generate tooling (mockgen) as a module dependency.
package vitatrack

import (
	_ "go.uber.org/mock/mockgen"
)
