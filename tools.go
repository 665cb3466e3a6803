//go:build tools

// Package tools pins the development tools installed by `make tools`.
package tools

import (
	_ "github.com/cucumber/godog/cmd/godog"
	_ "github.com/dmarkham/enumer"
	_ "golang.org/x/tools/cmd/goimports"
)
