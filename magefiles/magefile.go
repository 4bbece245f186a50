//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build builds all binaries in ./cmd.
func Build() error {
	return sh.RunV("go", "build", "./cmd/...")
}

// Lint runs linting for the entire project.
func Lint() error {
	return sh.RunV("golangci-lint", "run")
}

// Test runs all tests and generates a code coverage report.
func Test() error {
	return sh.RunV("go", "test", "-timeout", "240s", "-cover", "./...")
}

// All runs all targets in the appropriate order.
// The targets are run in the following order:
// lint, test, build
func All() error {
	mg.SerialDeps(Lint, Test, Build)
	return nil
}
