//go:build mage
// +build mage

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/YoshitsuguKoike/repostflow/internal/infrastructure/persistence/history"
)

const (
	binary      = "repostflow"
	versionPkg  = "github.com/YoshitsuguKoike/repostflow/internal/buildinfo.Version"
	coverageOut = "coverage.out"
)

// Build builds the repostflow binary into bin/
func Build() error {
	mg.Deps(Vet, Test)

	fmt.Printf("Building %s...\n", binary)
	return sh.RunV("go", "build",
		"-o", filepath.Join("bin", binary),
		"-ldflags", "-s -w -X "+versionPkg+"="+version(),
		"./cmd/repostflow")
}

// Test runs all tests with the race detector and writes coverage.out
func Test() error {
	fmt.Println("Running Go tests...")
	return sh.RunV("go", "test", "-race", "-coverprofile="+coverageOut, "./...")
}

// Cover prints per-function coverage from the last Test run
func Cover() error {
	mg.Deps(Test)
	return sh.RunV("go", "tool", "cover", "-func="+coverageOut)
}

// Vet runs go vet
func Vet() error {
	fmt.Println("Running go vet...")
	return sh.RunV("go", "vet", "./...")
}

// Lint runs golangci-lint
func Lint() error {
	fmt.Println("Running linters...")
	return sh.RunV("golangci-lint", "run", "./...")
}

// Schema applies the history schema to a scratch sqlite database
func Schema() error {
	dir, err := os.MkdirTemp("", "repostflow-schema-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := history.NewStore(ctx, history.StoreTypeSQLite,
		history.WithSQLitePath(filepath.Join(dir, "history.db")))
	if err != nil {
		return fmt.Errorf("schema check failed: %w", err)
	}
	fmt.Println("  ✓ history schema applies cleanly")
	return store.Close()
}

// Plot regenerates docs/flow.mmd from the review state machine
func Plot() error {
	if err := os.MkdirAll("docs", 0o755); err != nil {
		return err
	}
	out, err := sh.Output("go", "run", "./cmd/repostflow", "plot", "--format", "mermaid")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join("docs", "flow.mmd"), []byte(out+"\n"), 0o644)
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning...")
	os.RemoveAll("bin")
	os.Remove(coverageOut)
	return nil
}

func version() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || out == "" {
		return "dev"
	}
	return out
}
