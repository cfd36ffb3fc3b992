//go:build mage

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	modulePath = "github.com/dkoosis/jitcheck"
	binPath    = "./bin/jitcheck"
)

// Default target - build the binary
var Default = Build

// Build builds the jitcheck binary with version metadata
func Build() error {
	date := time.Now().UTC().Format(time.RFC3339)
	ldflags := fmt.Sprintf("-s -w -X '%[1]s/internal/version.Version=%[2]s' -X '%[1]s/internal/version.CommitHash=%[3]s' -X '%[1]s/internal/version.BuildDate=%[4]s'",
		modulePath, gitVersion(), gitCommit(), date)

	fmt.Println("Building jitcheck...")
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, "./cmd/jitcheck"); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	fmt.Printf("Built: %s\n", binPath)
	return nil
}

// Clean removes build artifacts
func Clean() error {
	return os.RemoveAll("./bin")
}

// Corpus builds jitcheck and runs it against the norn corpus. NORN and
// CORPUS override the runtime path and test root.
func Corpus() error {
	mg.Deps(Build)
	args := []string{"-runtime", envOr("NORN", "./norn")}
	if root := os.Getenv("CORPUS"); root != "" {
		args = append(args, root)
	}
	return sh.RunV(binPath, args...)
}

// QA runs formatting, vet, staticcheck and the tests
func QA() error {
	mg.SerialDeps(Lint.Format, Lint.Vet, Lint.Staticcheck, Test.All)
	fmt.Println("QA complete!")
	return nil
}

// Lint namespace for linting commands
type Lint mg.Namespace

// Format fails when any file needs gofmt
func (Lint) Format() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return err
	}
	if files := strings.TrimSpace(out); files != "" {
		return fmt.Errorf("files need formatting:\n%s", files)
	}
	return nil
}

// Vet runs go vet
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Staticcheck runs staticcheck when it is installed
func (Lint) Staticcheck() error {
	err := sh.RunV("staticcheck", "./...")
	if err != nil && !sh.CmdRan(err) {
		fmt.Println("Staticcheck not found (install: go install honnef.co/go/tools/cmd/staticcheck@latest)")
		return nil
	}
	return err
}

// Test namespace for testing commands
type Test mg.Namespace

// All runs all tests
func (Test) All() error {
	return sh.RunV("go", "test", "./...")
}

// Coverage runs tests with coverage
func (Test) Coverage() error {
	return sh.RunV("go", "test", "-coverprofile=coverage.out", "./...")
}

// Race runs tests with the race detector
func (Test) Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

func gitVersion() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty", "--match=v*")
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(out)
}

func gitCommit() string {
	out, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(out)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
