//go:build mage

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
)

const (
	modulePath = "github.com/dkoosis/testhtml"
	binPath    = "./bin/testhtml"
)

// Default target - build the binary
var Default = Build

// Build builds the testhtml binary
func Build() error {
	ldflags := fmt.Sprintf("-s -w -X '%s/internal/version.Version=%s' -X '%s/internal/version.CommitHash=%s' -X '%s/internal/version.BuildDate=%s'",
		modulePath, gitOutput("dev", "describe", "--tags", "--always", "--dirty", "--match=v*"),
		modulePath, gitOutput("unknown", "rev-parse", "--short", "HEAD"),
		modulePath, time.Now().UTC().Format(time.RFC3339))

	fmt.Println("Building testhtml...")
	if err := runV("go", "build", "-ldflags", ldflags, "-o", binPath, "./cmd/testhtml"); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	fmt.Printf("Built: %s\n", binPath)
	return nil
}

// Clean removes build artifacts
func Clean() error {
	if err := os.RemoveAll("./bin"); err != nil {
		return err
	}
	return os.RemoveAll("./testreport")
}

// Test namespace for testing commands
type Test mg.Namespace

// All runs all tests
func (Test) All() error {
	return runV("go", "test", "./...")
}

// Race runs tests with race detector
func (Test) Race() error {
	return runV("go", "test", "-race", "./...")
}

// Report runs the test suite through testhtml, writing testreport/index.html
func (Test) Report() error {
	mg.Deps(Build)
	goTest := exec.Command("go", "test", "-json", "./...")
	report := exec.Command(binPath, "--report", "testreport/index.html")
	pipe, err := goTest.StdoutPipe()
	if err != nil {
		return err
	}
	report.Stdin = pipe
	report.Stdout = os.Stdout
	report.Stderr = os.Stderr
	goTest.Stderr = os.Stderr

	if err := report.Start(); err != nil {
		return err
	}
	if err := goTest.Start(); err != nil {
		return err
	}
	testErr := goTest.Wait()
	return errors.Join(report.Wait(), testErr)
}

// Lint namespace for linting commands
type Lint mg.Namespace

// All runs all linters
func (Lint) All() {
	mg.SerialDeps(Lint.Vet, Lint.Golangci)
}

// Vet runs go vet
func (Lint) Vet() error {
	return runV("go", "vet", "./...")
}

// Golangci runs golangci-lint
func (Lint) Golangci() error {
	err := runV("golangci-lint", "run", "--timeout=5m", "./...")
	if errors.Is(err, exec.ErrNotFound) {
		fmt.Println("golangci-lint not found (install: go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest)")
		return nil
	}
	return err
}

func runV(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if mg.Verbose() {
		fmt.Println("exec:", name, strings.Join(args, " "))
	}
	return cmd.Run()
}

func gitOutput(fallback string, args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return fallback
	}
	return strings.TrimSpace(string(out))
}
