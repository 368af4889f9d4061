//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

func Build() error {
	mg.Deps(BuildNwbconvert)
	fmt.Println("Compilation finished")
	return nil
}

// cgoEnv passes the HDF5 include and library paths through to the go tool.
func cgoEnv() []string {
	return append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", os.Getenv("CGO_LDFLAGS")),
		fmt.Sprintf("CGO_CFLAGS=%s", os.Getenv("CGO_CFLAGS")))
}

func goCommand(args ...string) error {
	cmd := exec.Command("go", args...)
	cmd.Env = cgoEnv()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func BuildNwbconvert() error {
	fmt.Println("Building nwbconvert executable...")
	return goCommand("build", "-o", "./bin/nwbconvert", "./nwbconvert")
}

// Test runs the unit tests of every package.
func Test() error {
	fmt.Println("Running tests...")
	return goCommand("test", "./...")
}

func Install() error {
	mg.Deps(Build)
	fmt.Println("Installing nwbconvert...")
	return goCommand("install", "./nwbconvert")
}
