//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Fetch downloads the current farmers market CSV into data/.
func Fetch() error {
	mg.Deps(Init)
	return sh.RunV("go", "run", cmdPkg, "fetch")
}
