//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Catalog converts and records the run in catalog/markets.db.
func Catalog() error {
	mg.Deps(Init)
	return sh.RunV("go", "run", cmdPkg, "convert", "--catalog")
}
