//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert writes manhattan_farmers_markets.geojson from the source CSV.
func Convert() error {
	mg.Deps(Init)
	return sh.RunV("go", "run", cmdPkg, "convert")
}
