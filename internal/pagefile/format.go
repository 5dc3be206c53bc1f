// Package pagefile implements the backing-store collaborator consumed by
// internal/physmem: persisting and restoring a virtual page's words by
// virtual-page index. It is entirely outside spec.md's CORE (§1 lists
// "the page-file abstraction" among the external collaborators), but a
// runnable deployment needs a concrete one.
package pagefile

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// magic identifies a file as one of ours before we trust its header.
const magic = "VMPF"

// FormatVersion is the page-file header format this package writes. The
// teacher codebase's package manager
// (internal/packagemanager/resolver.go) leans on
// github.com/Masterminds/semver/v3 to parse and satisfy version
// constraints; this package reuses it the same way, but for the on-disk
// page-file header instead of a package dependency graph.
var FormatVersion = semver.MustParse("1.0.0")

// supportedConstraint accepts any format version compatible with the one
// this package writes, so a minor/patch bump to the header never strands
// an existing page file.
var supportedConstraint = mustConstraint(fmt.Sprintf("^%s", FormatVersion.String()))

func mustConstraint(expr string) *semver.Constraints {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		panic(err)
	}

	return c
}

// checkVersion reports whether a page file written with headerVersion can
// be safely attached to by this build.
func checkVersion(headerVersion string) error {
	v, err := semver.NewVersion(headerVersion)
	if err != nil {
		return fmt.Errorf("pagefile: unparseable format version %q: %w", headerVersion, err)
	}

	if !supportedConstraint.Check(v) {
		return fmt.Errorf("pagefile: format version %s is not compatible with supported range %s", v, supportedConstraint)
	}

	return nil
}
