package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/stockview/pkg/errors"
)

// CheckConfigCompatibility checks that a config file written by configVersion
// can be read by binaryVersion. Returns nil if compatible.
//
// Compatibility Rules:
//   - An empty config version or "main" on either side skips the check
//   - Major versions must match exactly
//   - The config minor version must not be newer than the binary's, since a
//     newer minor may use settings this binary does not know
//   - Patch versions can differ
//
// Examples:
//   - Binary 1.2.0, Config 1.2.0 -> OK
//   - Binary 1.3.0, Config 1.2.4 -> OK
//   - Binary 1.2.0, Config 1.3.0 -> ERROR (config minor newer)
//   - Binary 2.0.0, Config 1.2.0 -> ERROR (major differs)
func CheckConfigCompatibility(binaryVersion, configVersion string) error {
	binaryVersion = strings.TrimPrefix(binaryVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if configVersion == "" || binaryVersion == "main" || configVersion == "main" {
		return nil
	}

	binarySemver, err := semver.NewVersion(binaryVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid binary version '%s'", binaryVersion)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid config version '%s'", configVersion)
	}

	if binarySemver.Major() != configSemver.Major() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "major version mismatch: stockview is %d.x.x but the config was written for %d.x.x",
			binarySemver.Major(), configSemver.Major())
	}

	if configSemver.Minor() > binarySemver.Minor() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "config version %d.%d.x is newer than stockview %d.%d.x",
			configSemver.Major(), configSemver.Minor(),
			binarySemver.Major(), binarySemver.Minor())
	}

	return nil
}
