package types

import "github.com/moznion/go-optional"

// UnknownField is displayed for company metadata the provider did not supply.
const UnknownField = "N/A"

// CompanyInfo carries the descriptive metadata of a symbol.
// Every field is independently optional; providers leave a field None rather than guessing.
type CompanyInfo struct {
	LongName optional.Option[string]
	Sector   optional.Option[string]
	Industry optional.Option[string]
}

// DisplayLongName returns the long name or UnknownField.
func (c CompanyInfo) DisplayLongName() string {
	return c.LongName.TakeOr(UnknownField)
}

// DisplaySector returns the sector or UnknownField.
func (c CompanyInfo) DisplaySector() string {
	return c.Sector.TakeOr(UnknownField)
}

// DisplayIndustry returns the industry or UnknownField.
func (c CompanyInfo) DisplayIndustry() string {
	return c.Industry.TakeOr(UnknownField)
}

// OptionalString maps an empty string to None.
func OptionalString(s string) optional.Option[string] {
	if s == "" {
		return optional.None[string]()
	}

	return optional.Some(s)
}
