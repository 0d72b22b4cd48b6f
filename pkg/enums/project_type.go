package enums

import "fmt"

// ProjectType selects the base offering of a quote.
type ProjectType string

const (
	ProjectTypeVitrine   ProjectType = "vitrine"
	ProjectTypeEcommerce ProjectType = "ecommerce"
	ProjectTypeLanding   ProjectType = "landing"
	ProjectTypeCustom    ProjectType = "custom"
)

var validProjectTypes = []ProjectType{
	ProjectTypeVitrine,
	ProjectTypeEcommerce,
	ProjectTypeLanding,
	ProjectTypeCustom,
}

// String implements fmt.Stringer.
func (p ProjectType) String() string {
	return string(p)
}

// IsValid reports whether the project type is recognized.
func (p ProjectType) IsValid() bool {
	for _, candidate := range validProjectTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProjectType converts a raw string into a ProjectType.
func ParseProjectType(value string) (ProjectType, error) {
	for _, candidate := range validProjectTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid project type %q", value)
}
