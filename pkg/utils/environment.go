package utils

import "strings"

// Environment selects runtime behaviour such as the gin mode.
type Environment string

const (
	PRODUCTION  Environment = "production"
	DEVELOPMENT Environment = "development"
)

func (e Environment) Get() string {
	return string(e)
}

func (e Environment) IsProduction() bool {
	return e == PRODUCTION
}

// FromEnvironmentStr is case insensitive and defaults to DEVELOPMENT.
func FromEnvironmentStr(str string) Environment {
	switch strings.ToLower(str) {
	case "production":
		return PRODUCTION
	default:
		return DEVELOPMENT
	}
}
