package env

import (
	"fmt"
	"strings"
)

// Environment selects which eBay deployment (sandbox or production) credentials
// and endpoints are used.
type Environment string

const (
	Sandbox    Environment = "SANDBOX"
	Production Environment = "PRODUCTION"
)

func (e Environment) IsSandbox() bool    { return e == Sandbox }
func (e Environment) IsProduction() bool { return e == Production }

func (e Environment) Valid() bool { return e.IsSandbox() || e.IsProduction() }

func (e Environment) String() string { return string(e) }

func Parse(s string) (Environment, error) {
	e := Environment(strings.ToUpper(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", fmt.Errorf("invalid environment: %q (valid: %s, %s)", s, Sandbox, Production)
	}
	return e, nil
}

// UnmarshalText lets caarlos0/env reject unknown values at startup.
func (e *Environment) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
