// api/ratelimit/class.go
package ratelimit

import (
	"time"

	"github.com/spf13/viper"
)

// Class is one rate budget: a fixed number of requests per fixed window.
type Class struct {
	Name   string
	Limit  int
	Window time.Duration
}

// The standard limiter classes. PerUser is keyed by user ID and skipped
// entirely for unauthenticated requests; the rest key on client IP.
var (
	DefaultClass = Class{Name: "default", Limit: 100, Window: 15 * time.Minute}
	AuthClass    = Class{Name: "auth", Limit: 5, Window: 15 * time.Minute}
	CreateClass  = Class{Name: "create", Limit: 10, Window: time.Minute}
	ReportsClass = Class{Name: "reports", Limit: 10, Window: 5 * time.Minute}
	PerUserClass = Class{Name: "perUser", Limit: 1000, Window: 15 * time.Minute}
)

// Configured returns the class with its budget overridden from configuration
// when present, falling back to the built-in defaults.
func Configured(class Class) Class {
	if limit := viper.GetInt("ratelimit." + class.Name + ".limit"); limit > 0 {
		class.Limit = limit
	}
	if window := viper.GetDuration("ratelimit." + class.Name + ".window"); window > 0 {
		class.Window = window
	}
	return class
}
