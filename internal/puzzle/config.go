package puzzle

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is returned when capacities or target fail validation.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// #region new-config
// NewConfig validates capacities and target and returns an owned Config.
// A target larger than every capacity is accepted; the solver reports it as
// unsolvable.
func NewConfig(capacities []int, target int) (Config, error) {
	cfg := Config{Capacities: append([]int(nil), capacities...), Target: target}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags on Config.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, describe(err))
	}
	return nil
}

// #endregion new-config

// #region initial-fill
// InitialFill returns the deterministic starting state: the first jar with the
// maximum capacity is full and every other jar is empty.
func InitialFill(capacities []int) State {
	s := make(State, len(capacities))
	if len(capacities) == 0 {
		return s
	}
	best := 0
	for i, c := range capacities {
		if c > capacities[best] {
			best = i
		}
	}
	s[best] = capacities[best]
	return s
}

// #endregion initial-fill

// #region helpers
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), rule))
	}
	return strings.Join(parts, "; ")
}

// #endregion helpers
