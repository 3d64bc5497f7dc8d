package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/arloliu/zne/amplifier"
	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/extrapolation"
)

// validate is the shared validator instance, with library name checks
// registered in init.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("amplifier_name", libraryName(amplifier.Names()))
	_ = validate.RegisterValidation("extrapolator_name", libraryName(extrapolation.Names()))
}

// libraryName accepts case-insensitive names from names.
func libraryName(names []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(names, strings.ToLower(strings.TrimSpace(fl.Field().String())))
	}
}

// Validate checks c with its struct tags and the cross-field rules that tags
// cannot express. Every failure wraps errs.ErrInvalidValue.
func (c StrategyConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}

			return fmt.Errorf("%w: %s", errs.ErrInvalidValue, strings.Join(msgs, "; "))
		}

		return fmt.Errorf("%w: %w", errs.ErrInvalidValue, err)
	}

	switch strings.ToLower(strings.TrimSpace(c.Extrapolator.Name)) {
	case extrapolation.NamePolynomial:
		if c.Extrapolator.Degree < 1 {
			return fmt.Errorf("%w: extrapolator %q requires degree >= 1", errs.ErrInvalidValue, c.Extrapolator.Name)
		}
	case extrapolation.NameMultiExponential:
		if c.Extrapolator.NumTerms < 1 {
			return fmt.Errorf("%w: extrapolator %q requires num_terms >= 1", errs.ErrInvalidValue, c.Extrapolator.Name)
		}
	}

	if strings.EqualFold(strings.TrimSpace(c.Amplifier.Name), amplifier.NameGlobal) &&
		(len(c.Amplifier.OperationsToFold) > 0 || len(c.Amplifier.Arities) > 0) {
		return fmt.Errorf("%w: global folding does not take operations_to_fold or arities", errs.ErrInvalidValue)
	}

	return nil
}
