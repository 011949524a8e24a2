package gametype

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/twilightcoders/cardgames/internal/models"
)

var urlSlug = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their wire names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterValidation("urlslug", func(fl validator.FieldLevel) bool {
		return urlSlug.MatchString(fl.Field().String())
	})

	v.RegisterStructValidation(gameConfigurationRules, models.GameConfiguration{})
	return v
}

// gameConfigurationRules holds the cross-field invariants struct tags cannot express.
func gameConfigurationRules(sl validator.StructLevel) {
	g := sl.Current().Interface().(models.GameConfiguration)

	if g.FixedRounds != nil && *g.FixedRounds < 1 {
		sl.ReportError(g.FixedRounds, "fixedRounds", "FixedRounds", "min", "1")
	}
	if g.PreRenderScoreboard && g.FixedRounds == nil {
		sl.ReportError(g.FixedRounds, "fixedRounds", "FixedRounds", "required_with_prerender", "")
	}
	if g.HasWinType(models.WinTypeScore) && g.WinScore == nil {
		sl.ReportError(g.WinScore, "winScore", "WinScore", "required_with_score_win", "")
	}
}

// Validate checks every field and cross-field invariant of g.
// It returns a *ValidationError listing all violations, or nil.
func Validate(g *models.GameConfiguration) error {
	err := validate.Struct(g)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate game type: %w", err)
	}

	out := &ValidationError{Violations: make([]Violation, 0, len(verrs))}
	for _, fe := range verrs {
		field := fieldPath(fe)
		out.Violations = append(out.Violations, Violation{
			Field:      field,
			Constraint: fe.Tag(),
			Message:    describe(field, fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from the namespace: "GameConfiguration.scoreTypes[0]" => "scoreTypes[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s entry", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gtefield":
		return field + " must be greater than or equal to minPlayers"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value()))
	case "unique":
		return field + " must not repeat a score value"
	case "urlslug":
		return field + " may only contain lowercase letters, digits, '-' and '_'"
	case "required_with_prerender":
		return field + " is required when preRenderScoreboard is true"
	case "required_with_score_win":
		return field + " is required when winType includes score"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
