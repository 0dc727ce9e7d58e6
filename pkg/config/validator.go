package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals

// Validate checks the configuration against its validate tags.
func Validate(conf Configuration) error {
	err := validate.Struct(conf)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errors.Wrap(ErrConfiguration, err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fe.Namespace()+" failed on '"+fe.Tag()+"'")
	}
	return errors.Wrap(ErrConfiguration, strings.Join(messages, ", "))
}
