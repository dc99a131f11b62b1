package api

import (
	"reflect"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/iamNilotpal/epubpress/internal/adapters/artifact"
	"github.com/iamNilotpal/epubpress/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	taskIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// validatorInstance returns the shared validator. Field names in errors
// come from the form tag so they match request parameters.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("form"); name != "" {
				return name
			}
			return f.Name
		})
		_ = validate.RegisterValidation("taskid", func(fl validator.FieldLevel) bool {
			return taskIDPattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("artifactkey", func(fl validator.FieldLevel) bool {
			return artifact.ValidKey(fl.Field().String())
		})
	})
	return validate
}

type compressRequest struct {
	Level  string `form:"level" validate:"omitempty,oneof=low medium high"`
	TaskID string `form:"taskId" validate:"omitempty,max=64,taskid"`
}

type statusRequest struct {
	TaskID string `form:"taskId" validate:"required,max=64,taskid"`
}

type downloadRequest struct {
	File string `form:"file" validate:"required,max=128,artifactkey"`
}

type batchRequest struct {
	Level string `form:"level" validate:"omitempty,oneof=low medium high"`
}

// codes maps a failed validation tag to the reported error code. The "*"
// entry applies to every other tag.
type codes map[string]string

var (
	compressCodes = map[string]codes{
		"level":  {"*": errors.CodeInvalidLevel},
		"taskId": {"*": errors.CodeInvalidTaskID},
	}
	statusCodes = map[string]codes{
		"taskId": {"required": errors.CodeMissingTaskID, "*": errors.CodeInvalidTaskID},
	}
	downloadCodes = map[string]codes{
		"file": {"*": errors.CodeInvalidFilename},
	}
	batchCodes = map[string]codes{
		"level": {"*": errors.CodeInvalidLevel},
	}
)

// validateRequest checks req and converts the first failure into a
// ValidationError carrying the code registered for its field and tag.
func validateRequest(req any, fields map[string]codes) error {
	err := validatorInstance().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	byTag := fields[fe.Field()]
	code, ok := byTag[fe.Tag()]
	if !ok {
		code = byTag["*"]
	}
	return errors.NewValidationError(code, fe.Field(), fe.Value(), nil)
}
