package course

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Issue is one structural problem found in a candidate payload.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Issues is an ordered, non-empty list of problems returned on rejection.
type Issues []Issue

func (is Issues) Error() string {
	msgs := make([]string, len(is))
	for i, issue := range is {
		msgs[i] = issue.Message
	}
	return strings.Join(msgs, "; ")
}

// First returns the message of the first issue, or "" for an empty list.
func (is Issues) First() string {
	if len(is) == 0 {
		return ""
	}
	return is[0].Message
}

// Schema names, used as metric labels.
const (
	SchemaID     = "id"
	SchemaPost   = "post"
	SchemaPut    = "put"
	SchemaDelete = "delete"
)

type idParams struct {
	CourseID *int `mapstructure:"courseId" validate:"required,gt=0"`
}

type postBody struct {
	CourseID    *int     `mapstructure:"courseId" validate:"required,gt=0"`
	Name        *string  `mapstructure:"name" validate:"required,min=1,max=200"`
	Credits     *int     `mapstructure:"credits" validate:"omitnil,min=0,max=12"`
	Instructors []string `mapstructure:"instructors" validate:"omitempty,dive,min=1"`
}

type putBody struct {
	CourseID    *int     `mapstructure:"courseId" validate:"required,gt=0"`
	Name        *string  `mapstructure:"name" validate:"omitnil,min=1,max=200"`
	Credits     *int     `mapstructure:"credits" validate:"omitnil,min=0,max=12"`
	Instructors []string `mapstructure:"instructors" validate:"omitempty,dive,min=1"`
}

type deleteBody struct {
	CourseID *int `mapstructure:"courseId" validate:"required,gt=0"`
}

var (
	errNotInteger = errors.New("must be an integer")
	errNotString  = errors.New("must be a string")
	errNotArray   = errors.New("must be an array")

	numberType       = reflect.TypeOf(json.Number(""))
	decodeErrPattern = regexp.MustCompile(`^error decoding '([^']*)': (.+)$`)

	rules = newRuleValidator()
)

func newRuleValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateID checks a raw path segment against the id-only schema.
func ValidateID(raw string) (int, Issues) {
	var p idParams
	if issues := check(map[string]any{FieldCourseID: json.Number(strings.TrimSpace(raw))}, &p); issues != nil {
		return 0, issues
	}
	return *p.CourseID, nil
}

// ValidatePost checks a create body. The accepted record keeps unknown
// fields as sent and carries normalised values for the known ones.
func ValidatePost(body map[string]any) (Course, Issues) {
	var b postBody
	if issues := check(body, &b); issues != nil {
		return nil, issues
	}
	out := Course(body).Clone()
	applyKnown(out, b.CourseID, b.Name, b.Credits, b.Instructors)
	return out, nil
}

// ValidatePut checks an update body and returns it as a patch.
func ValidatePut(body map[string]any) (Course, Issues) {
	var b putBody
	if issues := check(body, &b); issues != nil {
		return nil, issues
	}
	out := Course(body).Clone()
	applyKnown(out, b.CourseID, b.Name, b.Credits, b.Instructors)
	return out, nil
}

// ValidateDelete checks a delete body and returns the referenced courseId.
func ValidateDelete(body map[string]any) (int, Issues) {
	var b deleteBody
	if issues := check(body, &b); issues != nil {
		return 0, issues
	}
	return *b.CourseID, nil
}

func applyKnown(out Course, id *int, name *string, credits *int, instructors []string) {
	out[FieldCourseID] = *id
	if name != nil {
		out[FieldName] = *name
	}
	if credits != nil {
		out[FieldCredits] = *credits
	}
	if instructors != nil {
		out[FieldInstructors] = instructors
	}
}

// check decodes body into target with strict typing, then applies the
// target's value rules. It returns nil when body is accepted.
func check(body map[string]any, target any) Issues {
	if issues := nullIssues(body, target); issues != nil {
		return issues
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: strictTypes,
		MatchName:  func(mapKey, field string) bool { return mapKey == field },
		Result:     target,
	})
	if err != nil {
		return Issues{{Message: err.Error()}}
	}
	if err := dec.Decode(body); err != nil {
		return decodeIssues(err)
	}
	if err := rules.Struct(target); err != nil {
		return ruleIssues(err)
	}
	return nil
}

// nullIssues rejects known fields that are present but explicitly null.
func nullIssues(body map[string]any, target any) Issues {
	var issues Issues
	t := reflect.TypeOf(target).Elem()
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("mapstructure"), ",", 2)[0]
		if v, ok := body[name]; ok && v == nil {
			issues = append(issues, Issue{Field: name, Message: name + " must not be null"})
		}
	}
	return issues
}

// strictTypes refuses the implicit conversions mapstructure would otherwise
// allow between JSON numbers, strings and arrays.
func strictTypes(from, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := toInt(data)
		if !ok {
			return nil, errNotInteger
		}
		return n, nil
	case reflect.String:
		if from.Kind() != reflect.String || from == numberType {
			return nil, errNotString
		}
	case reflect.Slice:
		if from.Kind() != reflect.Slice {
			return nil, errNotArray
		}
	}
	return data, nil
}

func decodeIssues(err error) Issues {
	msgs := []string{err.Error()}
	var merr *mapstructure.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		msgs = merr.Errors
	}
	issues := make(Issues, 0, len(msgs))
	for _, msg := range msgs {
		if m := decodeErrPattern.FindStringSubmatch(msg); m != nil {
			issues = append(issues, Issue{Field: m[1], Message: m[1] + " " + m[2]})
			continue
		}
		issues = append(issues, Issue{Message: msg})
	}
	return issues
}

func ruleIssues(err error) Issues {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Issues{{Message: err.Error()}}
	}
	issues := make(Issues, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{Field: fe.Field(), Message: ruleMessage(fe)})
	}
	return issues
}

func ruleMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s check", field, fe.Tag())
	}
}
