package importer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/alexanderramin/tempo/internal/domain"
)

// Limits bound the size of an imported document.
type Limits struct {
	MaxTasks  int
	MaxString int
}

// DefaultLimits are applied when a Limits field is zero.
var DefaultLimits = Limits{MaxTasks: 10000, MaxString: 250}

func (l Limits) withDefaults() Limits {
	if l.MaxTasks <= 0 {
		l.MaxTasks = DefaultLimits.MaxTasks
	}
	if l.MaxString <= 0 {
		l.MaxString = DefaultLimits.MaxString
	}
	return l
}

// Issue is one problem found in a document, located by a JSON-style path
// such as "tasks[3].predecessors[0]".
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string { return i.Path + ": " + i.Message }

// RejectedError is returned by a strict import that found issues.
type RejectedError struct {
	Issues []Issue
}

func (e *RejectedError) Error() string {
	if len(e.Issues) == 1 {
		return "import rejected: " + e.Issues[0].String()
	}
	return fmt.Sprintf("import rejected with %d issues; first: %s", len(e.Issues), e.Issues[0])
}

func (e *RejectedError) Unwrap() error { return domain.ErrValidation }

var docValidate *validator.Validate

func init() {
	docValidate = validator.New()
	docValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateStruct runs the struct tags of v and reports each failure under
// prefix.
func validateStruct(prefix string, v any) []Issue {
	err := docValidate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Path: prefix, Message: err.Error()}}
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		path := field
		if prefix != "" {
			path = prefix + "." + field
		}
		issues = append(issues, Issue{Path: path, Message: describe(fe)})
	}
	return issues
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("invalid value %q (want one of %s)", fmt.Sprint(fe.Value()), fe.Param())
	case "datetime":
		return fmt.Sprintf("invalid format %q (expected %s)", fmt.Sprint(fe.Value()), fe.Param())
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("%v must be %s %s", fe.Value(), comparison[fe.Tag()], fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

var comparison = map[string]string{"gt": ">", "gte": ">=", "lt": "<", "lte": "<="}

// CheckLimits rejects the whole document when it exceeds l.
func CheckLimits(doc *Document, l Limits) error {
	l = l.withDefaults()
	ref := domain.Entity{Type: domain.EntityProject}
	if len(doc.Tasks) > l.MaxTasks {
		return domain.Errorf(domain.ErrCapacityExceeded, ref, "document has %d tasks, limit is %d", len(doc.Tasks), l.MaxTasks)
	}
	tooLong := func(path, s string) error {
		if n := len([]rune(s)); n > l.MaxString {
			return domain.Errorf(domain.ErrCapacityExceeded, ref, "%s is %d characters, limit is %d", path, n, l.MaxString)
		}
		return nil
	}
	if err := tooLong("project.name", doc.Project.Name); err != nil {
		return err
	}
	for i, t := range doc.Tasks {
		if err := tooLong(fmt.Sprintf("tasks[%d].name", i), t.Name); err != nil {
			return err
		}
		if err := tooLong(fmt.Sprintf("tasks[%d].notes", i), t.Notes); err != nil {
			return err
		}
	}
	for i, r := range doc.Resources {
		if err := tooLong(fmt.Sprintf("resources[%d].name", i), r.Name); err != nil {
			return err
		}
	}
	return nil
}
