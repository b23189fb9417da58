package assertions

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/echocheck/packages/http"
	"github.com/abdul-hamid-achik/echocheck/packages/jsonvalue"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// ErrBodyNotJSON is set on results whose subject needs a JSON body the
// response does not have.
var ErrBodyNotJSON = errors.New("response body is not JSON")

type Result struct {
	Passed   bool
	Message  string
	Expected any
	Actual   any
	Subject  string
	Operator string
	// Err is set when the assertion could not be evaluated at all, as
	// opposed to evaluating to false.
	Err error
}

// Failure is the error a check returns when an expectation does not hold.
type Failure struct {
	Result *Result
}

func (f *Failure) Error() string {
	r := f.Result
	if r.Message != "" {
		return fmt.Sprintf("%s %s: %s", r.Subject, r.Operator, r.Message)
	}
	return fmt.Sprintf("%s %s: expected %v, got %v", r.Subject, r.Operator, r.Expected, r.Actual)
}

// IsFailure reports whether err is, or wraps, an assertion failure.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// Evaluator evaluates expectations against one response. The body is
// decoded once, on first use.
type Evaluator struct {
	response *http.Response
	decoded  bool
	bodyJSON gjson.Result
	valid    bool
}

func NewEvaluator(resp *http.Response) *Evaluator {
	return &Evaluator{response: resp}
}

func (e *Evaluator) decode() {
	if e.decoded {
		return
	}
	e.decoded = true
	if gjson.ValidBytes(e.response.Body) {
		e.bodyJSON = gjson.ParseBytes(e.response.Body)
		e.valid = true
	}
}

// Body returns the decoded response body.
func (e *Evaluator) Body() (any, error) {
	e.decode()
	if !e.valid {
		return nil, ErrBodyNotJSON
	}
	return jsonvalue.FromResult(e.bodyJSON), nil
}

// Field returns the value at a gjson path, and whether it exists.
func (e *Evaluator) Field(path string) (any, bool, error) {
	e.decode()
	if !e.valid {
		return nil, false, ErrBodyNotJSON
	}
	if path == "" {
		return jsonvalue.FromResult(e.bodyJSON), true, nil
	}
	result := e.bodyJSON.Get(convertBracketNotation(path))
	if !result.Exists() {
		return nil, false, nil
	}
	return jsonvalue.FromResult(result), true, nil
}

// Status expects the exact status code.
func (e *Evaluator) Status(expected int) *Result {
	result := &Result{
		Subject:  "status",
		Operator: "==",
		Expected: expected,
		Actual:   e.response.StatusCode,
	}
	if e.response.StatusCode == expected {
		result.Passed = true
		return result
	}
	result.Message = fmt.Sprintf("expected %d, got %d", expected, e.response.StatusCode)
	return result
}

// StatusIn expects the status code to be one of allowed.
func (e *Evaluator) StatusIn(allowed ...int) *Result {
	result := &Result{
		Subject:  "status",
		Operator: "in",
		Expected: allowed,
		Actual:   e.response.StatusCode,
	}
	for _, code := range allowed {
		if e.response.StatusCode == code {
			result.Passed = true
			return result
		}
	}
	result.Message = fmt.Sprintf("expected %d to be in %v", e.response.StatusCode, allowed)
	return result
}

// FieldExists expects the body to have a value at path.
func (e *Evaluator) FieldExists(path string) *Result {
	result := &Result{
		Subject:  "body." + path,
		Operator: "exists",
	}
	actual, ok, err := e.Field(path)
	if err != nil {
		result.Err = err
		result.Message = err.Error()
		return result
	}
	result.Actual = actual
	if !ok {
		result.Message = "expected to exist"
		return result
	}
	result.Passed = true
	return result
}

// FieldEquals expects the value at path to structurally equal expected.
func (e *Evaluator) FieldEquals(path string, expected any) *Result {
	result := &Result{
		Subject:  "body." + path,
		Operator: "==",
		Expected: expected,
	}
	actual, ok, err := e.Field(path)
	if err != nil {
		result.Err = err
		result.Message = err.Error()
		return result
	}
	if !ok {
		result.Message = "expected to exist"
		return result
	}
	result.Actual = actual
	if d := jsonvalue.Diff(expected, actual); d != "" {
		result.Message = d
		return result
	}
	result.Passed = true
	return result
}

// KeyEquals expects the object at path to hold key, matched exactly, with
// the given string value.
func (e *Evaluator) KeyEquals(path, key, expected string) *Result {
	return e.keyEquals(path, key, expected, false)
}

// KeyEqualsFold is KeyEquals with a case-insensitive key match.
func (e *Evaluator) KeyEqualsFold(path, key, expected string) *Result {
	return e.keyEquals(path, key, expected, true)
}

func (e *Evaluator) keyEquals(path, key, expected string, fold bool) *Result {
	result := &Result{
		Subject:  fmt.Sprintf("body.%s[%s]", path, key),
		Operator: "==",
		Expected: expected,
	}
	if fold {
		result.Operator = "equalsIgnoreKeyCase"
	}

	container, ok, err := e.Field(path)
	if err != nil {
		result.Err = err
		result.Message = err.Error()
		return result
	}
	obj, isObj := container.(*jsonvalue.Object)
	if !ok || !isObj {
		result.Message = fmt.Sprintf("expected an object at %s, got %s", path, jsonvalue.TypeName(container))
		return result
	}

	var actual any
	var found bool
	if fold {
		_, actual, found = obj.GetFold(key)
	} else {
		actual, found = obj.Get(key)
	}
	if !found {
		result.Message = fmt.Sprintf("key %q not found", key)
		return result
	}
	result.Actual = actual
	if s, isStr := actual.(string); !isStr || s != expected {
		result.Message = fmt.Sprintf("expected %q, got %s", expected, jsonvalue.Encode(actual))
		return result
	}
	result.Passed = true
	return result
}

// Schema validates the whole body against a JSON schema document.
func (e *Evaluator) Schema(name string, schema []byte) *Result {
	result := &Result{
		Subject:  "body",
		Operator: "schema",
		Expected: name,
	}
	e.decode()
	if !e.valid {
		result.Err = ErrBodyNotJSON
		result.Message = ErrBodyNotJSON.Error()
		return result
	}

	schemaLoader := gojsonschema.NewBytesLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(e.response.Body)

	validation, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		result.Err = fmt.Errorf("schema %s: %w", name, err)
		result.Message = fmt.Sprintf("schema validation error: %v", err)
		return result
	}

	if validation.Valid() {
		result.Passed = true
		return result
	}

	var errs []string
	for _, desc := range validation.Errors() {
		errs = append(errs, desc.String())
	}
	result.Actual = errs
	result.Message = fmt.Sprintf("schema validation failed: %s", strings.Join(errs, "; "))
	return result
}

// convertBracketNotation converts array bracket notation to gjson dot notation
// e.g., "[0].id" -> "0.id", "items[0].tags[1]" -> "items.0.tags.1"
func convertBracketNotation(path string) string {
	result := bracketIndex.ReplaceAllString(path, ".$1")
	return strings.TrimPrefix(result, ".")
}

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)
