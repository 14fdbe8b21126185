// Package schema validates inbound todo payloads against embedded JSON Schemas
// and decodes them into request models.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"todo-api/internal/models"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const baseURL = "https://todo-api.local/schemas/"

var (
	compileOnce  sync.Once
	createSchema *jsonschema.Schema
	updateSchema *jsonschema.Schema
	compileErr   error
)

func compile() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		for _, name := range []string{"create.json", "update.json"} {
			data, err := schemaFS.ReadFile("schemas/" + name)
			if err != nil {
				compileErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(baseURL+name, bytes.NewReader(data)); err != nil {
				compileErr = fmt.Errorf("add schema %s: %w", name, err)
				return
			}
		}
		if createSchema, compileErr = compiler.Compile(baseURL + "create.json"); compileErr != nil {
			compileErr = fmt.Errorf("compile create schema: %w", compileErr)
			return
		}
		if updateSchema, compileErr = compiler.Compile(baseURL + "update.json"); compileErr != nil {
			compileErr = fmt.Errorf("compile update schema: %w", compileErr)
		}
	})
	return compileErr
}

// DecodeCreate validates body and returns the create request.
// Missing fields take their defaults: description null, completed false.
func DecodeCreate(body []byte) (models.CreateRequest, error) {
	var req models.CreateRequest
	if err := compile(); err != nil {
		return req, err
	}
	if err := validate(createSchema, body); err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, jsonDecodeError(err)
	}
	return req, nil
}

// DecodeUpdate validates body and returns the update request with presence
// information for every field.
func DecodeUpdate(body []byte) (models.UpdateRequest, error) {
	var req models.UpdateRequest
	if err := compile(); err != nil {
		return req, err
	}
	if err := validate(updateSchema, body); err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, jsonDecodeError(err)
	}
	return req, nil
}

func validate(s *jsonschema.Schema, body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return jsonDecodeError(err)
	}
	err := s.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return NewFieldError([]string{"body"}, err.Error(), "value_error")
	}
	out := &ValidationError{}
	collectLeaves(ve, out)
	if len(out.Fields) == 0 {
		out.Fields = append(out.Fields, FieldError{Loc: []string{"body"}, Msg: ve.Message, Type: "value_error"})
	}
	return out
}

// collectLeaves walks the validator's error tree; only leaves name a concrete failure.
func collectLeaves(err *jsonschema.ValidationError, out *ValidationError) {
	if len(err.Causes) > 0 {
		for _, cause := range err.Causes {
			collectLeaves(cause, out)
		}
		return
	}

	keyword := lastSegment(err.KeywordLocation)
	loc := append([]string{"body"}, pointerSegments(err.InstanceLocation)...)

	switch keyword {
	case "required":
		for _, name := range missingProperties(err.Message) {
			out.Fields = append(out.Fields, FieldError{
				Loc:  append(append([]string{}, loc...), name),
				Msg:  "Field required",
				Type: "missing",
			})
		}
	case "minLength":
		out.Fields = append(out.Fields, FieldError{Loc: loc, Msg: "String should have at least 1 character", Type: "string_too_short"})
	case "type":
		msg, typ := typeMismatch(err.Message)
		out.Fields = append(out.Fields, FieldError{Loc: loc, Msg: msg, Type: typ})
	default:
		out.Fields = append(out.Fields, FieldError{Loc: loc, Msg: err.Message, Type: "value_error"})
	}
}

var typeErrors = map[string]FieldError{
	"string":  {Msg: "Input should be a valid string", Type: "string_type"},
	"boolean": {Msg: "Input should be a valid boolean", Type: "bool_type"},
	"integer": {Msg: "Input should be a valid integer", Type: "int_type"},
	"object":  {Msg: "Input should be a valid dictionary or object to extract fields from", Type: "model_attributes_type"},
}

// typeMismatch maps "expected string or null, but got number" to the message
// and type of the first expected JSON type.
func typeMismatch(msg string) (string, string) {
	rest, ok := strings.CutPrefix(msg, "expected ")
	if !ok {
		return msg, "type_error"
	}
	expected, _, _ := strings.Cut(rest, ",")
	expected, _, _ = strings.Cut(expected, " ")
	if fe, ok := typeErrors[expected]; ok {
		return fe.Msg, fe.Type
	}
	return msg, "type_error"
}

func lastSegment(ptr string) string {
	if i := strings.LastIndex(ptr, "/"); i >= 0 {
		return ptr[i+1:]
	}
	return ptr
}

func pointerSegments(ptr string) []string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return nil
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return parts
}

// missingProperties extracts the names from "missing properties: 'a', 'b'".
func missingProperties(msg string) []string {
	if i := strings.Index(msg, ":"); i >= 0 {
		msg = msg[i+1:]
	}
	var names []string
	for _, raw := range strings.Split(msg, ",") {
		name := strings.Trim(strings.TrimSpace(raw), `'"`)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
