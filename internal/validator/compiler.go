// Package validator provides interfaces and types for JSON Schema validation.
package validator

// Draft represents a JSON Schema draft version.
type Draft string

// Draft2020_12 represents JSON Schema Draft 2020-12, the draft of the options
// schema.
const Draft2020_12 Draft = "https://json-schema.org/draft/2020-12/schema"

// A JSONDocument is a parsed JSON document in the shape produced by ToDocument.
type JSONDocument interface{}

// A JSONSchema is a parsed JSON Document representing a JSON Schema.
// Note that a Compiler must compile the JSONSchema before use which will identify any JSON Schema issues.
type JSONSchema JSONDocument

// Validator represents something which can be used to validate a JSON document.
type Validator interface {
	// Validate validates JSON document.
	Validate(v JSONDocument) error
}

// Compiler defines a JSON Schema compiler. A schema must be registered with
// AddSchema before it can be compiled.
type Compiler interface {
	// AddSchema registers a JSONSchema with the compiler.
	// An error is produced if the JSONSchema cannot be added.
	AddSchema(id string, data JSONSchema) error

	// Compile creates a Validator from the JSONSchema previously added with the given ID.
	// An error is produced if the JSONSchema cannot be compiled.
	Compile(id string) (Validator, error)
}
