package config

import (
	"fmt"

	"github.com/andyballingall/kvikk-fix/internal/validator"
)

const optionsSchemaID = "https://kvikk-fix.dev/schemas/prettierrc.schema.json"

// optionsSchema describes the options kvikk-fix understands. Unknown keys are
// allowed so plugin options pass through to a peer engine untouched.
var optionsSchema = `{
  "$schema": "` + string(validator.Draft2020_12) + `",
  "$id": "` + optionsSchemaID + `",
  "type": "object",
  "$defs": {
    "globs": {
      "oneOf": [
        {"type": "string"},
        {"type": "array", "items": {"type": "string"}}
      ]
    },
    "options": {
      "type": "object",
      "properties": {
        "arrowParens": {"enum": ["always", "avoid"]},
        "bracketSameLine": {"type": "boolean"},
        "bracketSpacing": {"type": "boolean"},
        "embeddedLanguageFormatting": {"enum": ["auto", "off"]},
        "endOfLine": {"enum": ["lf", "crlf", "cr", "auto"]},
        "experimentalTernaries": {"type": "boolean"},
        "htmlWhitespaceSensitivity": {"enum": ["css", "strict", "ignore"]},
        "insertPragma": {"type": "boolean"},
        "jsxBracketSameLine": {"type": "boolean"},
        "jsxSingleQuote": {"type": "boolean"},
        "parser": {"type": "string", "minLength": 1},
        "plugins": {"type": "array", "items": {"type": "string"}},
        "printWidth": {"type": "integer", "minimum": 0},
        "proseWrap": {"enum": ["always", "never", "preserve"]},
        "quoteProps": {"enum": ["as-needed", "consistent", "preserve"]},
        "rangeEnd": {"type": "integer", "minimum": 0},
        "rangeStart": {"type": "integer", "minimum": 0},
        "requirePragma": {"type": "boolean"},
        "semi": {"type": "boolean"},
        "singleAttributePerLine": {"type": "boolean"},
        "singleQuote": {"type": "boolean"},
        "tabWidth": {"type": "integer", "minimum": 0},
        "trailingComma": {"enum": ["all", "es5", "none"]},
        "useTabs": {"type": "boolean"},
        "vueIndentScriptAndStyle": {"type": "boolean"}
      }
    }
  },
  "allOf": [{"$ref": "#/$defs/options"}],
  "properties": {
    "overrides": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["files"],
        "properties": {
          "files": {"$ref": "#/$defs/globs"},
          "excludeFiles": {"$ref": "#/$defs/globs"},
          "options": {"$ref": "#/$defs/options"}
        }
      }
    }
  }
}`

// NewOptionsValidator compiles the embedded options schema.
func NewOptionsValidator(c validator.Compiler) (validator.Validator, error) {
	doc, err := validator.ParseJSON([]byte(optionsSchema))
	if err != nil {
		return nil, fmt.Errorf("options schema is not valid JSON: %w", err)
	}
	if err := c.AddSchema(optionsSchemaID, doc); err != nil {
		return nil, fmt.Errorf("options schema could not be added: %w", err)
	}
	return c.Compile(optionsSchemaID)
}
