package surface

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// shapeSchema is the minimum an agent reply must satisfy to be read as an
// envelope. Text resembling an envelope that fails it is prose.
const shapeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["action", "surfaceId"],
  "properties": {
    "action": {"type": "string", "minLength": 1},
    "surfaceId": {"type": "string", "minLength": 1}
  }
}`

// EnvelopeSchema is the full outbound contract, used by agents to check what
// they send.
const EnvelopeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["action", "surfaceId", "surfaceType", "data"],
  "properties": {
    "action": {"enum": ["beginRendering", "surfaceUpdate", "dataModelUpdate", "deleteSurface"]},
    "surfaceId": {"type": "string", "minLength": 1},
    "surfaceType": {"type": "string"},
    "data": {}
  }
}`

var (
	shapeOnce sync.Once
	shape     *jsonschema.Schema
	shapeErr  error
)

// CompileSchema compiles a JSON Schema document registered under url.
func CompileSchema(url, doc string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(url, strings.NewReader(doc)); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

func shapeValidator() (*jsonschema.Schema, error) {
	shapeOnce.Do(func() {
		shape, shapeErr = CompileSchema("https://showroom.local/schemas/envelope-shape.json", shapeSchema)
	})
	return shape, shapeErr
}

// Detect decides whether raw agent text is a protocol envelope. It parses
// first, then checks shape; failure at either stage means prose.
func Detect(text string) (Envelope, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return Envelope{}, false
	}

	// Stage 1: parse.
	var doc any
	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Envelope{}, false
	}
	if dec.More() {
		return Envelope{}, false
	}

	// Stage 2: shape.
	v, err := shapeValidator()
	if err != nil {
		return Envelope{}, false
	}
	if err := v.Validate(doc); err != nil {
		return Envelope{}, false
	}

	var env Envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		// surfaceType may be a non-string; keep what we can.
		var loose struct {
			Action    Action          `json:"action"`
			SurfaceID string          `json:"surfaceId"`
			Data      json.RawMessage `json:"data"`
		}
		if json.Unmarshal([]byte(trimmed), &loose) != nil {
			return Envelope{}, false
		}
		env = Envelope{Action: loose.Action, SurfaceID: loose.SurfaceID, Data: loose.Data}
	}
	return env, true
}
