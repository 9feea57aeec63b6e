package jsonx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare JSON object",
			text: `{"name": "Ada", "age": 36}`,
			want: `{"name": "Ada", "age": 36}`,
		},
		{
			name: "bare JSON array",
			text: `[1, 2, 3]`,
			want: `[1, 2, 3]`,
		},
		{
			name: "surrounding whitespace",
			text: "\n\t {\"ok\": true} \n",
			want: `{"ok": true}`,
		},
		{
			name: "fenced json block",
			text: "Here is the data you asked for:\n```json\n{\"name\": \"Ada\"}\n```\nLet me know if you need more.",
			want: `{"name": "Ada"}`,
		},
		{
			name: "fenced block without language tag",
			text: "Sure:\n```\n{\"count\": 2}\n```",
			want: `{"count": 2}`,
		},
		{
			name: "second fence holds the JSON",
			text: "```\nnot json at all\n```\nand then\n```json\n{\"valid\": true}\n```",
			want: `{"valid": true}`,
		},
		{
			name: "object buried in prose",
			text: `The result is {"status": "done", "items": [1, 2]} as requested.`,
			want: `{"status": "done", "items": [1, 2]}`,
		},
		{
			name: "nested object",
			text: `Answer: {"outer": {"inner": {"deep": 1}}} end.`,
			want: `{"outer": {"inner": {"deep": 1}}}`,
		},
		{
			name: "braces inside strings",
			text: `Got {"text": "use {curly} braces", "n": 1} back.`,
			want: `{"text": "use {curly} braces", "n": 1}`,
		},
		{
			name: "escaped quote inside string",
			text: `Result {"quote": "she said \"hi\"", "ok": true} done.`,
			want: `{"quote": "she said \"hi\"", "ok": true}`,
		},
		{
			name: "false start before real object",
			text: `if x { return } but the data is {"real": true} here`,
			want: `{"real": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Extract(tt.text)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(doc))
		})
	}
}

func TestExtract_NoDocument(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty text", text: ""},
		{name: "whitespace only", text: "  \n\t "},
		{name: "plain prose", text: "I could not produce any structured output."},
		{name: "unclosed object", text: `here is a start {"name": "Ada" but it never closes`},
		{name: "fence without JSON", text: "```\njust some code\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.text)
			require.ErrorIs(t, err, ErrNoDocument)
		})
	}
}

func TestCompileSchema(t *testing.T) {
	schema, err := CompileSchema([]byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "integer"}
		},
		"required": ["name"]
	}`))
	require.NoError(t, err)
	require.NotNil(t, schema)
}

func TestCompileSchema_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not JSON", raw: `{"type": "object"`},
		{name: "wrong shape", raw: `{"type": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileSchema([]byte(tt.raw))
			require.Error(t, err)
		})
	}
}

func TestSchema_Validate(t *testing.T) {
	schema, err := CompileSchema([]byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "integer"}
		},
		"required": ["name"]
	}`))
	require.NoError(t, err)

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "valid document", doc: `{"name": "Ada", "age": 36}`, wantErr: false},
		{name: "optional field omitted", doc: `{"name": "Ada"}`, wantErr: false},
		{name: "missing required field", doc: `{"age": 36}`, wantErr: true},
		{name: "wrong type", doc: `{"name": "Ada", "age": "old"}`, wantErr: true},
		{name: "not an object", doc: `[1, 2, 3]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate(json.RawMessage(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
