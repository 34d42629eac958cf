package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror the JSON decoded schema shape
		"required": []any{"x"},
	}

	// Success
	err := ValidateParameters(map[string]any{"x": 5}, schema)
	assert.NoError(t, err)

	// Missing required
	err = ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Equal(t, "x", vErr.Field)
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	// Wrong type
	err = ValidateParameters(map[string]any{"x": "not-int"}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Contains(t, vErr.Message, "expected type integer")
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestValidateParametersStringRequired(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
		"required": []string{"name"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"name": "db-primary"}, schema))
	assert.Error(t, ValidateParameters(map[string]any{}, schema))
}

func TestValidateParametersExtraFieldsAllowed(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
	assert.NoError(t, ValidateParameters(map[string]any{"anything": 1}, schema))
}

func TestIsValidType(t *testing.T) {
	assert.True(t, isValidType("s", "string"))
	assert.False(t, isValidType(1, "string"))

	assert.True(t, isValidType(5, "integer"))
	assert.True(t, isValidType(5.0, "integer")) // JSON numbers decode as float64
	assert.False(t, isValidType(5.5, "integer"))

	assert.True(t, isValidType(5.5, "number"))
	assert.True(t, isValidType(true, "boolean"))

	assert.True(t, isValidType([]any{"a"}, "array"))
	assert.True(t, isValidType([]string{"a"}, "array"))
	assert.False(t, isValidType("a", "array"))

	assert.True(t, isValidType(map[string]any{}, "object"))

	// nil and unknown schema types are permissive
	assert.True(t, isValidType(nil, "string"))
	assert.True(t, isValidType("x", "anything"))
}
