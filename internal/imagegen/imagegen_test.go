package imagegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrompt(t *testing.T) {
	p := Prompt("  Perro Especial ")

	assert.Contains(t, p, `"Perro Especial"`)
	assert.Contains(t, p, "La Perrada de William")
}

func TestDataURI(t *testing.T) {
	assert.Equal(t, "data:image/jpeg;base64,aGk=", DataURI("image/jpeg", []byte("hi")))
	assert.Equal(t, "data:image/png;base64,aGk=", DataURI("", []byte("hi")))
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "imagen-4.0-fast-generate-001")

	assert.Error(t, err)
}
