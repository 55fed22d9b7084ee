package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	p := NewRuntimeVarProvider("")

	v, err := p.Secret(context.Background(), "OPENAI_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", v)

	_, err = p.Secret(context.Background(), "SURELY_NOT_SET_ANYWHERE")
	assert.Error(t, err)
}

func TestSecretFromRuntimeVar(t *testing.T) {
	p := NewRuntimeVarProvider("constant://?val=value-of-%s&decoder=string")

	v, err := p.Secret(context.Background(), "COHERE_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "value-of-COHERE_API_KEY", v)
}

func TestSecretEmptyName(t *testing.T) {
	_, err := NewRuntimeVarProvider("").Secret(context.Background(), "")
	assert.Error(t, err)
}
