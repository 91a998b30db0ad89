package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateText(t *testing.T) {
	var out bytes.Buffer
	passed, err := validate(&out, "text")
	require.NoError(t, err)
	assert.True(t, passed)
	assert.Contains(t, out.String(), "Sukabumi 2026-02-18")
	assert.Contains(t, out.String(), "All cases within tolerance")
	assert.NotContains(t, out.String(), "✗")
}

func TestValidateJSON(t *testing.T) {
	var out bytes.Buffer
	passed, err := validate(&out, "json")
	require.NoError(t, err)
	assert.True(t, passed)

	var s struct {
		Passed bool `json:"passed"`
		Stats  []struct {
			Quantity string `json:"quantity"`
			Count    int    `json:"count"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &s))
	assert.True(t, s.Passed)
	require.NotEmpty(t, s.Stats)
	assert.Equal(t, "age_hours", s.Stats[0].Quantity)
	assert.Equal(t, 6, s.Stats[0].Count)
}
