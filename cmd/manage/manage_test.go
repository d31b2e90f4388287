package main

import (
	"bytes"
	"testing"

	"kvartal/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintProducts(t *testing.T) {
	var buf bytes.Buffer
	err := printProducts(&buf, []models.Product{{
		ID:       3,
		Name:     "Teapot",
		Category: models.Category{Name: "Kitchen"},
		Price:    decimal.RequireFromString("12.5"),
	}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "PRICE")
	assert.Contains(t, out, "Teapot")
	assert.Contains(t, out, "Kitchen")
	assert.Contains(t, out, "12.50")
}

func TestPrintCategories(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printCategories(&buf, []models.Category{{ID: 1, Name: "Books", Description: "paper"}}))
	assert.Regexp(t, `1\s+Books\s+paper`, buf.String())
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"migrate"},
		{"category", "create"},
		{"category", "list"},
		{"product", "create"},
		{"product", "list"},
		{"user", "list"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
