package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func execute(args ...string) error {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	return Execute(context.Background())
}

func TestRankRejectsBadArguments(t *testing.T) {
	err := execute("rank", "company", uuid.NewString())
	assert.ErrorContains(t, err, "unknown anchor kind")

	err = execute("rank", "job", "not-a-uuid")
	assert.ErrorContains(t, err, "invalid id")

	assert.Error(t, execute("rank", "job"))
}

func TestReembedRejectsUnknownKind(t *testing.T) {
	err := execute("reembed", "--kind", "teams")
	assert.ErrorContains(t, err, "unknown kind")
}
