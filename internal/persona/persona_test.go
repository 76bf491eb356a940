//
// Tencent is pleased to support the open source community by making moot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// moot is licensed under the Apache License Version 2.0.
//
//

package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKnownPersonas(t *testing.T) {
	for _, id := range []string{"assistant", "opposing_counsel", "judge", "witness", "mentor"} {
		p := Get(id)
		assert.Equal(t, id, p.ID)
		assert.NotEmpty(t, p.Instruction)
	}
}

func TestGetUnknownFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultID, Get("prosecutor").ID)
	assert.Equal(t, DefaultID, Get("").ID)
}

func TestListCoversRegistry(t *testing.T) {
	ids := List()
	assert.Len(t, ids, 5)
	assert.Contains(t, ids, DefaultID)
}

func TestFirstTurnMessage(t *testing.T) {
	cc := CaseContext{
		CaseType:      "contract dispute",
		Difficulty:    "advanced",
		Persona:       "judge",
		Description:   "Unconscionability challenge to an arbitration clause.",
		UploadedFiles: []string{"contract.pdf", "deposition.txt"},
	}
	msg := FirstTurnMessage(cc, "May it please the court.")

	require.Contains(t, msg, "contract dispute")
	require.Contains(t, msg, "advanced")
	require.Contains(t, msg, "arbitration clause")
	require.Contains(t, msg, "contract.pdf, deposition.txt")
	assert.True(t, len(msg) > len("May it please the court."))
	assert.Contains(t, msg, "May it please the court.")
}

func TestFirstTurnMessageEmptyContext(t *testing.T) {
	msg := FirstTurnMessage(CaseContext{}, "Hello")
	assert.Contains(t, msg, "Hello")
	assert.NotContains(t, msg, "Case type")
}
