package xsdalign_test

import (
	"fmt"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xa "github.com/reoring/xsdalign"
)

func TestIssues_ErrorSummary(t *testing.T) {
	var iss xa.Issues
	for i := 0; i < 5; i++ {
		iss = xa.AppendIssues(iss, xa.Issue{Path: fmt.Sprintf("A.b%d", i), Code: xa.CodeStructuralMismatch, Message: "expected element [x]"})
	}
	assert.Equal(t,
		"structural_mismatch at A.b0: expected element [x]; structural_mismatch at A.b1: expected element [x]; structural_mismatch at A.b2: expected element [x]; ... (total 5)",
		iss.Error())
	assert.Equal(t, "", xa.Issues{}.Error())
}

func TestAsIssues_ThroughWrapping(t *testing.T) {
	ctx := (&xa.ContextStack{}).Enter("Order", nil)
	err := errors.Wrap(xa.NewIssue(ctx, xa.CodeUnknownRoot, "missing [%s]", "Order"), "convert")

	iss, ok := xa.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "Order", iss[0].Path)
	assert.Equal(t, "missing [Order]", iss[0].Message)
	assert.True(t, xa.HasCode(err, xa.CodeUnknownRoot))
	assert.False(t, xa.HasCode(err, xa.CodeParseError))

	_, ok = xa.AsIssues(io.EOF)
	assert.False(t, ok)
}

func TestIssues_UnwrapCause(t *testing.T) {
	err := xa.Issues{{Code: xa.CodeParseError, Cause: io.ErrUnexpectedEOF}}
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
