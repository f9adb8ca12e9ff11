package smt

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprBuilders(t *testing.T) {
	a, b := Atom("|x|"), Numeral(3)
	assert.Equal(t, Expr("(+ |x| 3)"), Plus(a, b))
	assert.Equal(t, Expr("(ite (> |x| 3) |x| 3)"), Ite(Gt(a, b), a, b))
	assert.Equal(t, Expr("(not (= |x| 3))"), Not(Eq(a, b)))
	assert.Equal(t, Expr("(and (>= |x| 3) (<= |x| 3))"), And(Gte(a, b), Lte(a, b)))
}

func TestTokenize(t *testing.T) {
	toks := tokenize("(define-fun |let@param0| () Int 4)")
	assert.Equal(t, []string{"(", "define-fun", "|let@param0|", "(", ")", "Int", "4", ")"}, toks)
}

func TestParseSExprAndEvalNumeric(t *testing.T) {
	v, err := parseSExpr("((define-fun |x| () Int (- 2)) (define-fun |y| () Int 5))")
	require.NoError(t, err)

	list, ok := v.([]any)
	require.True(t, ok)
	require.Len(t, list, 2)

	xEntry := list[0].([]any)
	xVal, err := evalNumeric(xEntry[4])
	require.NoError(t, err)
	assert.Equal(t, int64(-2), xVal)

	yEntry := list[1].([]any)
	yVal, err := evalNumeric(yEntry[4])
	require.NoError(t, err)
	assert.Equal(t, int64(5), yVal)
}

func TestParseSExprTrailingTokensIsError(t *testing.T) {
	_, err := parseSExpr("(a) (b)")
	assert.Error(t, err)
}

// TestContextAgainstFakeSolver drives a Context against a tiny shell script
// that speaks just enough of the protocol to exercise CheckSat/GetModel/
// Replay end to end, skipping if no POSIX shell is available.
func TestContextAgainstFakeSolver(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no POSIX shell on PATH")
	}

	script := filepath.Join(t.TempDir(), "fakesolver.sh")
	body := "#!/bin/sh\n" +
		"while read -r line; do\n" +
		"  case \"$line\" in\n" +
		"    *check-sat*) echo sat ;;\n" +
		"    *get-model*) echo '((define-fun |let@param0| () Int 7))' ;;\n" +
		"  esac\n" +
		"done\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	var replay bytes.Buffer
	c, err := NewContext(sh, []string{script})
	require.NoError(t, err)
	c.Replay = &replay
	defer c.Close()

	e, err := c.DeclareConst("let@param0")
	require.NoError(t, err)
	require.NoError(t, c.Assert(Gte(e, Numeral(0))))

	sat, err := c.CheckSat()
	require.NoError(t, err)
	assert.True(t, sat)

	model, err := c.GetModel()
	require.NoError(t, err)
	assert.Equal(t, int64(7), model["let@param0"])

	assert.Contains(t, replay.String(), "declare-const")
}
