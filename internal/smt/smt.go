// Package smt is a minimal SMT-LIB2 stdio client for a Z3-class solver
// (spec §6 "SMT interface", §5 "subprocess handles ... owned by the
// respective pass object and released on drop"). No corpus dependency
// speaks this wire protocol (see DESIGN.md §B.1) — this is a deliberately
// small hand-rolled client scoped to exactly the commands the scheduler
// needs: `declare-const`, `assert`, `push`/`pop`, `minimize`,
// `check-sat`, `get-model`.
package smt

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// Expr is a rendered SMT-LIB2 s-expression. Unlike the interned Expr/Prop
// algebra in internal/ir, these are built once per solver query and never
// re-walked structurally, so a plain string is the right representation —
// no interning benefit to buy here.
type Expr string

func Numeral(n int64) Expr   { return Expr(strconv.FormatInt(n, 10)) }
func Atom(name string) Expr  { return Expr(name) }
func binary(op string, a, b Expr) Expr {
	return Expr(fmt.Sprintf("(%s %s %s)", op, a, b))
}

func Plus(a, b Expr) Expr  { return binary("+", a, b) }
func Sub(a, b Expr) Expr   { return binary("-", a, b) }
func Times(a, b Expr) Expr { return binary("*", a, b) }
func Div(a, b Expr) Expr   { return binary("div", a, b) }
func Mod(a, b Expr) Expr   { return binary("mod", a, b) }
func Gt(a, b Expr) Expr    { return binary(">", a, b) }
func Gte(a, b Expr) Expr   { return binary(">=", a, b) }
func Lte(a, b Expr) Expr   { return binary("<=", a, b) }
func Eq(a, b Expr) Expr    { return binary("=", a, b) }
func And(a, b Expr) Expr   { return binary("and", a, b) }
func Or(a, b Expr) Expr    { return binary("or", a, b) }
func Imp(a, b Expr) Expr   { return binary("=>", a, b) }
func Not(a Expr) Expr      { return Expr(fmt.Sprintf("(not %s)", a)) }
func Ite(c, t, e Expr) Expr {
	return Expr(fmt.Sprintf("(ite %s %s %s)", c, t, e))
}

// Context is one solver subprocess session. One Context is opened per
// scheduled component (spec §5: "pushes/pops a single assertion scope per
// component") and closed before moving to the next.
type Context struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	// Replay optionally mirrors every command sent to the solver, for
	// config.Options.ReplayFile (spec_full §A.2).
	Replay io.Writer
}

// NewContext spawns path with args (e.g. "z3", ["-smt2", "-in"]) and
// enables model production; it sends no set-logic, so the solver's default
// logic applies.
func NewContext(path string, args []string) (*Context, error) {
	cmd := exec.Command(path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	c := &Context{cmd: cmd, stdin: stdin, stdout: bufio.NewReader(stdout)}
	if err := c.send("(set-option :produce-models true)"); err != nil {
		return nil, err
	}
	return c, nil
}

// Close tears down the solver subprocess (spec §5: "released on drop").
func (c *Context) Close() error {
	c.stdin.Close()
	return c.cmd.Wait()
}

func (c *Context) send(line string) error {
	if c.Replay != nil {
		fmt.Fprintln(c.Replay, line)
	}
	_, err := fmt.Fprintln(c.stdin, line)
	return err
}

// readToken reads one balanced s-expression (or bare atom) from stdout,
// skipping leading whitespace — enough to parse `success`, `sat`/`unsat`,
// and a get-model response without a general SMT-LIB parser.
func (c *Context) readToken() (string, error) {
	var b strings.Builder
	depth := 0
	started := false
	for {
		r, _, err := c.stdout.ReadRune()
		if err != nil {
			return "", err
		}
		if !started {
			if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
				continue
			}
			started = true
		}
		b.WriteRune(r)
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return b.String(), nil
			}
		default:
			if depth == 0 && (r == ' ' || r == '\n' || r == '\t' || r == '\r') {
				s := b.String()
				return strings.TrimSpace(s), nil
			}
		}
	}
}

// Push opens a new assertion scope.
func (c *Context) Push() error { return c.send("(push 1)") }

// Pop closes the innermost assertion scope.
func (c *Context) Pop() error { return c.send("(pop 1)") }

// DeclareConst declares name as an Int constant and returns an Expr
// referring to it.
func (c *Context) DeclareConst(name string) (Expr, error) {
	if err := c.send(fmt.Sprintf("(declare-const |%s| Int)", name)); err != nil {
		return "", err
	}
	return Expr("|" + name + "|"), nil
}

// Assert sends a hard constraint.
func (c *Context) Assert(e Expr) error {
	return c.send(fmt.Sprintf("(assert %s)", e))
}

// Minimize registers e as the objective to minimize (spec §4.H "`minimize`
// is used", the one feature requiring a Z3-class solver over a plain
// SMT-LIB solver).
func (c *Context) Minimize(e Expr) error {
	return c.send(fmt.Sprintf("(minimize %s)", e))
}

// CheckSat issues check-sat and reports whether the result was sat (spec
// §7: "unsat ... classif[ies] as a fatal internal error").
func (c *Context) CheckSat() (bool, error) {
	if err := c.send("(check-sat)"); err != nil {
		return false, err
	}
	tok, err := c.readToken()
	if err != nil {
		return false, err
	}
	switch tok {
	case "sat":
		return true, nil
	case "unsat", "unknown":
		return false, nil
	default:
		return false, fmt.Errorf("smt: unexpected check-sat response %q", tok)
	}
}

// GetModel requests the model and returns every `(define-fun <name> () Int
// <value>)` binding (spec §6 "SMT interface"), keyed by the declared name
// stripped of its `|...|` quoting.
func (c *Context) GetModel() (map[string]int64, error) {
	if err := c.send("(get-model)"); err != nil {
		return nil, err
	}
	raw, err := c.readToken()
	if err != nil {
		return nil, err
	}
	terms, err := parseSExpr(raw)
	if err != nil {
		return nil, err
	}
	list, ok := terms.([]any)
	if !ok {
		return nil, fmt.Errorf("smt: get-model response was not a list")
	}
	out := make(map[string]int64)
	for _, t := range list {
		entry, ok := t.([]any)
		if !ok || len(entry) < 5 {
			continue
		}
		head, _ := entry[0].(string)
		if head != "define-fun" {
			continue
		}
		name, _ := entry[1].(string)
		name = strings.Trim(name, "|")
		val, err := evalNumeric(entry[4])
		if err != nil {
			return nil, err
		}
		out[name] = val
	}
	return out, nil
}

// evalNumeric folds the small arithmetic shapes a Z3 model can return for
// an Int value: a bare numeral, or `(- n)` for a negative one.
func evalNumeric(t any) (int64, error) {
	switch v := t.(type) {
	case string:
		return strconv.ParseInt(v, 10, 64)
	case []any:
		if len(v) == 2 {
			if op, _ := v[0].(string); op == "-" {
				n, err := evalNumeric(v[1])
				if err != nil {
					return 0, err
				}
				return -n, nil
			}
		}
	}
	return 0, fmt.Errorf("smt: could not evaluate model value %v", t)
}

// parseSExpr parses one balanced s-expression into nested []any (atoms as
// string, lists as []any) — just enough structure for GetModel to walk.
func parseSExpr(s string) (any, error) {
	toks := tokenize(s)
	v, rest, err := parseTokens(toks)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("smt: trailing tokens after s-expression: %v", rest)
	}
	return v, nil
}

func tokenize(s string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	inBar := false
	for _, r := range s {
		if inBar {
			cur.WriteRune(r)
			if r == '|' {
				inBar = false
			}
			continue
		}
		switch r {
		case '|':
			inBar = true
			cur.WriteRune(r)
		case '(', ')':
			flush()
			toks = append(toks, string(r))
		case ' ', '\n', '\t', '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

func parseTokens(toks []string) (any, []string, error) {
	if len(toks) == 0 {
		return nil, nil, fmt.Errorf("smt: unexpected end of s-expression")
	}
	head, rest := toks[0], toks[1:]
	if head != "(" {
		return head, rest, nil
	}
	var list []any
	for {
		if len(rest) == 0 {
			return nil, nil, fmt.Errorf("smt: unterminated list")
		}
		if rest[0] == ")" {
			return list, rest[1:], nil
		}
		var v any
		var err error
		v, rest, err = parseTokens(rest)
		if err != nil {
			return nil, nil, err
		}
		list = append(list, v)
	}
}
