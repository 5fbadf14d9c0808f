package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runProgram runs source to completion and returns its exit code (the
// value main returned or passed to exit, or 0 if main ended without
// returning a value) plus anything written to stdout.
func runProgram(t *testing.T, source string) (int, string) {
	t.Helper()
	var out bytes.Buffer
	in := New(WithInput(strings.NewReader(source)), WithOutput(&out))
	err := in.Run(context.Background())
	if err == nil {
		return 0, out.String()
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code, out.String()
	}
	require.NoError(t, err)
	return -1, out.String()
}

func TestArithmeticExitCode(t *testing.T) {
	code, _ := runProgram(t, `int main() { return 3 + 4; }`)
	assert.Equal(t, 7, code)
}

func TestFibonacci(t *testing.T) {
	src := `
int fib(int n) {
	if (n < 2) return n;
	return fib(n - 1) + fib(n - 2);
}
int main() { return fib(10); }
`
	code, _ := runProgram(t, src)
	assert.Equal(t, 55, code)
}

func TestArraySum(t *testing.T) {
	src := `
int main() {
	int a[5];
	int i;
	int sum;
	sum = 0;
	for (i = 0; i < 5; i = i + 1) {
		a[i] = i + 1;
	}
	for (i = 0; i < 5; i = i + 1) {
		sum = sum + a[i];
	}
	return sum;
}
`
	code, _ := runProgram(t, src)
	assert.Equal(t, 15, code)
}

func TestMacroSquare(t *testing.T) {
	src := `
#define SQ(x) ((x) * (x))
int main() { return SQ(7); }
`
	code, _ := runProgram(t, src)
	assert.Equal(t, 49, code)
}

func TestGotoLoop(t *testing.T) {
	src := `
int main() {
	int i;
	i = 0;
loop:
	i = i + 1;
	if (i < 3) goto loop;
	return i;
}
`
	code, _ := runProgram(t, src)
	assert.Equal(t, 3, code)
}

func TestSwitchCase(t *testing.T) {
	src := `
int main() {
	int x;
	x = 2;
	switch (x) {
	case 1:
		return 1;
	case 2:
		return 2;
	default:
		return 0;
	}
	return -1;
}
`
	code, _ := runProgram(t, src)
	assert.Equal(t, 2, code)
}

func TestPointerArrayEquivalence(t *testing.T) {
	src := `
int main() {
	int a[3];
	int *p;
	a[0] = 10;
	a[1] = 20;
	a[2] = 30;
	p = a;
	if (a[1] != *(p + 1)) return 1;
	return 0;
}
`
	code, _ := runProgram(t, src)
	assert.Equal(t, 0, code)
}

func TestStructFieldAccess(t *testing.T) {
	src := `
struct point { int x; int y; };
int main() {
	struct point p;
	p.x = 3;
	p.y = 4;
	return p.x + p.y;
}
`
	code, _ := runProgram(t, src)
	assert.Equal(t, 7, code)
}
