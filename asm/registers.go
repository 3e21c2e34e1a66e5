package asm

import (
	"fmt"
	"strconv"
	"strings"
)

var regNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

var regNumbers = func() map[string]int {
	m := make(map[string]int, len(regNames)+1)
	for i, n := range regNames {
		m[n] = i
	}
	m["s8"] = 30
	return m
}()

// RegisterNumber parses a register operand such as "$t0" or "$8". Numbers
// are not bounded here; the tracker decides what is in range.
func RegisterNumber(s string) (int, error) {
	if !strings.HasPrefix(s, "$") || len(s) < 2 {
		return 0, fmt.Errorf("%w: register %q must start with $", ErrSyntax, s)
	}

	name := strings.ToLower(s[1:])
	if n, ok := regNumbers[name]; ok {
		return n, nil
	}

	n, err := strconv.Atoi(name)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: unknown register %q", ErrSyntax, s)
	}

	return n, nil
}

// RegisterName returns the conventional name of register n, or its number
// for registers outside the MIPS file.
func RegisterName(n int) string {
	if n >= 0 && n < len(regNames) {
		return "$" + regNames[n]
	}
	return fmt.Sprintf("$%d", n)
}
