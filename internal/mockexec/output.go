package mockexec

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// NoOutput is the console text for a run that printed nothing.
const NoOutput = "Program executed successfully (no output)"

// CalcError replaces the result of an arithmetic print that cannot be evaluated.
const CalcError = "Error in calculation"

var (
	rePrintLiteral = regexp.MustCompile(`print\s*\(\s*(?:'(.*?)'|"(.*?)")\s*\)`)
	rePrintCalc    = regexp.MustCompile(`print\s*\(\s*(\d+)\s*([+\-*/])\s*(\d+)\s*\)`)
	rePrintName    = regexp.MustCompile(`print\s*\(\s*(\w+)\s*\)`)
)

// Output is the pure part of a mock run: the console text the program would
// print. Only three print shapes are understood; every other line is silent.
func Output(src string) string {
	var out []string
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if text, ok := printLine(trimmed, src); ok {
			out = append(out, text)
		}
	}
	if len(out) == 0 {
		return NoOutput
	}
	return strings.Join(out, "\n")
}

func printLine(line, src string) (string, bool) {
	if m := rePrintLiteral.FindStringSubmatchIndex(line); m != nil {
		// exactly one of the two quote groups participated
		if m[2] >= 0 {
			return line[m[2]:m[3]], true
		}
		return line[m[4]:m[5]], true
	}
	if m := rePrintCalc.FindStringSubmatch(line); m != nil {
		return calculate(m[1], m[2], m[3]), true
	}
	if m := rePrintName.FindStringSubmatch(line); m != nil {
		return lookupAssignment(src, m[1]), true
	}
	return "", false
}

// calculate evaluates "a op b" exactly. Integral results print as plain
// digits, fractions as the shortest float64 text.
func calculate(lhs, op, rhs string) string {
	a, okA := new(big.Rat).SetString(lhs)
	b, okB := new(big.Rat).SetString(rhs)
	if !okA || !okB {
		return CalcError
	}
	res := new(big.Rat)
	switch op {
	case "+":
		res.Add(a, b)
	case "-":
		res.Sub(a, b)
	case "*":
		res.Mul(a, b)
	case "/":
		if b.Sign() == 0 {
			// Python raises ZeroDivisionError here, so there is no inf or nan result
			return CalcError
		}
		res.Quo(a, b)
	default:
		return CalcError
	}
	if res.IsInt() {
		return res.Num().String()
	}
	f, _ := res.Float64()
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// lookupAssignment finds the last textual assignment of name anywhere in src.
// The name is not anchored on the left, so print(x) also picks up "max = 3".
func lookupAssignment(src, name string) string {
	quoted := name + `\s*=\s*(?:'(.*?)'|"(.*?)")`
	number := name + `\s*=\s*(\d+)`
	pattern := regexp.MustCompile(`(?:` + quoted + `)|(?:` + number + `)`)

	matches := pattern.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return name + " = <variable value>"
	}
	m := matches[len(matches)-1]
	for g := 1; g <= 3; g++ {
		if m[2*g] >= 0 {
			return src[m[2*g]:m[2*g+1]]
		}
	}
	return name + " = <variable value>"
}
