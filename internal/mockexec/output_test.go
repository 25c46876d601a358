package mockexec

import "testing"

func TestOutput(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"double quoted literal", `print("Hello, World!")`, "Hello, World!"},
		{"single quoted literal", "print('hi')", "hi"},
		{"no prints", "x = 1\n", NoOutput},
		{"empty", "", NoOutput},
		{"addition", "print(2 + 3)", "5"},
		{"subtraction", "print(2 - 3)", "-1"},
		{"product", "print(6*7)", "42"},
		{"exact division", "print(10 / 2)", "5"},
		{"fractional division", "print(7 / 2)", "3.5"},
		{"repeating fraction", "print(1 / 3)", "0.3333333333333333"},
		{"division by zero", "print(1 / 0)", CalcError},
		{"zero by zero", "print(0 / 0)", CalcError},
		{"large operands", "print(99999999999999999999 + 1)", "100000000000000000000"},
		{"string variable", "name = 'Ada'\nprint(name)", "Ada"},
		{"number variable", "count = 42\nprint(count)", "42"},
		{"assignment after print", "print(name)\nname = \"late\"", "late"},
		{"last assignment wins", "x = 1\nx = 'two'\nprint(x)", "two"},
		{"unknown variable", "print(score)", "score = <variable value>"},
		{"indented", "def f():\n    print('inner')", "inner"},
		{"several lines", "print('a')\nx = 3\nprint(x)\nprint(1 + 1)", "a\n3\n2"},
		{"expression is silent", "print(len(items))", NoOutput},
		{"unanchored name", "max = 3\nprint(x)", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Output(tt.src); got != tt.want {
				t.Fatalf("Output(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}
