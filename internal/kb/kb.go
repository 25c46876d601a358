// Package kb is the static knowledge base of Python error kinds: a definition,
// cause, solution and a before/after example for each. It is built once from a
// literal table and never mutated.
package kb

// Kind names an error category. It classifies a diagnostic and is the lookup
// key into the knowledge base.
type Kind string

const (
	SyntaxError         Kind = "SyntaxError"
	IndentationError    Kind = "IndentationError"
	NameError           Kind = "NameError"
	TypeError           Kind = "TypeError"
	ValueError          Kind = "ValueError"
	IndexError          Kind = "IndexError"
	KeyError            Kind = "KeyError"
	ZeroDivisionError   Kind = "ZeroDivisionError"
	AttributeError      Kind = "AttributeError"
	ImportError         Kind = "ImportError"
	ModuleNotFoundError Kind = "ModuleNotFoundError"
	FileNotFoundError   Kind = "FileNotFoundError"
	RuntimeError        Kind = "RuntimeError"
	RecursionError      Kind = "RecursionError"
	AssertionError      Kind = "AssertionError"
	UnboundLocalError   Kind = "UnboundLocalError"
	IsADirectoryError   Kind = "IsADirectoryError"
	PermissionError     Kind = "PermissionError"
	EOFError            Kind = "EOFError"
	FloatingPointError  Kind = "FloatingPointError"
)

func (k Kind) String() string { return string(k) }

// Info is the explanatory card for one kind. Example fields keep their
// embedded line breaks for display.
type Info struct {
	Definition    string `json:"definition"`
	Cause         string `json:"cause"`
	Solution      string `json:"solution"`
	ExampleBefore string `json:"example_before"`
	ExampleAfter  string `json:"example_after"`
}

type entry struct {
	kind Kind
	info Info
}

// table is the single source of truth; index and order are derived from it once.
var table = [...]entry{
	{SyntaxError, Info{
		Definition:    "Code violates Python grammar.",
		Cause:         "Missing colons, brackets, or invalid structure.",
		Solution:      "Fix the syntax as per Python rules.",
		ExampleBefore: "if x > 5\n    print(x)",
		ExampleAfter:  "if x > 5:\n    print(x)",
	}},
	{IndentationError, Info{
		Definition:    "Incorrect indentation of code.",
		Cause:         "Missing or inconsistent spaces/tabs.",
		Solution:      "Use 4 spaces consistently.",
		ExampleBefore: "def hello():\nprint('hi')",
		ExampleAfter:  "def hello():\n    print('hi')",
	}},
	{NameError, Info{
		Definition:    "Variable/function name not defined.",
		Cause:         "Using a variable without declaring it.",
		Solution:      "Define the variable before using.",
		ExampleBefore: "print(age)",
		ExampleAfter:  "age = 20\nprint(age)",
	}},
	{TypeError, Info{
		Definition:    "Invalid operation between data types.",
		Cause:         "e.g. adding string to integer.",
		Solution:      "Convert types properly before using.",
		ExampleBefore: "print('Age: ' + 20)",
		ExampleAfter:  "print('Age: ' + str(20))",
	}},
	{ValueError, Info{
		Definition:    "Right type but wrong value.",
		Cause:         "e.g. int('abc')",
		Solution:      "Sanitize and validate input.",
		ExampleBefore: "int('hello')",
		ExampleAfter:  "val = '123'\nif val.isdigit():\n    print(int(val))",
	}},
	{IndexError, Info{
		Definition:    "List index out of range.",
		Cause:         "Accessing index that doesn't exist.",
		Solution:      "Use len() to check size.",
		ExampleBefore: "nums = [1,2]\nprint(nums[5])",
		ExampleAfter:  "if len(nums) > 5:\n    print(nums[5])",
	}},
	{KeyError, Info{
		Definition:    "Dictionary key not found.",
		Cause:         "Using a key that doesn't exist.",
		Solution:      "Use .get() or check with 'in'.",
		ExampleBefore: "d = {'a':1}\nprint(d['b'])",
		ExampleAfter:  "print(d.get('b', 'Not Found'))",
	}},
	{ZeroDivisionError, Info{
		Definition:    "Dividing by zero.",
		Cause:         "Denominator is zero.",
		Solution:      "Check before dividing.",
		ExampleBefore: "x = 10 / 0",
		ExampleAfter:  "if y != 0:\n    x = 10 / y",
	}},
	{AttributeError, Info{
		Definition:    "Attribute/method not found.",
		Cause:         "Wrong type or typo in method.",
		Solution:      "Use dir(obj) to see valid attributes.",
		ExampleBefore: "x = 5\nx.append(2)",
		ExampleAfter:  "x = []\nx.append(2)",
	}},
	{ImportError, Info{
		Definition:    "Cannot import from module.",
		Cause:         "Misspelled or incorrect import.",
		Solution:      "Double-check spelling and syntax.",
		ExampleBefore: "from mathz import sqrt",
		ExampleAfter:  "from math import sqrt",
	}},
	{ModuleNotFoundError, Info{
		Definition:    "Module not found or installed.",
		Cause:         "Using module not installed.",
		Solution:      "Install via pip.",
		ExampleBefore: "import boltai",
		ExampleAfter:  "# pip install boltai\nimport boltai",
	}},
	{FileNotFoundError, Info{
		Definition:    "File you're trying to access doesn't exist.",
		Cause:         "Wrong path or missing file.",
		Solution:      "Check path or use os.path.exists()",
		ExampleBefore: "open('data.csv')",
		ExampleAfter:  "import os\nif os.path.exists('data.csv'):\n    open('data.csv')",
	}},
	{RuntimeError, Info{
		Definition:    "Unspecified error during runtime.",
		Cause:         "Unexpected behavior in execution.",
		Solution:      "Use try/except, check logic.",
		ExampleBefore: "# infinite recursion, unsafe op",
		ExampleAfter:  "# use print() to trace and fix logic",
	}},
	{RecursionError, Info{
		Definition:    "Function called itself too many times.",
		Cause:         "Missing base case in recursion.",
		Solution:      "Always add a base case.",
		ExampleBefore: "def f():\n    f()\nf()",
		ExampleAfter:  "def f(n):\n    if n == 0: return\n    f(n-1)",
	}},
	{AssertionError, Info{
		Definition:    "Assertion failed.",
		Cause:         "assert condition returned False.",
		Solution:      "Fix the condition or remove in production.",
		ExampleBefore: "assert 2 + 2 == 5",
		ExampleAfter:  "assert 2 + 2 == 4",
	}},
	{UnboundLocalError, Info{
		Definition:    "Using variable before assignment.",
		Cause:         "Assigning before declaring inside a function.",
		Solution:      "Declare before use or use global.",
		ExampleBefore: "def fn():\n    print(x)\n    x = 5",
		ExampleAfter:  "def fn():\n    x = 5\n    print(x)",
	}},
	{IsADirectoryError, Info{
		Definition:    "Tried to open a directory as a file.",
		Cause:         "Passed a folder to open().",
		Solution:      "Check using os.path.isfile().",
		ExampleBefore: "open('/home/user/')",
		ExampleAfter:  "if os.path.isfile(path):\n    open(path)",
	}},
	{PermissionError, Info{
		Definition:    "No access rights to file/folder.",
		Cause:         "Trying to read/write protected file.",
		Solution:      "Change file permissions or use sudo.",
		ExampleBefore: "open('/root/secret.txt')",
		ExampleAfter:  "# Run as admin or change perms",
	}},
	{EOFError, Info{
		Definition:    "Unexpected end of file/input.",
		Cause:         "Used input() where no stdin is available.",
		Solution:      "Wrap in try/except or avoid input().",
		ExampleBefore: "data = input()",
		ExampleAfter:  "try:\n    data = input()\nexcept EOFError:\n    data = ''",
	}},
	{FloatingPointError, Info{
		Definition:    "Floating point operation failed.",
		Cause:         "Divisions, underflow/overflow of float ops.",
		Solution:      "Use `decimal` or error handling.",
		ExampleBefore: "# no direct trigger",
		ExampleAfter:  "# use try/except or decimal module",
	}},
}

var (
	index = buildIndex()
	kinds = buildKinds()
)

func buildIndex() map[Kind]*Info {
	m := make(map[Kind]*Info, len(table))
	for i := range table {
		m[table[i].kind] = &table[i].info
	}
	return m
}

func buildKinds() []Kind {
	out := make([]Kind, len(table))
	for i := range table {
		out[i] = table[i].kind
	}
	return out
}

// Lookup returns the entry for an exact kind name. The returned Info is shared
// and must not be modified.
func Lookup(kind string) (*Info, bool) {
	info, ok := index[Kind(kind)]
	return info, ok
}

// Of is Lookup for a typed Kind; it returns nil when the kind has no entry.
func Of(kind Kind) *Info {
	return index[kind]
}

// Kinds returns every kind with an entry, in table order.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}
