package shell

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
	"github.com/thoreinstein/bashbuiltins/pkg/options"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var greetSpec = options.MustSpec(options.Flag('u', true))

func greet(args *builtin.Args) error {
	upper := false
	for v, err := range builtin.Options(args, greetSpec) {
		if err != nil {
			return err
		}
		upper = v
	}
	names, err := args.Strings()
	if err != nil {
		return err
	}
	if len(names) != 1 {
		return builtin.ErrUsage
	}
	msg := "hello " + names[0]
	if upper {
		msg = strings.ToUpper(msg)
	}
	_, err = fmt.Fprintln(args.Stdout(), msg)
	return err
}

func testRegistry(t *testing.T) *builtin.Registry {
	t.Helper()
	reg := builtin.NewRegistry()
	require.NoError(t, reg.Register(builtin.Definition{
		Metadata: builtin.Metadata{Name: "greet", ShortDoc: "greet [-u] name", LongDoc: "Print a greeting."},
		Create:   func() builtin.Builtin { return builtin.Func(greet) },
	}))
	require.NoError(t, reg.Register(builtin.Definition{
		Metadata:  builtin.Metadata{Name: "broken"},
		TryCreate: func() (builtin.Builtin, error) { return nil, errors.New("nope") },
	}))
	return reg
}

type testShell struct {
	*Shell
	out bytes.Buffer
	err bytes.Buffer
}

func newTestShell(t *testing.T, opts ...Option) *testShell {
	t.Helper()
	ts := &testShell{}
	opts = append([]Option{
		WithOutput(&ts.out, &ts.err),
		WithRegistry(testRegistry(t)),
		WithRandomSeed(42),
	}, opts...)
	ts.Shell = New(opts...)
	t.Cleanup(func() { _ = ts.Close() })
	return ts
}

func (ts *testShell) runAll(t *testing.T, lines ...string) {
	t.Helper()
	for _, line := range lines {
		ts.Run(line)
	}
}

func TestRun_Expansion(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{name: "double quotes keep blanks", lines: []string{`x="a  b"`, `echo "$x!"`}, want: "a  b!\n"},
		{name: "single quotes are literal", lines: []string{`x=1`, `echo '$x' "\$x"`}, want: "$x $x\n"},
		{name: "braces", lines: []string{`x=pre`, `echo ${x}fix`}, want: "prefix\n"},
		{name: "unset expands to nothing", lines: []string{`echo "[$nothing]"`}, want: "[]\n"},
		{name: "indexed element", lines: []string{`arr[2]=two`, `arr[5]=five`, `echo ${arr[2]} ${arr[5]} ${#arr[@]}`}, want: "two five 2\n"},
		{name: "all elements", lines: []string{`arr[1]=b`, `arr[0]=a`, `echo "${arr[@]}"`}, want: "a b\n"},
		{name: "assoc element", lines: []string{`declare -A m`, `m[key]=v`, `echo ${m[key]}`}, want: "v\n"},
		{name: "length", lines: []string{`x=héllo`, `echo ${#x}`}, want: "5\n"},
		{name: "nameref write", lines: []string{`x=old`, `declare -n r=x`, `r=new`, `echo $x $r`}, want: "new new\n"},
		{name: "assignment value with equals", lines: []string{`x=a=b`, `echo $x`}, want: "a=b\n"},
		{name: "quoted name is not an assignment", lines: []string{`"x"=1`}, want: ""},
		{name: "comment", lines: []string{`echo a # b`}, want: "a\n"},
		{name: "echo -n", lines: []string{`echo -n a`, `echo b`}, want: "ab\n"},
		{name: "lone dollar", lines: []string{`echo $ cost`}, want: "$ cost\n"},
		{name: "exit status", lines: []string{`false`, `echo $?`, `true`, `echo $?`}, want: "1\n0\n"},
		{name: "shell name", lines: []string{`echo $0`}, want: "bbhost\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh := newTestShell(t)
			sh.runAll(t, tt.lines...)
			assert.Equal(t, tt.want, sh.out.String())
		})
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		wantStatus int
		wantErr    string
	}{
		{
			name:       "command not found",
			lines:      []string{"nope"},
			wantStatus: StatusNotFound,
			wantErr:    "bbhost: nope: command not found\n",
		},
		{
			name:       "unterminated quote",
			lines:      []string{`echo "abc`},
			wantStatus: StatusSyntaxError,
			wantErr:    "bbhost: `\"': unexpected EOF while looking for matching quote\n",
		},
		{
			name:       "bad substitution",
			lines:      []string{`echo ${a-b}`},
			wantStatus: StatusSyntaxError,
			wantErr:    "bbhost: ${a-b}: bad substitution\n",
		},
		{
			name:       "readonly assignment",
			lines:      []string{"readonly R=1", "R=2"},
			wantStatus: builtin.ExitFailure,
			wantErr:    "bbhost: R: readonly variable\n",
		},
		{
			name:       "readonly unset",
			lines:      []string{"readonly R=1", "unset R"},
			wantStatus: builtin.ExitFailure,
			wantErr:    "bbhost: unset: R: cannot unset: readonly variable\n",
		},
		{
			name:       "special variable",
			lines:      []string{"RANDOM=1"},
			wantStatus: builtin.ExitFailure,
			wantErr:    "bbhost: RANDOM: readonly variable\n",
		},
		{
			name:       "array kind mismatch",
			lines:      []string{"x=1", "x[1]=2"},
			wantStatus: builtin.ExitFailure,
			wantErr:    "bbhost: x: variable kind mismatch\n",
		},
		{
			name:       "negative subscript",
			lines:      []string{"a[-1]=2"},
			wantStatus: builtin.ExitFailure,
			wantErr:    "bbhost: a[-1]: bad array subscript\n",
		},
		{
			name:       "invalid option",
			lines:      []string{"declare -x"},
			wantStatus: builtin.ExitBadUsage,
			wantErr:    "bbhost: declare: invalid option -- 'x'\ndeclare: usage: declare [-aAnrp] [name[=value] ...]\n",
		},
		{
			name:       "invalid identifier",
			lines:      []string{"unset a-b"},
			wantStatus: builtin.ExitFailure,
			wantErr:    "bbhost: unset: `a-b': not a valid identifier\n",
		},
		{
			name:       "nameref cycle",
			lines:      []string{"declare -n a=b", "declare -n b=a", "a=1"},
			wantStatus: builtin.ExitFailure,
			wantErr:    "bbhost: a: circular name reference\n",
		},
		{
			name:       "self reference",
			lines:      []string{"declare -n a=a"},
			wantStatus: builtin.ExitFailure,
			wantErr:    "bbhost: declare: a: nameref variable self references not allowed\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh := newTestShell(t)
			sh.runAll(t, tt.lines...)
			assert.Equal(t, tt.wantStatus, sh.Status())
			assert.Equal(t, tt.wantErr, sh.err.String())
		})
	}
}

func TestEnable(t *testing.T) {
	sh := newTestShell(t)

	assert.Equal(t, builtin.ExitSuccess, sh.Run("enable -f ./libgreet.so"))
	assert.Equal(t, builtin.ExitSuccess, sh.Run("greet world"))
	assert.Equal(t, builtin.ExitSuccess, sh.Run("greet -u world"))
	assert.Equal(t, builtin.ExitSuccess, sh.Run("enable"))
	assert.Equal(t, "hello world\nHELLO WORLD\nenable greet\n", sh.out.String())

	assert.Equal(t, builtin.ExitBadUsage, sh.Run("greet"))
	assert.Equal(t, builtin.ExitBadUsage, sh.Run("greet -x a"))
	assert.Equal(t, "greet: usage: greet [-u] name\ngreet: invalid option -- 'x'\n", sh.err.String())

	sh.err.Reset()
	assert.Equal(t, builtin.ExitSuccess, sh.Run("enable -d greet"))
	assert.Equal(t, StatusNotFound, sh.Run("greet world"))
	assert.Equal(t, builtin.ExitFailure, sh.Run("enable -d greet"))
	assert.Equal(t, "bbhost: greet: command not found\nbbhost: enable: greet: not dynamically loaded\n", sh.err.String())
}

func TestCall_SkipsExpansion(t *testing.T) {
	sh := newTestShell(t)
	require.NoError(t, sh.Enable("greet"))

	assert.Equal(t, builtin.ExitSuccess, sh.Call("greet", "$USER"))
	assert.Equal(t, builtin.ExitBadUsage, sh.Call("greet"))
	assert.Equal(t, StatusNotFound, sh.Call("nope"))
	assert.Equal(t, StatusNotFound, sh.Status())
	assert.Equal(t, "hello $USER\n", sh.out.String())
}

func TestEnable_Failures(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr string
	}{
		{
			name:    "not registered",
			line:    "enable -f ./x.so missing",
			wantErr: "bbhost: enable: cannot find missing_struct in shared object ./x.so: undefined symbol: missing_struct\n",
		},
		{
			name:    "load function fails",
			line:    "enable -f ./x.so broken",
			wantErr: "broken: error: nope\nbbhost: enable: load function for broken returns failure (0): not loaded\n",
		},
		{
			name:    "not a builtin",
			line:    "enable greet",
			wantErr: "bbhost: enable: greet: not a shell builtin\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh := newTestShell(t)
			assert.Equal(t, builtin.ExitFailure, sh.Run(tt.line))
			assert.Equal(t, tt.wantErr, sh.err.String())
			assert.Empty(t, sh.Loader().Enabled())
		})
	}
}

func TestHelp(t *testing.T) {
	sh := newTestShell(t)
	require.NoError(t, sh.Enable("greet"))

	assert.Equal(t, builtin.ExitSuccess, sh.Run("help greet"))
	assert.Equal(t, "greet: greet [-u] name\n    Print a greeting.\n", sh.out.String())

	sh.out.Reset()
	assert.Equal(t, builtin.ExitSuccess, sh.Run("help -s greet echo"))
	assert.Equal(t, "greet: greet [-u] name\necho: echo [-n] [arg ...]\n", sh.out.String())

	sh.out.Reset()
	assert.Equal(t, builtin.ExitBadUsage, sh.Run("greet --help"))
	assert.Equal(t, "greet: greet [-u] name\n    Print a greeting.\n", sh.out.String())

	assert.Equal(t, builtin.ExitFailure, sh.Run("help nothing"))
	assert.Contains(t, sh.err.String(), "no help topics match `nothing'")

	sh.out.Reset()
	assert.Equal(t, builtin.ExitSuccess, sh.Run("help"))
	assert.Contains(t, sh.out.String(), " greet [-u] name\n")
	assert.Contains(t, sh.out.String(), " unset [-v] [-n] [name ...]\n")
}

func TestDeclare_Print(t *testing.T) {
	sh := newTestShell(t)
	sh.runAll(t,
		"x=1",
		"declare -a arr=first",
		`arr[3]='q"'`,
		"declare -A m",
		"m[b]=2",
		"m[a]=1",
		`m["two words"]=3`,
		"declare -n r=x",
		"readonly c=k",
	)
	require.Empty(t, sh.err.String())

	assert.Equal(t, builtin.ExitSuccess, sh.Run("declare -p x arr m r c"))
	want := `declare -- x="1"
declare -a arr=([0]="first" [3]="q\"")
declare -A m=([a]="1" [b]="2" ["two words"]="3" )
declare -n r="x"
declare -r c="k"
`
	assert.Equal(t, want, sh.out.String())

	sh.out.Reset()
	assert.Equal(t, builtin.ExitSuccess, sh.Run("readonly"))
	assert.Equal(t, "declare -r c=\"k\"\n", sh.out.String())

	assert.Equal(t, builtin.ExitFailure, sh.Run("declare -p missing"))
	assert.Equal(t, "bbhost: declare: missing: not found\n", sh.err.String())
}

func TestDeclare_Arrays(t *testing.T) {
	sh := newTestShell(t)
	sh.runAll(t, "declare -A m=zero", "declare -a list", "list[1]=one", "unset list[1]", "unset m[0]")
	require.Empty(t, sh.err.String())

	items, err := sh.Vars().Items("m")
	require.NoError(t, err)
	assert.Empty(t, items)
	items, err = sh.Vars().Items("list")
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.Equal(t, builtin.ExitFailure, sh.Run("declare -a m"))
	assert.Equal(t, "bbhost: declare: m: variable kind mismatch\n", sh.err.String())
}

func TestUnset_NameRef(t *testing.T) {
	sh := newTestShell(t)
	sh.runAll(t, "x=1", "declare -n r=x", "unset -n r")
	got, ok := sh.Vars().FindString("x")
	assert.True(t, ok)
	assert.Equal(t, "1", got)

	sh.runAll(t, "declare -n r=x", "unset r")
	_, ok = sh.Vars().FindString("x")
	assert.False(t, ok)
}

func TestSpecials(t *testing.T) {
	now := time.Unix(1700000000, 123456789)
	clock := func() time.Time { return now }
	sh := newTestShell(t, WithClock(clock))

	now = now.Add(5 * time.Second)
	sh.runAll(t, "echo $SECONDS $EPOCHSECONDS $EPOCHREALTIME")
	assert.Equal(t, "5 1700000005 1700000005.123456\n", sh.out.String())

	pid, ok := sh.Vars().FindString("BASHPID")
	assert.True(t, ok)
	_, err := strconv.Atoi(pid)
	assert.NoError(t, err)
}

func TestSpecials_RandomIsSeeded(t *testing.T) {
	a := newTestShell(t, WithRandomSeed(7))
	b := newTestShell(t, WithRandomSeed(7))

	var seqA, seqB []string
	for range 5 {
		va, _ := a.Vars().FindString("RANDOM")
		vb, _ := b.Vars().FindString("RANDOM")
		seqA = append(seqA, va)
		seqB = append(seqB, vb)

		n, err := strconv.Atoi(va)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.LessOrEqual(t, n, randMax)
	}
	assert.Equal(t, seqA, seqB)
	assert.NotEqual(t, seqA[0], seqA[1])
}

func TestRunScript(t *testing.T) {
	script := "x=1\n" +
		"echo $LINENO \\\n" +
		"  $x\n" +
		"\n" +
		"nope\n" +
		"echo done\n" +
		"exit 3\n" +
		"echo unreachable\n"

	sh := newTestShell(t)
	status, err := sh.RunScript(strings.NewReader(script))
	require.NoError(t, err)
	assert.Equal(t, 3, status)
	assert.Equal(t, "2 1\ndone\n", sh.out.String())
	assert.Equal(t, "bbhost: line 5: nope: command not found\n", sh.err.String())

	lineno, _ := sh.Vars().FindString("LINENO")
	assert.Equal(t, "0", lineno)
}
