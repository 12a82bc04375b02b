package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ark-vm/whitespace/asm"
	"github.com/ark-vm/whitespace/label"
	"github.com/ark-vm/whitespace/vm"
	"github.com/ark-vm/whitespace/wsio"
	"github.com/stretchr/testify/require"
)

// run assembles src, tokenizes and resolves it, and executes it with the
// given stdin, returning stdout and the terminal error (nil on a clean
// ENDPROGRAM halt).
func run(t *testing.T, src string, stdin string) (string, error) {
	t.Helper()
	bin, err := asm.Assemble(src)
	require.NoError(t, err)
	toks, err := wsio.Tokenize(bin)
	require.NoError(t, err)
	labels := label.Resolve(toks)

	var out bytes.Buffer
	m := vm.New(toks, labels, vm.Options{
		Stdin:  strings.NewReader(stdin),
		Stdout: &out,
	})
	err = m.Run()
	return out.String(), err
}

func TestArithmeticPipeline(t *testing.T) {
	// 8 + -2 = 6: ADD computes a+b with b the former top.
	out, err := run(t, `
PUSH 8
PUSH -2
ADD
OUTNUM
ENDPROGRAM
`, "")
	require.NoError(t, err)
	require.Equal(t, "6", out)
}

func TestFlooredDivisionAndModulo(t *testing.T) {
	out, err := run(t, `
PUSH -7
PUSH 2
DIV
OUTNUM
PUSH -7
PUSH 2
MOD
OUTNUM
ENDPROGRAM
`, "")
	require.NoError(t, err)
	// floor(-7/2) = -4, and -7 mod 2 (sign of divisor) = 1.
	require.Equal(t, "-41", out)
}

func TestDivisionByZeroFaults(t *testing.T) {
	_, err := run(t, `
PUSH 1
PUSH 0
DIV
ENDPROGRAM
`, "")
	require.Error(t, err)
	var f *vm.Fault
	require.ErrorAs(t, err, &f)
	require.Equal(t, vm.FaultArithmetic, f.Kind)
}

func TestStackReshaping(t *testing.T) {
	out, err := run(t, `
PUSH 7
PUSH 16
PUSH 20
PUSH 25
PUSH 31
COPY 3
OUTNUM
SWAP
OUTNUM
DISCARD
SLIDE 2
OUTNUM
ENDPROGRAM
`, "")
	require.NoError(t, err)
	// stack after pushes (top-first): 31 25 20 16 7
	// COPY 3 copies the item 3 below the top (16), prints 16
	// SWAP exchanges the top two (31, 25), prints the new top (25)
	// DISCARD drops the top (31)
	// SLIDE 2 keeps the top, drops the next two, prints the surviving top (20)
	require.Equal(t, "162520", out)
}

func TestControlFlowWithSubroutine(t *testing.T) {
	out, err := run(t, `
PUSH 1
CALL ST
OUTNUM
ENDPROGRAM
MARK ST
PUSH 41
ADD
RETURN
`, "")
	require.NoError(t, err)
	require.Equal(t, "42", out)
}

func TestConditionalJumpZeroSkips(t *testing.T) {
	out, err := run(t, `
PUSH 0
JUMPZERO SS
PUSH 111
OUTNUM
MARK SS
PUSH 222
OUTNUM
ENDPROGRAM
`, "")
	require.NoError(t, err)
	require.Equal(t, "222", out)
}

func TestConditionalJumpNegTaken(t *testing.T) {
	out, err := run(t, `
PUSH -1
JUMPNEG TT
PUSH 111
OUTNUM
MARK TT
PUSH 333
OUTNUM
ENDPROGRAM
`, "")
	require.NoError(t, err)
	require.Equal(t, "333", out)
}

func TestHeapRoundTrip(t *testing.T) {
	out, err := run(t, `
PUSH 4
PUSH 99
STORE
PUSH 4
RETRIEVE
OUTNUM
ENDPROGRAM
`, "")
	require.NoError(t, err)
	require.Equal(t, "99", out)
}

func TestHeapOutOfRangeFaults(t *testing.T) {
	_, err := run(t, `
PUSH -1
PUSH 5
STORE
ENDPROGRAM
`, "")
	require.Error(t, err)
	var f *vm.Fault
	require.ErrorAs(t, err, &f)
	require.Equal(t, vm.FaultHeapAddress, f.Kind)
}

func TestInputEcho(t *testing.T) {
	out, err := run(t, `
PUSH 0
INCH
PUSH 0
RETRIEVE
OUTCH
ENDPROGRAM
`, "Z\n")
	require.NoError(t, err)
	require.Equal(t, "Z", out)
}

func TestInNumReadsLineAndDiscardsRemainder(t *testing.T) {
	out, err := run(t, `
PUSH 0
INNUM
PUSH 0
RETRIEVE
OUTNUM
ENDPROGRAM
`, "42 trailing garbage\n")
	require.NoError(t, err)
	require.Equal(t, "42", out)
}

func TestOptionsEchoWritesConsumedInputToStdout(t *testing.T) {
	bin, err := asm.Assemble(`
PUSH 0
INCH
PUSH 1
INNUM
ENDPROGRAM
`)
	require.NoError(t, err)
	toks, err := wsio.Tokenize(bin)
	require.NoError(t, err)
	labels := label.Resolve(toks)

	var out bytes.Buffer
	m := vm.New(toks, labels, vm.Options{
		Stdin:  strings.NewReader("Z\n9\n"),
		Stdout: &out,
		Echo:   true,
	})
	require.NoError(t, m.Run())
	require.Equal(t, "Z9", out.String())
}

func TestStackUnderflowFaults(t *testing.T) {
	_, err := run(t, `
ADD
ENDPROGRAM
`, "")
	require.Error(t, err)
	var f *vm.Fault
	require.ErrorAs(t, err, &f)
	require.Equal(t, vm.FaultStackUnderflow, f.Kind)
}

func TestUndefinedLabelFaults(t *testing.T) {
	_, err := run(t, `
JUMP SST
ENDPROGRAM
`, "")
	require.Error(t, err)
	var f *vm.Fault
	require.ErrorAs(t, err, &f)
	require.Equal(t, vm.FaultResolution, f.Kind)
}

func TestRanOffEndFaults(t *testing.T) {
	_, err := run(t, `
PUSH 1
`, "")
	require.Error(t, err)
	var f *vm.Fault
	require.ErrorAs(t, err, &f)
	require.Equal(t, vm.FaultRanOffEnd, f.Kind)
}

func TestSelfTestProgramProducesDocumentedOutput(t *testing.T) {
	toks, err := wsio.Tokenize([]byte(vm.SelfTestProgram))
	require.NoError(t, err)
	labels := label.Resolve(toks)

	var out bytes.Buffer
	m := vm.New(toks, labels, vm.Options{
		Stdin:  strings.NewReader("z\n9\n"),
		Stdout: &out,
	})
	err = m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.ExpectedSelfTestOutput+" z9", out.String())
}

func TestStepHookFiresPerInstruction(t *testing.T) {
	bin, err := asm.Assemble("PUSH 1\nPUSH 2\nADD\nENDPROGRAM\n")
	require.NoError(t, err)
	toks, err := wsio.Tokenize(bin)
	require.NoError(t, err)
	labels := label.Resolve(toks)

	var out bytes.Buffer
	m := vm.New(toks, labels, vm.Options{Stdout: &out})
	var events []vm.Event
	m.SetStepHook(func(e vm.Event) { events = append(events, e) })
	require.NoError(t, m.Run())
	require.Len(t, events, 4)
	require.Equal(t, "PUSH", events[0].Mnemonic)
	require.Equal(t, "running", events[0].State)
	require.Equal(t, []int64{}, events[0].Stack)
	require.Equal(t, "ENDPROGRAM", events[3].Mnemonic)
	require.Equal(t, []int64{3}, events[3].Stack)
}
