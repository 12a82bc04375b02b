// Package vm implements the Whitespace executor: the fetch/decode/execute
// loop over a token sequence, driving an operand stack, a fixed-size heap,
// a return-address stack, and a line-buffered input stream.
package vm

import (
	"fmt"
	"io"

	"github.com/ark-vm/whitespace/label"
	"github.com/ark-vm/whitespace/token"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ark-vm/whitespace/diag"
)

// State is the Machine's high-level run state.
type State int

const (
	StateReady State = iota
	StateRunning
	StateBlockedOnInput
	StateHaltedOK
	StateHaltedFault
)

// String renders a State the way diagserver's /state endpoint does, so the
// executor's Event stream and the diagnostics server agree on one spelling.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateBlockedOnInput:
		return "blocked_on_input"
	case StateHaltedOK:
		return "halted_ok"
	case StateHaltedFault:
		return "halted_fault"
	default:
		return "unknown"
	}
}

// Options configures a Machine. A zero Options uses the built-in defaults
// (a 512-cell heap) and discards trace output.
type Options struct {
	HeapSize int
	Stdin    io.Reader
	Stdout   io.Writer
	Logger   *logrus.Logger // nil disables per-instruction tracing
	Echo     bool           // echo characters/lines consumed by INCH/INNUM to Stdout
}

// Machine is the Whitespace stack machine: one instance owns all of its
// mutable state, with nothing held in package-level variables, so multiple
// Machines may run concurrently provided callers serialize access to any
// shared stdin/stdout.
type Machine struct {
	toks   []token.Token
	labels *label.Table

	ip     int
	stack  operandStack
	rstack returnStack
	heap   *heap
	input  *inputBuffer
	out    io.Writer
	log    *logrus.Logger
	state  State
	fault  *Fault
	echo   bool
	onStep func(Event)
}

// Event is emitted to an optional step hook (SetStepHook) as each
// instruction is fetched, before it executes (Stack and StackTop describe
// the stack the instruction is about to operate on), for live
// introspection such as diagserver's websocket trace stream.
type Event struct {
	IP         int     `json:"ip"`
	Mnemonic   string  `json:"mnemonic"`
	Arg        string  `json:"arg,omitempty"`
	StackDepth int     `json:"stack_depth"`
	StackTop   int64   `json:"stack_top,omitempty"`
	HasTop     bool    `json:"has_top"`
	Stack      []int64 `json:"stack,omitempty"`
	State      string  `json:"state"`
}

// SetStepHook registers fn to be called once per executed instruction.
// Passing nil disables the hook. The hook runs synchronously on the
// executing goroutine, so it must not block.
func (m *Machine) SetStepHook(fn func(Event)) {
	m.onStep = fn
}

// New constructs a Machine ready to run toks, with labels already resolved
// by label.Resolve.
func New(toks []token.Token, labels *label.Table, opts Options) *Machine {
	size := opts.HeapSize
	if size <= 0 {
		size = DefaultHeapSize
	}
	stdin := opts.Stdin
	if stdin == nil {
		stdin = io.LimitReader(nil, 0)
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	log := opts.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Machine{
		toks:   toks,
		labels: labels,
		heap:   newHeap(size),
		input:  newInputBuffer(stdin),
		out:    stdout,
		log:    log,
		state:  StateReady,
		echo:   opts.Echo,
	}
}

// State reports the machine's current high-level state.
func (m *Machine) State() State { return m.state }

// StackSnapshot returns the operand stack's contents, top-first, for
// diagnostics (--describe companions, the diagserver /state endpoint).
func (m *Machine) StackSnapshot() []int64 { return m.stack.snapshot() }

// IP reports the current instruction pointer.
func (m *Machine) IP() int { return m.ip }

// Run drives the fetch/decode/execute loop to completion: ENDPROGRAM
// (returns nil), a Fault (returned as error), or falling off the end of the
// token list (returned as a ProgramRanOffEnd Fault).
func (m *Machine) Run() error {
	m.state = StateRunning
	for {
		if m.ip >= len(m.toks) {
			return errors.WithStack(m.haltFault(newFault(FaultRanOffEnd, m.ip, "instruction pointer advanced past the last token without ENDPROGRAM")))
		}
		halted, err := m.step()
		if err != nil {
			var f *Fault
			if fe, ok := err.(*Fault); ok {
				f = fe
			} else {
				f = newFault(FaultInput, m.ip, err.Error())
			}
			return errors.WithStack(m.haltFault(f))
		}
		if halted {
			m.state = StateHaltedOK
			m.log.WithField("ip", m.ip).Info("program halted via ENDPROGRAM")
			return nil
		}
	}
}

func (m *Machine) haltFault(f *Fault) error {
	m.fault = f
	m.state = StateHaltedFault
	m.log.WithFields(logrus.Fields{"ip": f.IP, "kind": f.Kind.String()}).Error(f.Message)
	return f
}

// step executes the instruction at ip and reports whether it halted the
// program via ENDPROGRAM.
func (m *Machine) step() (bool, error) {
	tok := m.toks[m.ip]
	diag.Emit(m.log, diag.TraceEntry{
		IP:         m.ip,
		Mnemonic:   tok.Op.String(),
		Arg:        traceArg(tok),
		StackDepth: m.stack.len(),
	})
	if m.onStep != nil {
		top, hasTop := m.stack.peek(0)
		m.onStep(Event{
			IP:         m.ip,
			Mnemonic:   tok.Op.String(),
			Arg:        traceArg(tok),
			StackDepth: m.stack.len(),
			StackTop:   top,
			HasTop:     hasTop,
			Stack:      m.stack.snapshot(),
			State:      m.state.String(),
		})
	}

	switch tok.Op {
	case token.Push:
		m.stack.push(tok.Num)
	case token.Duplicate:
		v, ok := m.pop()
		if !ok {
			return false, m.underflow("DUPLICATE requires one operand")
		}
		m.stack.push(v)
		m.stack.push(v)
	case token.Copy:
		if tok.Num < 0 {
			return false, m.underflow("COPY requires a non-negative argument")
		}
		v, ok := m.stack.peek(int(tok.Num))
		if !ok {
			return false, m.underflow(fmt.Sprintf("COPY %d requires stack depth > %d", tok.Num, tok.Num))
		}
		m.stack.push(v)
	case token.Swap:
		b, aOK := m.pop()
		a, bOK := m.pop()
		if !aOK || !bOK {
			return false, m.underflow("SWAP requires two operands")
		}
		m.stack.push(b)
		m.stack.push(a)
	case token.Discard:
		if _, ok := m.pop(); !ok {
			return false, m.underflow("DISCARD requires one operand")
		}
	case token.Slide:
		if tok.Num < 0 {
			return false, m.underflow("SLIDE requires a non-negative argument")
		}
		top, ok := m.pop()
		if !ok {
			return false, m.underflow("SLIDE requires at least one operand")
		}
		for i := int64(0); i < tok.Num; i++ {
			if _, ok := m.pop(); !ok {
				return false, m.underflow(fmt.Sprintf("SLIDE %d requires %d additional operands", tok.Num, tok.Num))
			}
		}
		m.stack.push(top)
	case token.Add:
		a, b, err := m.popArith("ADD")
		if err != nil {
			return false, err
		}
		m.stack.push(a + b)
	case token.Sub:
		a, b, err := m.popArith("SUB")
		if err != nil {
			return false, err
		}
		m.stack.push(a - b)
	case token.Mult:
		a, b, err := m.popArith("MULT")
		if err != nil {
			return false, err
		}
		m.stack.push(a * b)
	case token.Div:
		a, b, err := m.popArith("DIV")
		if err != nil {
			return false, err
		}
		if b == 0 {
			return false, m.fire(FaultArithmetic, "division by zero")
		}
		m.stack.push(floorDiv(a, b))
	case token.Mod:
		a, b, err := m.popArith("MOD")
		if err != nil {
			return false, err
		}
		if b == 0 {
			return false, m.fire(FaultArithmetic, "modulo by zero")
		}
		m.stack.push(floorMod(a, b))
	case token.Store:
		v, vOK := m.pop()
		a, aOK := m.pop()
		if !vOK || !aOK {
			return false, m.underflow("STORE requires two operands")
		}
		if !m.heap.set(a, v) {
			return false, m.heapFault(a)
		}
	case token.Retrieve:
		a, ok := m.pop()
		if !ok {
			return false, m.underflow("RETRIEVE requires one operand")
		}
		v, ok := m.heap.get(a)
		if !ok {
			return false, m.heapFault(a)
		}
		m.stack.push(v)
	case token.Mark:
		// Resolved entirely during label.Resolve; a no-op at execution time.
	case token.Call:
		target, ok := m.labels.Lookup(tok.Label)
		if !ok {
			return false, m.fire(FaultResolution, fmt.Sprintf("call to undefined label %q", tok.Label))
		}
		m.rstack.push(m.ip + 1)
		m.ip = target
		return false, nil
	case token.Jump:
		target, ok := m.labels.Lookup(tok.Label)
		if !ok {
			return false, m.fire(FaultResolution, fmt.Sprintf("jump to undefined label %q", tok.Label))
		}
		m.ip = target
		return false, nil
	case token.JumpZero:
		v, ok := m.pop()
		if !ok {
			return false, m.underflow("JUMPZERO requires one operand")
		}
		if v == 0 {
			target, ok := m.labels.Lookup(tok.Label)
			if !ok {
				return false, m.fire(FaultResolution, fmt.Sprintf("jump to undefined label %q", tok.Label))
			}
			m.ip = target
			return false, nil
		}
	case token.JumpNeg:
		v, ok := m.pop()
		if !ok {
			return false, m.underflow("JUMPNEG requires one operand")
		}
		if v < 0 {
			target, ok := m.labels.Lookup(tok.Label)
			if !ok {
				return false, m.fire(FaultResolution, fmt.Sprintf("jump to undefined label %q", tok.Label))
			}
			m.ip = target
			return false, nil
		}
	case token.Return:
		target, ok := m.rstack.pop()
		if !ok {
			return false, m.underflow("RETURN with empty return stack")
		}
		m.ip = target
		return false, nil
	case token.EndProgram:
		return true, nil
	case token.OutCh:
		v, ok := m.pop()
		if !ok {
			return false, m.underflow("OUTCH requires one operand")
		}
		fmt.Fprintf(m.out, "%c", rune(v))
	case token.OutNum:
		v, ok := m.pop()
		if !ok {
			return false, m.underflow("OUTNUM requires one operand")
		}
		fmt.Fprintf(m.out, "%d", v)
	case token.InCh:
		a, ok := m.pop()
		if !ok {
			return false, m.underflow("INCH requires one operand")
		}
		if !m.heap.inRange(a) {
			return false, m.heapFault(a)
		}
		m.state = StateBlockedOnInput
		c, err := m.input.nextChar()
		m.state = StateRunning
		if err != nil {
			return false, m.fire(FaultInput, "end of input reached while INCH required a character")
		}
		m.heap.set(a, int64(c))
		if m.echo {
			fmt.Fprintf(m.out, "%c", c)
		}
	case token.InNum:
		a, ok := m.pop()
		if !ok {
			return false, m.underflow("INNUM requires one operand")
		}
		if !m.heap.inRange(a) {
			return false, m.heapFault(a)
		}
		m.state = StateBlockedOnInput
		n, err := m.input.nextIntLine()
		m.state = StateRunning
		if err != nil {
			if err == errMalformedInt {
				return false, m.fire(FaultInput, "INNUM could not parse input line as a decimal integer")
			}
			return false, m.fire(FaultInput, "end of input reached while INNUM required a line")
		}
		m.heap.set(a, n)
		if m.echo {
			fmt.Fprintf(m.out, "%d", n)
		}
	default:
		return false, m.fire(FaultResolution, fmt.Sprintf("unimplemented opcode %v", tok.Op))
	}

	m.ip++
	return false, nil
}

func (m *Machine) pop() (int64, bool) { return m.stack.pop() }

// popArith pops the two operands a binary arithmetic op needs, returning
// them as (a, b) with a deeper on the stack and b the former top, so
// callers can compute "a OP b" in the conventional operand order.
func (m *Machine) popArith(name string) (int64, int64, error) {
	b, bOK := m.pop()
	a, aOK := m.pop()
	if !aOK || !bOK {
		return 0, 0, m.underflow(name + " requires two operands")
	}
	return a, b, nil
}

func (m *Machine) underflow(msg string) error {
	return m.fire(FaultStackUnderflow, msg)
}

func (m *Machine) heapFault(addr int64) error {
	return m.fire(FaultHeapAddress, fmt.Sprintf("address %d outside [0, %d)", addr, m.heap.len()))
}

func (m *Machine) fire(kind FaultKind, msg string) error {
	return newFault(kind, m.ip, msg)
}

// floorDiv implements floored (Python-style) division: the quotient rounds
// toward negative infinity, unlike Go's truncating "/".
func floorDiv(a, b int64) int64 {
	q := a / b
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		q--
	}
	return q
}

// floorMod implements floored modulo: the remainder has the sign of the
// divisor, unlike Go's truncating "%".
func floorMod(a, b int64) int64 {
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func traceArg(t token.Token) string {
	switch t.Op.ArgKind() {
	case token.KindNumber:
		return fmt.Sprintf("%d", t.Num)
	case token.KindLabel:
		return string(t.Label)
	default:
		return ""
	}
}
