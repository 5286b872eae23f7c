package runtime

import (
	"fmt"
	"math"

	"apple2core/basic"
)

// Apple II soft-switch and screen-memory addresses the graphics/text
// statements reach into directly, since no pixel framebuffer is modeled.
const (
	softSwitchTextMode = 0xC050
	softSwitchGraphics = 0xC051
	softSwitchLoRes    = 0xC056
	softSwitchHiRes    = 0xC057
	loResScreenBase    = 0x0400
	hiResScreenBase    = 0x2000
)

// jump carries a control-flow transfer (GOTO/GOSUB/RETURN/loop-back) up
// through nested statement execution to the main Run loop.
type jump struct {
	lineIndex int
	stmtIndex int
}

// signal is what executing one statement hands back to its caller: either
// "keep going" (nil jump, !halted), a jump elsewhere, or a halt.
type signal struct {
	jump    *jump
	halted  bool
}

// Interpreter tree-walks a parsed Program, driving a CPU/Memory pair for
// the USR/CALL/& bridge and an IBasicIO for all user-visible I/O. It holds
// its collaborators by pointer, the same composition shape as a bus-backed
// CPU holding its Memory.
type Interpreter struct {
	Vars     *VariableTable
	Arrays   *ArrayTable
	Data     *DataManager
	ForStack *ForStack
	Gosub    *GosubStack
	Funcs    *FunctionManager
	Builtins *Builtins
	IO       IBasicIO
	Mem      BuiltinMemory
	CPU      BuiltinCPU

	prog       *basic.Program
	lineOf     map[int]int // line number -> index in prog.Lines
	curColor   int
	printCol   int
}

// NewInterpreter wires every collaborator the statements below depend on.
func NewInterpreter(prog *basic.Program, m BuiltinMemory, c BuiltinCPU, io IBasicIO) *Interpreter {
	interp := &Interpreter{
		Vars:     NewVariableTable(),
		Arrays:   NewArrayTable(),
		Data:     NewDataManager(prog),
		ForStack: NewForStack(),
		Gosub:    NewGosubStack(),
		Funcs:    NewFunctionManager(),
		IO:       io,
		Mem:      m,
		CPU:      c,
		prog:     prog,
		lineOf:   map[int]int{},
	}
	interp.Builtins = NewBuiltins(m, c, func() int { return interp.printCol })
	for i, l := range prog.Lines {
		interp.lineOf[l.Number] = i
	}
	return interp
}

// Run executes the whole program from its first line until END/STOP or the
// statement stream runs out. Per spec.md §4.9, a runtime failure is caught
// here rather than propagated: it is formatted and written through IBasicIO,
// and Run itself returns nil, matching Applesoft's own RUN loop.
func (interp *Interpreter) Run() error {
	if len(interp.prog.Lines) == 0 {
		return nil
	}
	lineIdx, stmtIdx := 0, 0
	for lineIdx < len(interp.prog.Lines) {
		line := interp.prog.Lines[lineIdx]
		if stmtIdx >= len(line.Statements) {
			lineIdx++
			stmtIdx = 0
			continue
		}
		sig, err := interp.execStmt(line.Statements[stmtIdx], line.Number, lineIdx, stmtIdx)
		if err != nil {
			if rerr, ok := err.(*RuntimeError); ok && rerr.Line == 0 {
				rerr.Line = line.Number
			}
			interp.IO.WriteLine(err.Error())
			return nil
		}
		if sig.halted {
			return nil
		}
		if sig.jump != nil {
			lineIdx, stmtIdx = sig.jump.lineIndex, sig.jump.stmtIndex
			continue
		}
		stmtIdx++
	}
	return nil
}

// runStatements executes a nested statement list (an IF's Then branch),
// stopping at the first jump or halt and propagating it to the caller.
func (interp *Interpreter) runStatements(stmts []basic.Statement, line, lineIdx, stmtIdx int) (signal, error) {
	for _, st := range stmts {
		sig, err := interp.execStmt(st, line, lineIdx, stmtIdx)
		if err != nil {
			return signal{}, err
		}
		if sig.halted || sig.jump != nil {
			return sig, nil
		}
	}
	return signal{}, nil
}

func (interp *Interpreter) lineIndexFor(n int, line int) (int, error) {
	idx, ok := interp.lineOf[n]
	if !ok {
		return 0, errUndefinedStatement(line)
	}
	return idx, nil
}

func (interp *Interpreter) execStmt(st basic.Statement, line, lineIdx, stmtIdx int) (signal, error) {
	switch s := st.(type) {
	case basic.RemStmt:
		return signal{}, nil
	case basic.DataStmt:
		return signal{}, nil
	case basic.EndStmt:
		return signal{halted: true}, nil
	case basic.StopStmt:
		// STOP halts like END but, unlike END, reports BREAK IN <line>
		// through the same error-catching path Run() uses for every other
		// runtime failure.
		return signal{}, errRuntimeBreak(line)
	case basic.PrintStmt:
		return signal{}, interp.execPrint(s, line)
	case basic.InputStmt:
		return signal{}, interp.execInput(s, line)
	case basic.GetStmt:
		return signal{}, interp.execGet(s, line)
	case basic.LetStmt:
		return signal{}, interp.execLet(s, line)
	case basic.DimStmt:
		return signal{}, interp.execDim(s, line)
	case basic.ForStmt:
		return signal{}, interp.execFor(s, line, lineIdx, stmtIdx)
	case basic.NextStmt:
		return interp.execNext(s, line)
	case basic.IfStmt:
		v, err := interp.eval(s.Cond)
		if err != nil {
			return signal{}, err
		}
		if v.Truthy() {
			return interp.runStatements(s.Then, line, lineIdx, stmtIdx)
		}
		return signal{}, nil
	case basic.GotoStmt:
		return interp.execGoto(s.Line, line)
	case basic.GosubStmt:
		return interp.execGosub(s.Line, line, lineIdx, stmtIdx)
	case basic.ReturnStmt:
		return interp.execReturn(line)
	case basic.OnStmt:
		return interp.execOn(s, line, lineIdx, stmtIdx)
	case basic.ReadStmt:
		return signal{}, interp.execRead(s, line)
	case basic.RestoreStmt:
		return signal{}, interp.execRestore(s, line)
	case basic.DefFnStmt:
		interp.Funcs.Define(s.Name, s.Param, s.Body)
		return signal{}, nil
	case basic.ClearStmt:
		interp.Vars = NewVariableTable()
		interp.Arrays = NewArrayTable()
		interp.ForStack = NewForStack()
		interp.Gosub = NewGosubStack()
		return signal{}, nil
	case basic.HomeStmt:
		interp.IO.ClearScreen()
		interp.printCol = 0
		return signal{}, nil
	case basic.TextModeStmt:
		interp.Mem.Write(softSwitchTextMode, 0)
		return signal{}, nil
	case basic.GrStmt:
		interp.execGr(s)
		return signal{}, nil
	case basic.ColorStmt:
		return signal{}, interp.execColor(s, line)
	case basic.PlotStmt:
		return signal{}, interp.execPlot(s, line)
	case basic.DrawStmt:
		return signal{}, nil
	case basic.HtabStmt:
		v, err := interp.eval(s.Col)
		if err != nil {
			return signal{}, err
		}
		interp.printCol = v.AsInteger() - 1
		interp.IO.SetCursorPosition(interp.printCol, interp.IO.GetCursorRow())
		return signal{}, nil
	case basic.VtabStmt:
		v, err := interp.eval(s.Row)
		if err != nil {
			return signal{}, err
		}
		interp.IO.SetCursorPosition(interp.IO.GetCursorColumn(), v.AsInteger()-1)
		return signal{}, nil
	case basic.TextStyleStmt:
		switch s.Mode {
		case "INVERSE":
			interp.IO.SetTextMode(TextInverse)
		case "FLASH":
			interp.IO.SetTextMode(TextFlash)
		default:
			interp.IO.SetTextMode(TextNormal)
		}
		return signal{}, nil
	case basic.PokeStmt:
		return signal{}, interp.execPoke(s, line)
	case basic.CallStmt:
		return signal{}, interp.execCall(s, line)
	case basic.SleepStmt:
		return signal{}, nil
	case basic.AmpersandStmt:
		interp.CPU.Execute(0x03F5)
		return signal{}, nil
	case basic.MemStmt:
		return signal{}, nil
	default:
		return signal{}, errSyntax(line)
	}
}

func (interp *Interpreter) execGoto(target basic.Expr, line int) (signal, error) {
	v, err := interp.eval(target)
	if err != nil {
		return signal{}, err
	}
	idx, err := interp.lineIndexFor(v.AsInteger(), line)
	if err != nil {
		return signal{}, err
	}
	return signal{jump: &jump{lineIndex: idx, stmtIndex: 0}}, nil
}

func (interp *Interpreter) execGosub(target basic.Expr, line, lineIdx, stmtIdx int) (signal, error) {
	v, err := interp.eval(target)
	if err != nil {
		return signal{}, err
	}
	idx, err := interp.lineIndexFor(v.AsInteger(), line)
	if err != nil {
		return signal{}, err
	}
	interp.Gosub.Push(lineIdx, stmtIdx+1)
	return signal{jump: &jump{lineIndex: idx, stmtIndex: 0}}, nil
}

func (interp *Interpreter) execReturn(line int) (signal, error) {
	f, ok := interp.Gosub.Pop()
	if !ok {
		return signal{}, errReturnWithoutGosub(line)
	}
	return signal{jump: &jump{lineIndex: f.lineIndex, stmtIndex: f.statementIndex}}, nil
}

func (interp *Interpreter) execOn(s basic.OnStmt, line, lineIdx, stmtIdx int) (signal, error) {
	v, err := interp.eval(s.Expr)
	if err != nil {
		return signal{}, err
	}
	n := v.AsInteger()
	if n < 1 || n > len(s.Targets) {
		return signal{}, nil
	}
	if s.IsGosub {
		return interp.execGosub(s.Targets[n-1], line, lineIdx, stmtIdx)
	}
	return interp.execGoto(s.Targets[n-1], line)
}

func (interp *Interpreter) execFor(s basic.ForStmt, line, lineIdx, stmtIdx int) error {
	start, err := interp.eval(s.Start)
	if err != nil {
		return err
	}
	end, err := interp.eval(s.End)
	if err != nil {
		return err
	}
	step := Number(1)
	if s.Step != nil {
		step, err = interp.eval(s.Step)
		if err != nil {
			return err
		}
	}
	if err := interp.Vars.Set(s.Var, start, line); err != nil {
		return err
	}
	interp.ForStack.Push(s.Var, end, step, lineIdx, stmtIdx+1)
	return nil
}

func (interp *Interpreter) execNext(s basic.NextStmt, line int) (signal, error) {
	vars := s.Vars
	if len(vars) == 0 {
		vars = []string{""}
	}
	for _, v := range vars {
		var frame forFrame
		var ok bool
		if v == "" {
			frame, ok = interp.ForStack.Top()
		} else {
			frame, ok = interp.ForStack.Find(v)
		}
		if !ok {
			return signal{}, errNextWithoutFor(line)
		}
		step := frame.step.AsNumber()
		cur := interp.Vars.Get(frame.variable)
		next := cur.AsNumber() + step
		if err := interp.Vars.Set(frame.variable, Number(next), line); err != nil {
			return signal{}, err
		}
		end := frame.end.AsNumber()
		cont := (step >= 0 && next <= end) || (step < 0 && next >= end)
		if cont {
			return signal{jump: &jump{lineIndex: frame.returnLineIndex, stmtIndex: frame.returnStatementIndex}}, nil
		}
		interp.ForStack.Pop()
	}
	return signal{}, nil
}

func (interp *Interpreter) execRead(s basic.ReadStmt, line int) error {
	for _, target := range s.Vars {
		v, err := interp.Data.Read(line)
		if err != nil {
			return err
		}
		if err := interp.assign(target, v, line); err != nil {
			return err
		}
	}
	return nil
}

func (interp *Interpreter) execRestore(s basic.RestoreStmt, line int) error {
	if s.Line == nil {
		interp.Data.Restore()
		return nil
	}
	v, err := interp.eval(s.Line)
	if err != nil {
		return err
	}
	interp.Data.RestoreTo(v.AsInteger())
	return nil
}

func (interp *Interpreter) execLet(s basic.LetStmt, line int) error {
	v, err := interp.eval(s.Value)
	if err != nil {
		return err
	}
	return interp.assign(s.Target, v, line)
}

func (interp *Interpreter) execDim(s basic.DimStmt, line int) error {
	for _, e := range s.Vars {
		idx, ok := e.(basic.IndexExpr)
		if !ok {
			return errSyntax(line)
		}
		dims := make([]int, len(idx.Args))
		for i, a := range idx.Args {
			v, err := interp.eval(a)
			if err != nil {
				return err
			}
			dims[i] = v.AsInteger()
		}
		if err := interp.Arrays.Dim(idx.Name, dims, line); err != nil {
			return err
		}
	}
	return nil
}

// printableText renders v the way PRINT does, which differs from plain
// string coercion (Value.AsString, what STR$ uses) by giving a non-negative
// number a leading space — Applesoft's sign column.
func printableText(v Value) string {
	if v.Kind == NumberKind && v.Num >= 0 {
		return " " + FormatNumber(v.Num)
	}
	return v.AsString()
}

func (interp *Interpreter) execPrint(s basic.PrintStmt, line int) error {
	suppressNewline := false
	for _, item := range s.Items {
		if item.Expr != nil {
			v, err := interp.eval(item.Expr)
			if err != nil {
				return err
			}
			text := printableText(v)
			interp.IO.Write(text)
			interp.printCol += len(text)
		}
		if item.Separator == "," {
			interp.printTab()
		}
		suppressNewline = item.Separator == "," || item.Separator == ";"
	}
	if !suppressNewline {
		interp.IO.WriteLine("")
		interp.printCol = 0
	}
	return nil
}

// printTab advances to the next 16-column print zone, Applesoft's comma
// behavior in PRINT.
func (interp *Interpreter) printTab() {
	next := (interp.printCol/16 + 1) * 16
	for interp.printCol < next {
		interp.IO.Write(" ")
		interp.printCol++
	}
}

func (interp *Interpreter) execInput(s basic.InputStmt, line int) error {
	raw, err := interp.IO.ReadLine(s.Prompt)
	if err != nil {
		return err
	}
	parts := splitInputFields(raw, len(s.Vars))
	for i, target := range s.Vars {
		var text string
		if i < len(parts) {
			text = parts[i]
		}
		v := inputValueFor(target, text)
		if err := interp.assign(target, v, line); err != nil {
			return err
		}
	}
	return nil
}

func inputValueFor(target basic.Expr, text string) Value {
	if wantsStringTarget(target) {
		return String(text)
	}
	return Number(leadingNumber(text))
}

func wantsStringTarget(e basic.Expr) bool {
	name := ""
	switch t := e.(type) {
	case basic.VarExpr:
		name = t.Name
	case basic.IndexExpr:
		name = t.Name
	}
	return suffixOf(CanonicalName(name)) == '$'
}

func splitInputFields(raw string, want int) []string {
	var out []string
	start := 0
	for i := 0; i < len(raw) && len(out) < want-1; i++ {
		if raw[i] == ',' {
			out = append(out, trimSpace(raw[start:i]))
			start = i + 1
		}
	}
	out = append(out, trimSpace(raw[start:]))
	return out
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}

func (interp *Interpreter) execGet(s basic.GetStmt, line int) error {
	b, err := interp.IO.ReadChar()
	if err != nil {
		return err
	}
	var v Value
	if wantsStringTarget(s.Var) {
		v = String(string(b))
	} else {
		v = Number(float64(b))
	}
	return interp.assign(s.Var, v, line)
}

func (interp *Interpreter) execGr(s basic.GrStmt) {
	switch s.HiRes {
	case 0:
		interp.Mem.Write(softSwitchGraphics, 0)
		interp.Mem.Write(softSwitchLoRes, 0)
	default:
		interp.Mem.Write(softSwitchGraphics, 0)
		interp.Mem.Write(softSwitchHiRes, 0)
	}
	interp.IO.ClearScreen()
}

func (interp *Interpreter) execColor(s basic.ColorStmt, line int) error {
	v, err := interp.eval(s.Value)
	if err != nil {
		return err
	}
	interp.curColor = v.AsInteger() & 0x0F
	return nil
}

// execPlot pokes a lo-res color nibble into screen memory at the
// conventional 40x40 lo-res address (two rows share a byte).
func (interp *Interpreter) execPlot(s basic.PlotStmt, line int) error {
	x, err := interp.eval(s.X)
	if err != nil {
		return err
	}
	y, err := interp.eval(s.Y)
	if err != nil {
		return err
	}
	if s.HiRes {
		addr := hiResScreenBase + uint32(y.AsInteger())*40 + uint32(x.AsInteger())/2
		interp.Mem.Write(addr, byte(interp.curColor))
		return nil
	}
	addr := loResAddress(x.AsInteger(), y.AsInteger()/2)
	existing := interp.Mem.Read(addr)
	nibble := byte(interp.curColor & 0x0F)
	if y.AsInteger()%2 == 0 {
		interp.Mem.Write(addr, (existing&0xF0)|nibble)
	} else {
		interp.Mem.Write(addr, (existing&0x0F)|(nibble<<4))
	}
	return nil
}

// loResAddress implements the Apple II's well-known interleaved text/lo-res
// screen layout: 8 groups of 3 rows, each row's 40 columns contiguous.
func loResAddress(col, rowPair int) uint32 {
	group := rowPair % 8
	third := rowPair / 8
	return uint32(loResScreenBase) + uint32(group)*0x80 + uint32(third)*0x28 + uint32(col)
}

func (interp *Interpreter) execPoke(s basic.PokeStmt, line int) error {
	addr, err := interp.eval(s.Addr)
	if err != nil {
		return err
	}
	val, err := interp.eval(s.Val)
	if err != nil {
		return err
	}
	a := addr.AsInteger()
	if a < 0 || a > 0xFFFF {
		return errIllegalQuantity(line)
	}
	interp.Mem.Write(uint32(a), byte(val.AsInteger()))
	return nil
}

// romBellAddr is the Apple II monitor ROM's BELL entry point ($FF3A, the
// target of Applesoft's well-known "CALL -198"). CALLing it rings the
// speaker directly rather than stepping the CPU through the ROM routine.
const romBellAddr = 0xFF3A

func (interp *Interpreter) execCall(s basic.CallStmt, line int) error {
	addr, err := interp.eval(s.Addr)
	if err != nil {
		return err
	}
	a := addr.AsInteger()
	if a < 0 {
		a += 0x10000
	}
	if a < 0 || a > 0xFFFF {
		return errIllegalQuantity(line)
	}
	if uint16(a) == romBellAddr {
		interp.IO.Beep()
		return nil
	}
	interp.CPU.Execute(uint16(a))
	return nil
}

// assign writes v into target, which is either a bare VarExpr or an
// IndexExpr naming an array cell.
func (interp *Interpreter) assign(target basic.Expr, v Value, line int) error {
	switch t := target.(type) {
	case basic.VarExpr:
		return interp.Vars.Set(t.Name, v, line)
	case basic.IndexExpr:
		idx, err := interp.evalIndices(t.Args, line)
		if err != nil {
			return err
		}
		return interp.Arrays.Set(t.Name, idx, v, line)
	default:
		return errSyntax(line)
	}
}

func (interp *Interpreter) evalIndices(args []basic.Expr, line int) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := interp.eval(a)
		if err != nil {
			return nil, err
		}
		out[i] = v.AsInteger()
	}
	return out, nil
}

// eval evaluates an expression to a Value, with no associated source line
// of its own — errors raised here carry line 0, and Run stamps the current
// program line onto any RuntimeError that reaches it with line 0.
func (interp *Interpreter) eval(e basic.Expr) (Value, error) {
	switch t := e.(type) {
	case basic.NumberExpr:
		return Number(t.Value), nil
	case basic.StringExpr:
		return String(t.Value), nil
	case basic.VarExpr:
		return interp.Vars.Get(t.Name), nil
	case basic.IndexExpr:
		idx, err := interp.evalIndices(t.Args, 0)
		if err != nil {
			return Value{}, err
		}
		return interp.Arrays.Get(t.Name, idx, 0)
	case basic.UnaryExpr:
		v, err := interp.eval(t.Expr)
		if err != nil {
			return Value{}, err
		}
		if t.Op == "NOT" {
			if v.Truthy() {
				return Number(0), nil
			}
			return Number(1), nil
		}
		return Number(-v.AsNumber()), nil
	case basic.BinaryExpr:
		return interp.evalBinary(t)
	case basic.CallExpr:
		args := make([]Value, len(t.Args))
		for i, a := range t.Args {
			v, err := interp.eval(a)
			if err != nil {
				return Value{}, err
			}
			args[i] = v
		}
		return interp.Builtins.Call(t.Name, args, 0)
	case basic.FnCallExpr:
		return interp.evalFnCall(t)
	default:
		return Value{}, errSyntax(0)
	}
}

func (interp *Interpreter) evalFnCall(t basic.FnCallExpr) (Value, error) {
	param, body, ok := interp.Funcs.Lookup(t.Name)
	if !ok {
		return Value{}, errSyntax(0)
	}
	arg, err := interp.eval(t.Arg)
	if err != nil {
		return Value{}, err
	}
	saved := interp.Vars.Get(param)
	if err := interp.Vars.Set(param, arg, 0); err != nil {
		return Value{}, err
	}
	result, err := interp.eval(body)
	interp.Vars.Set(param, saved, 0)
	return result, err
}

func (interp *Interpreter) evalBinary(t basic.BinaryExpr) (Value, error) {
	left, err := interp.eval(t.Left)
	if err != nil {
		return Value{}, err
	}
	if t.Op == "AND" || t.Op == "OR" {
		if t.Op == "AND" && !left.Truthy() {
			return Number(0), nil
		}
		if t.Op == "OR" && left.Truthy() {
			return Number(1), nil
		}
		right, err := interp.eval(t.Right)
		if err != nil {
			return Value{}, err
		}
		if right.Truthy() {
			return Number(1), nil
		}
		return Number(0), nil
	}
	right, err := interp.eval(t.Right)
	if err != nil {
		return Value{}, err
	}
	switch t.Op {
	case "+":
		return Add(left, right), nil
	case "-":
		return Number(left.AsNumber() - right.AsNumber()), nil
	case "*":
		return Number(left.AsNumber() * right.AsNumber()), nil
	case "/":
		if right.AsNumber() == 0 {
			return Value{}, errDivisionByZero(0)
		}
		return Number(left.AsNumber() / right.AsNumber()), nil
	case "^":
		return Number(math.Pow(left.AsNumber(), right.AsNumber())), nil
	case "=":
		return boolValue(Compare(left, right) == 0), nil
	case "<>":
		return boolValue(Compare(left, right) != 0), nil
	case "<":
		return boolValue(Compare(left, right) < 0), nil
	case ">":
		return boolValue(Compare(left, right) > 0), nil
	case "<=":
		return boolValue(Compare(left, right) <= 0), nil
	case ">=":
		return boolValue(Compare(left, right) >= 0), nil
	}
	return Value{}, fmt.Errorf("runtime: unknown operator %q", t.Op)
}

func boolValue(b bool) Value {
	if b {
		return Number(1)
	}
	return Number(0)
}
