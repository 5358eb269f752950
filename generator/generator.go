package generator

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/thanm/calltestgen/chacha"
)

// ErrBadTunables is wrapped by every tunables validation failure.
var ErrBadTunables = errors.New("bad tunables")

type TunableParams struct {
	// number of functions in the bank, must be at least 1
	NumFuncs int

	// number of indirect calls emitted in the driver
	NumOps int

	// module and field name of the imported timer toggle
	TimerModule string
	TimerName   string

	// initial and maximum size of the exported memory
	MemoryPages int

	// Whether to emit the user_entrypoint export stub.
	EntrypointStub bool

	// Redraw function constants that come out as zero, so that the
	// final division can never trap. Off by default so that seeded
	// output matches existing fixtures.
	NonZeroCheck bool
}

var tunables = TunableParams{
	NumFuncs:       2048,
	NumOps:         512,
	TimerModule:    "pricer",
	TimerName:      "toggle_timer",
	MemoryPages:    0,
	EntrypointStub: true,
	NonZeroCheck:   false,
}

func DefaultTunables() TunableParams {
	return tunables
}

func checkTunables(t TunableParams) error {
	if t.NumFuncs < 1 {
		return fmt.Errorf("%w: function count %d, need at least 1", ErrBadTunables, t.NumFuncs)
	}
	if t.NumOps < 0 {
		return fmt.Errorf("%w: negative call count %d", ErrBadTunables, t.NumOps)
	}
	if t.MemoryPages < 0 {
		return fmt.Errorf("%w: negative memory size %d", ErrBadTunables, t.MemoryPages)
	}
	if t.TimerModule == "" || t.TimerName == "" {
		return fmt.Errorf("%w: empty timer import name", ErrBadTunables)
	}
	return nil
}

func SetTunables(t TunableParams) error {
	if err := checkTunables(t); err != nil {
		return err
	}
	tunables = t
	return nil
}

var Verbctl int = 0

func verb(vlevel int, s string, a ...interface{}) {
	if Verbctl >= vlevel {
		log.Debugf(s, a...)
	}
}

// Source is the random stream consumed by the generator. Function
// constants come from Int64, call targets from Intn.
type Source interface {
	Int64() int64
	Intn(n int) int
}

// Stats describes a generated module.
type Stats struct {
	Funcs     int
	Calls     int
	Resampled int

	// number of Int64 and Intn draws made against the source
	ConstDraws  int
	TargetDraws int

	// LastCall is the index of the last function the driver calls, or
	// -1 if the driver makes no calls.
	LastCall int

	// Trap is set when the module would divide by zero at the end of
	// the driver.
	Trap bool
}

type genstate struct {
	t      TunableParams
	wr     *wraprand
	consts []int64
	stats  Stats
}

// Generate writes the call benchmark module for seed to w.
func Generate(w io.Writer, seed uint64, t TunableParams) error {
	_, err := GenerateWith(w, chacha.New(seed), t)
	return err
}

// GenerateWith writes the module using src for all random draws. The
// tunables are checked before anything is written, and the module is
// written with a single Write call.
func GenerateWith(w io.Writer, src Source, t TunableParams) (Stats, error) {
	if err := checkTunables(t); err != nil {
		return Stats{}, err
	}
	s := &genstate{t: t, wr: NewWrapRand(src)}
	var b bytes.Buffer
	s.emitModule(&b)
	if _, err := w.Write(b.Bytes()); err != nil {
		return s.stats, fmt.Errorf("writing module: %w", err)
	}
	return s.stats, nil
}

func (s *genstate) emitModule(b *bytes.Buffer) {
	for _, d := range s.genDecls() {
		d.emit(b)
	}
}

// genDecls builds the module in emission order. All function constants
// are drawn before the first call target.
func (s *genstate) genDecls() []decl {
	decls := []decl{
		importDecl{module: s.t.TimerModule, name: s.t.TimerName, id: timerID},
		globalDecl{id: checkID},
	}
	verb(1, "generating %d functions", s.t.NumFuncs)
	s.consts = make([]int64, s.t.NumFuncs)
	for i := range s.consts {
		s.consts[i] = s.genConst()
		decls = append(decls, setterFunc{global: checkID, value: s.consts[i]})
	}

	decls = append(decls, memoryDecl{pages: s.t.MemoryPages})
	if s.t.EntrypointStub {
		decls = append(decls, entrypointStub{})
	}
	decls = append(decls, startDecl{id: driverID})

	verb(1, "generating %d calls", s.t.NumOps)
	calls := make([]int, s.t.NumOps)
	for i := range calls {
		calls[i] = s.wr.Intn(s.t.NumFuncs)
	}
	decls = append(decls, driverFunc{id: driverID, timer: timerID, global: checkID, calls: calls})

	s.stats.Funcs = s.t.NumFuncs
	s.stats.ConstDraws = s.wr.i64calls
	s.stats.TargetDraws = s.wr.intncalls
	s.stats.Calls = len(calls)
	s.stats.LastCall = -1
	if len(calls) > 0 {
		s.stats.LastCall = calls[len(calls)-1]
		s.stats.Trap = s.consts[s.stats.LastCall] == 0
	} else {
		// $check still holds its initial value.
		s.stats.Trap = true
	}
	return decls
}

func (s *genstate) genConst() int64 {
	v := s.wr.Int64()
	for s.t.NonZeroCheck && v == 0 {
		verb(2, "redrawing zero constant")
		s.stats.Resampled++
		v = s.wr.Int64()
	}
	return v
}
