package generator

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
)

const debug = false

func NewWrapRand(src Source) *wraprand {
	return &wraprand{src: src}
}

// wraprand counts the draws made against a Source, so that two runs can
// be checked for identical stream consumption.
type wraprand struct {
	src       Source
	i64calls  int
	intncalls int

	// set once an Intn draw has happened; an Int64 draw after that
	// means constants and call targets were interleaved
	intnSeen    bool
	interleaved bool

	tag   string
	calls []string
}

func (w *wraprand) captureCall(tag string) {
	call := tag + ":\n"
	pc := make([]uintptr, 10)
	n := runtime.Callers(1, pc)
	if n == 0 {
		panic("why?")
	}
	pc = pc[:n]
	frames := runtime.CallersFrames(pc)
	for {
		frame, more := frames.Next()
		if strings.Contains(frame.File, "testing.") {
			break
		}
		call += fmt.Sprintf("%s %s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	w.calls = append(w.calls, call)
}

func (w *wraprand) Int64() int64 {
	if debug {
		w.captureCall("Int64")
	}
	if w.intnSeen {
		w.interleaved = true
	}
	w.i64calls++
	return w.src.Int64()
}

func (w *wraprand) Intn(n int) int {
	if debug {
		w.captureCall("Intn")
	}
	w.intnSeen = true
	w.intncalls++
	return w.src.Intn(n)
}

func (w *wraprand) emitCalls(fn string) {
	outf, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		panic(err)
	}
	for _, c := range w.calls {
		fmt.Fprint(outf, c)
	}
	outf.Close()
}

func (w *wraprand) Equal(w2 *wraprand) bool {
	return w.i64calls == w2.i64calls &&
		w.intncalls == w2.intncalls
}

func (w *wraprand) Check(w2 *wraprand) {
	if !w.Equal(w2) {
		t := "w"
		if w.tag != "" {
			t = w.tag
		}
		t2 := "w2"
		if w2.tag != "" {
			t2 = w2.tag
		}
		log.Errorf("wraprand consistency check failed: %s: {i64:%d i:%d} %s: {i64:%d i:%d}",
			t, w.i64calls, w.intncalls, t2, w2.i64calls, w2.intncalls)
		if debug {
			f := fmt.Sprintf("/tmp/%s.txt", t)
			f2 := fmt.Sprintf("/tmp/%s.txt", t2)
			w.emitCalls(f)
			w2.emitCalls(f2)
			log.Errorf("emitted calls to %s, %s", f, f2)
		}
		panic("bad")
	}
}
