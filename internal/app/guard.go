package app

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// modulePath prefixes every function defined in this module.
const modulePath = "github.com/p-n-ai/pai-parametric/"

// FaultMessage replaces the content area after a first-party fault.
const FaultMessage = "Une erreur s'est produite. Détails techniques: "

// Fault is a recovered panic.
type Fault struct {
	Value any
	// Origin is the function that panicked.
	Origin string
	// ThirdParty is set when Origin lies outside this module.
	ThirdParty bool
}

func (f *Fault) Error() string {
	return fmt.Sprintf("panic in %s: %v", f.Origin, f.Value)
}

// Guard runs fn and recovers a panic into a Fault. First-party faults are
// logged and shown in the content area with a retry on the current route;
// third-party faults are only logged at debug level.
func (a *App) Guard(op string, fn func()) (fault *Fault) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		origin := panicOrigin()
		fault = &Fault{
			Value:      v,
			Origin:     origin,
			ThirdParty: origin != "" && !strings.HasPrefix(origin, modulePath),
		}
		if fault.ThirdParty {
			slog.Debug("suppressed third-party fault", "op", op, "origin", origin, "panic", v)
			return
		}
		slog.Error("recovered fault", "op", op, "origin", origin, "panic", v)
		current, _ := a.Router.State()
		a.Document.ShowError(FaultMessage+fmt.Sprint(v), current)
	}()
	fn()
	return nil
}

// panicOrigin returns the first non-runtime function below the panic on the
// calling goroutine's stack. It must be called from the deferred function.
func panicOrigin() string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	panicking := false
	for {
		f, more := frames.Next()
		switch {
		case f.Function == "runtime.gopanic":
			panicking = true
		case panicking && !strings.HasPrefix(f.Function, "runtime."):
			return f.Function
		}
		if !more {
			return ""
		}
	}
}
