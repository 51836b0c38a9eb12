package glue

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gluec/internal/artifact"
	"gluec/internal/host"
)

// NoErrorMessage is substituted for $error when a parse failure carried no
// message of its own.
const NoErrorMessage = "<no error message>"

// ErrDispatch marks a failure while evaluating event arguments at dispatch
// time (a record missing a declared field, or missing context).
var ErrDispatch = errors.New("dispatch error")

// DispatchContext carries everything available at one hook occurrence.
type DispatchContext struct {
	Record   *host.Record
	Conn     *host.Connection
	IsOrig   bool
	File     *host.File
	ErrorMsg string // %error hooks only; empty means no message available
}

type argEval func(*DispatchContext) (host.Value, error)

type compiledEvent struct {
	hook  string
	event string
	args  []argEval
}

// Adapter executes a synthesized glue plan: given a hook occurrence on a
// parsed unit, it evaluates the declared arguments in declaration order and
// raises the mapped events.
type Adapter struct {
	byUnit map[string][]compiledEvent
}

// NewAdapter compiles a plan's event specs into an executable adapter.
func NewAdapter(plan *artifact.GluePlan) (*Adapter, error) {
	a := &Adapter{byUnit: make(map[string][]compiledEvent)}
	for _, spec := range plan.Events {
		ce := compiledEvent{hook: spec.Hook, event: spec.Event}
		for _, raw := range spec.Args {
			eval, err := compileArg(raw)
			if err != nil {
				return nil, fmt.Errorf("event %s: %w", spec.Event, err)
			}
			ce.args = append(ce.args, eval)
		}
		a.byUnit[spec.Unit] = append(a.byUnit[spec.Unit], ce)
	}
	return a, nil
}

// Done raises every %done event bound to unit.
func (a *Adapter) Done(d host.Dispatcher, unit string, ctx *DispatchContext) error {
	return a.fire(d, unit, HookDone, ctx)
}

// Field raises every hook bound to one named field of unit.
func (a *Adapter) Field(d host.Dispatcher, unit, field string, ctx *DispatchContext) error {
	return a.fire(d, unit, field, ctx)
}

// Error raises every %error event bound to unit. Bindings that declare a
// $error argument receive ctx.ErrorMsg, or NoErrorMessage when none was
// available; bindings without one fire all the same.
func (a *Adapter) Error(d host.Dispatcher, unit string, ctx *DispatchContext) error {
	return a.fire(d, unit, HookError, ctx)
}

func (a *Adapter) fire(d host.Dispatcher, unit, hook string, ctx *DispatchContext) error {
	for _, ce := range a.byUnit[unit] {
		if ce.hook != hook {
			continue
		}
		args := make([]host.Value, 0, len(ce.args))
		for _, eval := range ce.args {
			v, err := eval(ctx)
			if err != nil {
				return fmt.Errorf("event %s: %w", ce.event, err)
			}
			args = append(args, v)
		}
		if err := d.Raise(ce.event, args); err != nil {
			return err
		}
	}
	return nil
}

// compileArg turns one serialized argument expression back into an
// evaluator. The serialized form is exactly what ArgExpr.Text produces.
func compileArg(raw string) (argEval, error) {
	switch {
	case raw == "$conn":
		return func(ctx *DispatchContext) (host.Value, error) {
			if ctx.Conn == nil {
				return host.Value{}, fmt.Errorf("%w: no connection in context", ErrDispatch)
			}
			return host.ConnVal(ctx.Conn), nil
		}, nil

	case raw == "$is_orig":
		return func(ctx *DispatchContext) (host.Value, error) {
			return host.BoolVal(ctx.IsOrig), nil
		}, nil

	case raw == "$file":
		return func(ctx *DispatchContext) (host.Value, error) {
			if ctx.File == nil {
				return host.Value{}, fmt.Errorf("%w: no file in context", ErrDispatch)
			}
			return host.FileVal(ctx.File), nil
		}, nil

	case raw == "$error":
		return func(ctx *DispatchContext) (host.Value, error) {
			msg := ctx.ErrorMsg
			if msg == "" {
				msg = NoErrorMessage
			}
			return host.StringVal(msg), nil
		}, nil

	case raw == "self":
		return func(ctx *DispatchContext) (host.Value, error) {
			if ctx.Record == nil {
				return host.Value{}, fmt.Errorf("%w: no parsed unit in context", ErrDispatch)
			}
			return host.RecordVal(ctx.Record), nil
		}, nil

	case strings.HasPrefix(raw, "self."):
		path := strings.Split(raw[len("self."):], ".")
		return func(ctx *DispatchContext) (host.Value, error) {
			if ctx.Record == nil {
				return host.Value{}, fmt.Errorf("%w: no parsed unit in context", ErrDispatch)
			}
			v := host.RecordVal(ctx.Record)
			for _, part := range path {
				if v.Kind != host.KindRecord || v.Record == nil {
					return host.Value{}, fmt.Errorf("%w: %s is not a record", ErrDispatch, raw)
				}
				next, ok := v.Record.Get(part)
				if !ok {
					return host.Value{}, fmt.Errorf("%w: record has no field %s", ErrDispatch, part)
				}
				v = next
			}
			return v, nil
		}, nil

	case strings.HasPrefix(raw, "\""):
		str := strings.TrimSuffix(strings.TrimPrefix(raw, "\""), "\"")
		return func(*DispatchContext) (host.Value, error) {
			return host.StringVal(str), nil
		}, nil

	default:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad argument expression %q", ErrDispatch, raw)
		}
		return func(*DispatchContext) (host.Value, error) {
			return host.IntVal(v), nil
		}, nil
	}
}
