package starlang

import (
	"context"
	"fmt"

	"go.starlark.net/starlark"

	starlarkjson "go.starlark.net/lib/json"
	starlarkmath "go.starlark.net/lib/math"
	starlarktime "go.starlark.net/lib/time"

	"github.com/recalchq/recalc/internal/lang"
)

// Interpreter runs Starlark code against the equation environment. Each call
// uses a fresh thread; load() resolves the bundled math, json, and time
// modules.
type Interpreter struct{}

// NewInterpreter returns a ready Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Interpret implements lang.Interpreter. Eval mode evaluates one expression;
// exec mode runs a file and writes every resulting global back into the
// environment. Cancelling ctx cancels the running thread.
func (i *Interpreter) Interpret(ctx context.Context, code string, env lang.Env, mode lang.InterpretMode) lang.InterpretResult {
	if err := ctx.Err(); err != nil {
		return lang.InterpretResult{
			Mode:    mode,
			Status:  lang.StatusValueError,
			Message: fmt.Sprintf("execution cancelled: %s", err),
		}
	}

	thread := &starlark.Thread{Name: "recalc", Load: loadModule}
	stop := watchCancel(ctx, thread)
	defer stop()

	predeclared := snapshotEnv(env)

	if mode == lang.ModeEval {
		value, err := starlark.EvalOptions(fileOptions, thread, sourceName, code, predeclared)
		if err != nil {
			return interpretFailure(mode, err)
		}
		return lang.InterpretResult{Mode: mode, Status: lang.StatusSuccess, Value: NewValue(value)}
	}

	globals, err := starlark.ExecFileOptions(fileOptions, thread, sourceName, code, predeclared)
	if err != nil {
		return interpretFailure(mode, err)
	}
	for name, value := range globals {
		env.Set(name, NewValue(value))
	}
	return lang.InterpretResult{Mode: mode, Status: lang.StatusSuccess}
}

// snapshotEnv exposes the environment as predeclared globals. Values from a
// different host language are skipped; referencing one fails resolution as
// an undefined name.
func snapshotEnv(env lang.Env) starlark.StringDict {
	dict := make(starlark.StringDict, env.Len())
	for _, name := range env.Keys() {
		if value, ok := env.Get(name); ok {
			if sv, ok := value.(*Value); ok {
				dict[name] = sv.Starlark()
			}
		}
	}
	return dict
}

// watchCancel cancels the thread when ctx is done. The returned stop
// function releases the watcher.
func watchCancel(ctx context.Context, thread *starlark.Thread) func() {
	done := ctx.Done()
	if done == nil {
		return func() {}
	}
	stop := make(chan struct{})
	go func() {
		select {
		case <-done:
			thread.Cancel(ctx.Err().Error())
		case <-stop:
		}
	}()
	return func() { close(stop) }
}

// loadModule serves load() statements from the bundled Starlark libraries.
func loadModule(_ *starlark.Thread, module string) (starlark.StringDict, error) {
	switch module {
	case "math":
		return starlarkmath.Module.Members, nil
	case "json":
		return starlarkjson.Module.Members, nil
	case "time":
		return starlarktime.Module.Members, nil
	default:
		return nil, fmt.Errorf("no module named %q", module)
	}
}

func interpretFailure(mode lang.InterpretMode, err error) lang.InterpretResult {
	return lang.InterpretResult{Mode: mode, Status: classifyError(err), Message: errorMessage(err)}
}
