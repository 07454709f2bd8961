package app

import (
	"github.com/recalchq/recalc/internal/lang"
	"github.com/recalchq/recalc/internal/lang/hclexpr"
	"github.com/recalchq/recalc/internal/lang/starlang"
	"github.com/recalchq/recalc/internal/registry"
)

// Names accepted by Config.Language.
const (
	LanguageHCL      = "hcl"
	LanguageStarlark = "starlark"
)

// defaultRegistry returns a registry holding the built-in language adapters.
func defaultRegistry() *registry.Registry {
	reg := registry.New()
	reg.Register(LanguageHCL, &registry.Adapter{
		NewParser:      func() lang.Parser { return hclexpr.NewParser() },
		NewInterpreter: func() lang.Interpreter { return hclexpr.NewInterpreter() },
	})
	reg.Register(LanguageStarlark, &registry.Adapter{
		NewParser:      func() lang.Parser { return starlang.NewParser() },
		NewInterpreter: func() lang.Interpreter { return starlang.NewInterpreter() },
	})
	return reg
}
