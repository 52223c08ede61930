package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"treep/ast"
	"treep/internal/diagnostics"
	"treep/interp"
	"treep/macro"
	"treep/parser"
	"treep/processors"
	"treep/types"
)

func main() {
	expand := flag.Bool("expand", false, "stop after macro expansion and print the ET")
	printAST := flag.Bool("ast", false, "print the ET as JSON after normalization")
	printTypes := flag.Bool("types", false, "print inferred top-level schemes")
	_ = flag.String("o", "", "unused: the language has no separate compilation")
	flag.Parse()

	if len(flag.Args()) != 1 {
		fmt.Fprintln(os.Stderr, "usage: treep [-expand] [-ast] [-types] <source-file>")
		os.Exit(1)
	}

	log := &diagnostics.Log{}
	run(flag.Args()[0], *expand, *printAST, *printTypes, log)
	log.Flush(os.Stderr)
	if log.HasErrors() {
		os.Exit(1)
	}
}

func run(path string, expand, printAST, printTypes bool, log *diagnostics.Log) {
	defer func() {
		x := recover()
		if x == nil {
			return
		}
		if e, ok := x.(ast.SystemError); ok {
			log.Err(fmt.Errorf("%s", e.Error()))
			return
		}
		panic(x)
	}()

	src, err := os.ReadFile(path)
	if err != nil {
		log.Err(err)
		return
	}

	decls, err := parser.Parse(path, string(src))
	if err != nil {
		log.Err(err)
		return
	}

	els, err := processors.NormalizeProgram(decls)
	if err != nil {
		log.Err(err)
		return
	}

	if printAST {
		printJSON(els)
		return
	}

	expanded := make([]*ast.Element, len(els))
	for i, el := range els {
		e, err := macro.Expand(el)
		if err != nil {
			log.Err(err)
			return
		}
		expanded[i] = e
	}

	if expand {
		printJSON(expanded)
		return
	}

	env, err := types.Infer(expanded)
	if err != nil {
		log.Err(err)
		return
	}

	if printTypes {
		printSchemes(env, types.Builtins())
		return
	}

	v, err := interp.Run(expanded)
	if err != nil {
		log.Err(err)
		return
	}
	log.Trace("%s", v.String())
}

func printJSON(els []*ast.Element) {
	b, err := json.MarshalIndent(els, "", "  ")
	if err != nil {
		panic(ast.SystemError{Message: err.Error()})
	}
	fmt.Println(string(b))
}

// printSchemes prints only user-defined top-level bindings, skipping
// the builtin operator and function signatures seeded before
// inference ran.
func printSchemes(env, builtins ast.TypeEnv) {
	names := make([]string, 0, len(env))
	for name := range env {
		if _, isBuiltin := builtins[name]; isBuiltin {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		scheme, _ := env.Lookup(name)
		fmt.Printf("%s : %s\n", name, scheme.Type)
	}
}
