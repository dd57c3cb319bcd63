// Blocks CLI - compile and run Blocks programs.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/blocks/manifest"
	"github.com/chazu/blocks/pkg/bytecode"
	"github.com/chazu/blocks/pkg/bytecode/dist"
	"github.com/chazu/blocks/pkg/store"
)

const historyFile = ".blocks_history"

var log = commonlog.GetLogger("blocks.cli")

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	interactive := flag.Bool("i", false, "Start interactive REPL")
	disasm := flag.Bool("disasm", false, "Print disassembly instead of running")
	trace := flag.Bool("trace", false, "Trace every executed instruction")
	noCache := flag.Bool("no-cache", false, "Skip the compile cache")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: blocks [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Compiles and runs a Blocks source file. With no file, runs the\n")
		fmt.Fprintf(os.Stderr, "project entry from blocks.toml if one is found.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  blocks prog.blk           # Run prog.blk\n")
		fmt.Fprintf(os.Stderr, "  blocks -disasm prog.blk   # Show the compiled bytecode\n")
		fmt.Fprintf(os.Stderr, "  blocks -i                 # Start REPL\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	if *interactive {
		runREPL(*trace)
		return
	}

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading blocks.toml: %v\n", err)
		os.Exit(1)
	}

	path := flag.Arg(0)
	if path == "" && m != nil {
		path = m.EntryPath()
	}
	if path == "" {
		flag.Usage()
		os.Exit(2)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		os.Exit(1)
	}

	prog, err := compileWithCache(string(src), m, *noCache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if *disasm {
		fmt.Print(bytecode.Disassemble(prog))
		return
	}

	useTrace := *trace
	stackSize := 0
	if m != nil {
		if m.Run.Trace {
			useTrace = true
		}
		stackSize = m.Run.StackSize
	}

	vm := bytecode.NewVMWithStackSize(prog, bytecode.DefaultGlobals(func(s string) {
		fmt.Println(s)
	}), stackSize)
	if useTrace {
		vm.Trace = os.Stderr
	}
	if err := vm.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// compileWithCache compiles source, fetching from and filling the
// artifact cache when a manifest enables one.
func compileWithCache(src string, m *manifest.Manifest, noCache bool) (*bytecode.Program, error) {
	if noCache || m == nil || !m.Cache.Enabled {
		return bytecode.CompileSource(src)
	}

	cachePath := m.CachePath()
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		log.Warningf("cannot create cache directory: %v", err)
		return bytecode.CompileSource(src)
	}

	s, err := store.Open(cachePath)
	if err != nil {
		log.Warningf("cannot open cache: %v", err)
		return bytecode.CompileSource(src)
	}
	defer s.Close()

	hash := store.HashSource(src)
	if data, err := s.Get(hash); err == nil {
		prog, err := dist.UnmarshalProgram(data)
		if err == nil {
			log.Infof("cache hit for %s", hash[:12])
			return prog, nil
		}
		log.Warningf("discarding corrupt cached artifact: %v", err)
	}

	prog, err := bytecode.CompileSource(src)
	if err != nil {
		return nil, err
	}

	if data, err := dist.MarshalProgram(prog); err == nil {
		if _, err := s.Put(hash, data); err != nil {
			log.Warningf("cannot store artifact: %v", err)
		}
	}

	return prog, nil
}

// runREPL reads expressions line by line, keeping one global
// environment alive across inputs.
func runREPL(trace bool) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := filepath.Join(os.TempDir(), historyFile)
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
	}
	if f, err := os.Open(histPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	globals := bytecode.DefaultGlobals(func(s string) {
		fmt.Println(s)
	})

	fmt.Println("Blocks REPL. Ctrl+C cancels input, Ctrl+D exits.")
	for {
		input, err := line.Prompt("==> ")
		if err != nil {
			fmt.Println()
			return
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		prog, err := bytecode.CompileSource(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			continue
		}

		vm := bytecode.NewVM(prog, globals)
		if trace {
			vm.Trace = os.Stderr
		}
		if err := vm.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			continue
		}
		if v, ok := vm.TopOfStack(); ok {
			fmt.Println(v.String())
		}
	}
}
