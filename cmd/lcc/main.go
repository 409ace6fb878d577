// Command lcc is the driver for the LCC toolchain: it dispatches an input
// file to the assembler, linker or interpreter by extension, and writes the
// .lst/.bst listing artifacts the core subsystems leave behind.
//
// The argument parser and the name.nnn collaborator are, per design,
// thin glue around the three core subsystems (asm, link, interp) rather
// than part of them.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/lcc-toolchain/lcc/asm"
	"github.com/lcc-toolchain/lcc/internal/listing"
	"github.com/lcc-toolchain/lcc/internal/obj"
	"github.com/lcc-toolchain/lcc/interp"
	"github.com/lcc-toolchain/lcc/link"
)

// loadPoint is a flag.Value parsing -l<hex> (e.g. -l3000), mirroring the
// teacher's cellSizeBits custom flag type.
type loadPoint uint16

func (lp *loadPoint) String() string { return strconv.FormatUint(uint64(*lp), 16) }
func (lp *loadPoint) Set(s string) error {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 16)
	if err != nil {
		return errors.Wrapf(err, "bad load point %q", s)
	}
	*lp = loadPoint(n)
	return nil
}

var (
	debug      bool
	noStats    bool
	outPath    string
	lp         loadPoint
	binaryList bool // -m: emit .bst instead of .lst
)

func atExit(err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%+v\n", err)
	os.Exit(1)
}

func main() {
	flag.BoolVar(&debug, "d", false, "print debug diagnostics on failure")
	flag.BoolVar(&binaryList, "m", false, "emit .bst (binary) listing instead of .lst")
	flag.Bool("r", false, "accepted for reference-driver compatibility")
	flag.Bool("f", false, "accepted for reference-driver compatibility")
	flag.Bool("x", false, "accepted for reference-driver compatibility")
	flag.Bool("t", false, "accepted for reference-driver compatibility")
	flag.BoolVar(&noStats, "nostats", false, "omit the program-statistics footer")
	flag.Var(&lp, "l", "load point in hex, e.g. -l3000")
	flag.StringVar(&outPath, "o", "", "output path override")
	help := flag.Bool("h", false, "show usage")
	// the flag package only accepts "-l 3000" or "-l=3000"; rewrite the
	// attached "-l3000" form before parsing.
	args := os.Args[1:]
	for i, a := range args {
		if len(a) > 2 && strings.HasPrefix(a, "-l") && a[2] != '=' {
			args[i] = "-l=" + a[2:]
		}
	}
	flag.CommandLine.Parse(args)

	if *help || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	atExit(run(flag.Args()))
}

func run(args []string) error {
	if len(args) > 0 && allObjects(args) {
		return runLink(args)
	}
	if len(args) != 1 {
		return errors.New("Usage: lcc [flags] <file>")
	}
	return runOne(args[0])
}

func allObjects(args []string) bool {
	for _, a := range args {
		if strings.ToLower(filepath.Ext(a)) != ".o" {
			return false
		}
	}
	return true
}

func runLink(args []string) error {
	var inputs []link.Input
	for _, a := range args {
		f, err := os.Open(a)
		if err != nil {
			return errors.Wrapf(err, "open %s", a)
		}
		defer f.Close()
		data, err := readAll(f)
		if err != nil {
			return err
		}
		inputs = append(inputs, link.Input{Name: a, Data: bytes.NewReader(data)})
	}
	res, err := link.Link(inputs)
	if err != nil {
		return err
	}
	out := outPath
	if out == "" {
		out = "link.e"
	}
	return os.WriteFile(out, res.Bytes, 0644)
}

func runOne(path string) error {
	ext := strings.ToLower(filepath.Ext(path))

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	switch ext {
	case ".e":
		mod, err := obj.Read(f)
		if err != nil {
			return err
		}
		return execute(path, mod, nil)
	case ".bin", ".hex":
		res, err := asm.Assemble(path, f)
		if err != nil {
			return err
		}
		mod, err := obj.Read(bytes.NewReader(res.Bytes))
		if err != nil {
			return err
		}
		return execute(path, mod, nil)
	default:
		res, err := asm.Assemble(path, f)
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			fmt.Fprintln(os.Stderr, w)
		}
		// A source using .global/.extern assembles to a relocatable object
		// module, not a runnable image (spec.md §4.1): write the .o and stop,
		// rather than trying to execute a module with unresolved externals.
		if res.ObjectMode {
			out := outPath
			if out == "" {
				out = strings.TrimSuffix(path, filepath.Ext(path)) + ".o"
			}
			return os.WriteFile(out, res.Bytes, 0644)
		}
		out := outPath
		if out == "" {
			out = strings.TrimSuffix(path, filepath.Ext(path)) + ".e"
		}
		if err := os.WriteFile(out, res.Bytes, 0644); err != nil {
			return err
		}
		mod, err := obj.Read(bytes.NewReader(res.Bytes))
		if err != nil {
			return err
		}
		return execute(path, mod, res)
	}
}

func execute(path string, mod *obj.Module, asmRes *asm.Result) error {
	var stdoutBuf bytes.Buffer
	opts := []interp.Option{
		interp.WithLoadPoint(uint16(lp)),
		interp.WithInput(bufio.NewReader(os.Stdin)),
		interp.WithOutput(&stdoutBuf),
	}
	m, err := interp.New(mod, opts...)
	if err != nil {
		return err
	}
	runErr := m.Run()
	os.Stdout.Write(stdoutBuf.Bytes())

	if asmRes != nil {
		if err := writeListing(path, mod, asmRes, m); err != nil {
			return err
		}
	}
	return runErr
}

func writeListing(path string, mod *obj.Module, asmRes *asm.Result, m *interp.Machine) error {
	name, err := loadUserName(filepath.Dir(path))
	if err != nil {
		name = "unknown"
	}

	a := listing.Artifact{
		Date:     time.Now().Format("01/02/2006 15:04:05"),
		UserName: name,
		Entries:  asmRes.Entries,
		Lines:    asmRes.Listing,
		Output:   m.Output(),
	}
	if !noStats {
		a.Stats = &listing.Stats{
			InputFile:    path,
			Instructions: m.Instructions(),
			ProgramSize:  uint32(len(asmRes.Code)),
			MaxStack:     m.MaxStackDepth(),
			LoadPoint:    uint32(m.LoadPoint()),
		}
	}

	ext := ".lst"
	writeFn := listing.WriteText
	if binaryList {
		ext = ".bst"
		writeFn = listing.WriteBinary
	}
	out, err := os.Create(strings.TrimSuffix(path, filepath.Ext(path)) + ext)
	if err != nil {
		return err
	}
	defer out.Close()
	return writeFn(out, a)
}

func readAll(f *os.File) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
