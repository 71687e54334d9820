// Command d3d8c is the d3d8 shader compiler CLI.
//
// Usage:
//
//	d3d8c [options] <input>
//
// Examples:
//
//	d3d8c shader.vso                    # Compile to ARB text on stdout
//	d3d8c -o shader.arb shader.vso      # Compile to a file
//	d3d8c -comments shader.pso          # Annotate with source instructions
//	d3d8c -usage -run 1,2,3 shader.vso  # Print register usage, run one vertex
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/d3d8"
	"github.com/gogpu/d3d8/interp"
	"github.com/gogpu/d3d8/ir"
)

var (
	output   = flag.String("o", "", "output file (default: stdout)")
	comments = flag.Bool("comments", false, "emit source instructions as comments")
	validate = flag.Bool("validate", true, "validate register usage")
	vconst   = flag.Int("vconst", 96, "vertex constant bank size")
	pconst   = flag.Int("pconst", 32, "pixel constant bank size")
	verbose  = flag.Bool("v", false, "log decoder warnings to stderr")
	usageOut = flag.Bool("usage", false, "print register usage to stderr")
	run      = flag.String("run", "", "run a vertex program on v0 = x,y,z[,w] and print its outputs to stderr")
	version  = flag.Bool("version", false, "print version")
)

const d3d8cVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("d3d8c version %s\n", d3d8cVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	if *verbose {
		d3d8.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	inputPath := args[0]

	data, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}
	words, err := d3d8.Words(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *usageOut || *run != "" {
		if err := inspect(words); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	opts := d3d8.DefaultOptions()
	opts.Validate = *validate
	opts.ARB.EmitComments = *comments
	opts.ARB.VertexConstants = *vconst
	opts.ARB.PixelConstants = *pconst
	text, err := d3d8.CompileWithOptions(words, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation error: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		err = os.WriteFile(*output, []byte(text), 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Successfully compiled %s to %s (%d bytes)\n", inputPath, *output, len(text))
	} else {
		_, err = os.Stdout.WriteString(text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
	}
}

func inspect(words []uint32) error {
	p, err := d3d8.Decode(words)
	if err != nil {
		return err
	}
	if *usageOut {
		u := ir.Scan(p)
		fmt.Fprintf(os.Stderr, "%s: temps %v, inputs %v, max constant c%d, address %v\n",
			p.Version, u.TempList(), u.InputList(), u.MaxConstant, u.Address)
	}
	if *run == "" {
		return nil
	}

	var in interp.Inputs
	in[0] = interp.Vec4{0, 0, 0, 1}
	for i, f := range strings.Split(*run, ",") {
		if i >= 4 {
			return fmt.Errorf("-run takes at most 4 components")
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return fmt.Errorf("-run: %w", err)
		}
		in[0][i] = float32(v)
	}
	it, err := interp.New(p)
	if err != nil {
		return err
	}
	out := it.Execute(&in, make([]interp.Vec4, *vconst))
	fmt.Fprintf(os.Stderr, "oPos %v\noD0  %v\noD1  %v\n", out.Position, out.Colors[0], out.Colors[1])
	for i, t := range out.TexCoords {
		if it.Usage().TexCoords&(1<<i) != 0 {
			fmt.Fprintf(os.Stderr, "oT%d  %v\n", i, t)
		}
	}
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: d3d8c [options] <input.vso|input.pso>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  d3d8c shader.vso                Compile to stdout\n")
	fmt.Fprintf(os.Stderr, "  d3d8c -o shader.arb shader.vso  Compile to file\n")
	fmt.Fprintf(os.Stderr, "  d3d8c -comments shader.pso      Annotate with source instructions\n")
	fmt.Fprintf(os.Stderr, "  d3d8c -run 1,2,3 shader.vso     Run one vertex in the interpreter\n")
}
