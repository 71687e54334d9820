package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/gogpu/d3d8"
	"github.com/gogpu/d3d8/decl"
)

var declFile = flag.String("decl", "", "read a vertex declaration token file instead of an FVF code")

func main() {
	flag.Parse()

	var (
		d   *decl.Declaration
		err error
	)
	switch {
	case *declFile != "":
		d, err = readDeclaration(*declFile)
	case flag.NArg() == 1:
		var code uint64
		code, err = strconv.ParseUint(flag.Arg(0), 0, 32)
		if err == nil {
			d = decl.FVF(code).Declaration()
		}
	default:
		fmt.Println("Usage: fvfinfo <fvf> | fvfinfo -decl <file>")
		return
	}
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	fmt.Println("=== Declaration ===")
	fmt.Printf("Streams: %d\n", len(d.Streams))
	if d.Representable {
		fmt.Printf("FVF: %#x (%s)\n", uint32(d.Combined), d.Combined)
	} else {
		fmt.Println("FVF: not representable")
	}
	for _, c := range d.Constants {
		fmt.Printf("  Constants: c%d..c%d\n", c.Start, c.Start+len(c.Rows)-1)
	}

	for i := range d.Streams {
		s := &d.Streams[i]
		fmt.Printf("\n=== Stream %d ===\n", s.Index)
		fmt.Printf("Stride: %d\n", s.Stride)
		for _, e := range s.Elements {
			fmt.Printf("  %-12s %-9s offset=%d\n", e.Register, e.Type, e.Offset)
		}

		l := s.Layout()
		fmt.Printf("Layout: arrayStride=%d stepMode=%s\n", l.ArrayStride, l.StepMode)
		for _, a := range l.Attributes {
			fmt.Printf("  @location(%d) %s offset=%d\n", a.ShaderLocation, a.Format, a.Offset)
		}
	}
}

func readDeclaration(path string) (*decl.Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tokens, err := d3d8.Words(data)
	if err != nil {
		return nil, err
	}
	return decl.Compile(tokens, nil)
}
