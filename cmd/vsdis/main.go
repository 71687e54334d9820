// vsdis - D3D shader bytecode disassembler
// Prints assembler syntax, or the raw token stream with -tokens.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gogpu/d3d8"
	"github.com/gogpu/d3d8/bytecode"
	"github.com/gogpu/d3d8/ir"
)

var tokens = flag.Bool("tokens", false, "dump the classified token stream")

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Println("Usage: vsdis [-tokens] <file.vso>")
		return
	}
	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	words, err := d3d8.Words(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *tokens {
		dumpTokens(words)
		return
	}

	p, err := d3d8.Decode(words)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	u := ir.Scan(p)
	fmt.Printf("; %s\n", p.Version)
	fmt.Printf("; Words: %d\n", p.Words)
	fmt.Printf("; Comments: %d (%d words)\n", p.Comments, p.CommentWords)
	fmt.Printf("; Temps: %v\n", u.TempList())
	fmt.Printf("; Inputs: %v\n", u.InputList())
	if u.MaxConstant >= 0 {
		fmt.Printf("; Max constant: c%d\n", u.MaxConstant)
	}
	for _, w := range p.Warnings {
		fmt.Printf("; warning: %s\n", w)
	}
	fmt.Println()
	fmt.Print(d3d8.Disassemble(p))
}

func dumpTokens(words []uint32) {
	r := bytecode.NewReader(words)
	for {
		tok, ok := r.Next()
		if !ok {
			break
		}
		fmt.Printf("%04X  %-11s", tok.Offset, tok.Kind)
		for _, w := range tok.Words {
			fmt.Printf(" %08X", w)
		}
		if tok.Kind == bytecode.TokenInstruction {
			if info := ir.Lookup(r.Version(), ir.Op(tok.Words[0]&0xFFFF)); info != nil {
				fmt.Printf("  ; %s", info.Name)
			}
		}
		fmt.Println()
	}
	for _, w := range r.Warnings() {
		fmt.Printf("; warning: %s\n", w)
	}
}
