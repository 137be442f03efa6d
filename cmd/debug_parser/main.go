package main

import (
	"fmt"
	"os"

	"tinybasic/pkg/lexer"
	"tinybasic/pkg/parser"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/debug_parser '<line>'")
		os.Exit(1)
	}

	input := os.Args[1]
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		fmt.Printf("Lexer error: %s\n", err)
		os.Exit(1)
	}

	p := parser.New(tokens, input)
	line, err := p.ParseLine()

	if len(p.Errors()) != 0 {
		fmt.Println("Parser errors:")
		for _, msg := range p.Errors() {
			fmt.Printf("  %s\n", msg)
		}
		fmt.Println()
	}
	if err != nil {
		os.Exit(1)
	}

	switch {
	case line.IsDeletion():
		fmt.Printf("Delete line %d\n", line.Number)
	case line.Statement == nil:
		fmt.Println("Empty line")
	default:
		mode := "immediate"
		if line.HasNumber() {
			mode = fmt.Sprintf("stored at line %d", line.Number)
		}
		fmt.Printf("AST (%s):\n%s\n", mode, line.Statement.String())
		fmt.Printf("Text: %q\n", line.Statement.SourceText())
	}
}
