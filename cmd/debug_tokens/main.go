package main

import (
	"fmt"
	"os"

	"tinybasic/pkg/lexer"
	"tinybasic/pkg/token"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/debug_tokens '<line>'")
		os.Exit(1)
	}

	input := os.Args[1]
	l := lexer.New(input)

	fmt.Printf("Input: %s\n\n", input)
	fmt.Println("Tokens:")
	fmt.Println("-------")

	for {
		tok := l.NextToken()
		fmt.Printf("%-15s %-20s (col %d)\n", tok.Type, fmt.Sprintf("'%s'", tok.Literal), tok.Column)

		if tok.Type == token.EOL {
			break
		}
	}
}
