package main

import (
	"sort"

	"tinybasic/pkg/ast"
	"tinybasic/pkg/program"
)

type ProgramInsights struct {
	Lines      int
	Statements map[string]int
	Jumps      []JumpInfo
	Assigned   []string
	Unassigned []string
}

type JumpInfo struct {
	From    int
	To      int
	Kind    string
	Missing bool
}

// analyzeProgram summarizes a stored program without running it. Missing
// jump targets are the ones that would raise LINE NUMBER ERROR when taken.
func analyzeProgram(prog *program.Program) ProgramInsights {
	insights := ProgramInsights{Statements: map[string]int{}}
	assigned := map[string]bool{}
	read := map[string]bool{}

	prog.Walk(func(line int, stmt ast.Statement) bool {
		insights.Lines++
		insights.Statements[stmt.TokenLiteral()]++

		switch s := stmt.(type) {
		case *ast.LetStatement:
			assigned[s.Name.Value] = true
		case *ast.InputStatement:
			assigned[s.Name.Value] = true
		case *ast.GotoStatement:
			insights.Jumps = append(insights.Jumps, JumpInfo{From: line, To: s.Target, Kind: "GOTO", Missing: !prog.HasLine(s.Target)})
		case *ast.IfStatement:
			insights.Jumps = append(insights.Jumps, JumpInfo{From: line, To: s.Target, Kind: "IF", Missing: !prog.HasLine(s.Target)})
		}

		walkStatement(stmt, func(node ast.Node) {
			if id, ok := node.(*ast.Identifier); ok {
				read[id.Value] = true
			}
		})
		return true
	})

	for name := range assigned {
		insights.Assigned = append(insights.Assigned, name)
	}
	for name := range read {
		if !assigned[name] {
			insights.Unassigned = append(insights.Unassigned, name)
		}
	}
	sort.Strings(insights.Assigned)
	sort.Strings(insights.Unassigned)
	return insights
}

// walkStatement visits the expressions a statement reads. Assignment
// targets are not visited.
func walkStatement(stmt ast.Statement, visitor func(ast.Node)) {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		walk(s.Value, visitor)
	case *ast.PrintStatement:
		walk(s.Value, visitor)
	case *ast.IfStatement:
		walk(s.Left, visitor)
		walk(s.Right, visitor)
	}
}

func walk(node ast.Expression, visitor func(ast.Node)) {
	if node == nil {
		return
	}

	visitor(node)

	if n, ok := node.(*ast.InfixExpression); ok {
		walk(n.Left, visitor)
		walk(n.Right, visitor)
	}
}
