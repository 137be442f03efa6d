// Package eval evaluates expressions against a VarState and executes single
// statements, reporting the control transfer each one asks for.
package eval

import (
	"tinybasic/pkg/ast"
	"tinybasic/pkg/fault"
)

// Eval evaluates an integer expression. Both operands of a binary node are
// always evaluated, left first.
func Eval(node ast.Expression, vars *VarState) (int64, error) {
	switch node := node.(type) {
	case *ast.IntegerLiteral:
		return node.Value, nil
	case *ast.Identifier:
		return evalIdentifier(node, vars)
	case *ast.InfixExpression:
		left, err := Eval(node.Left, vars)
		if err != nil {
			return 0, err
		}
		right, err := Eval(node.Right, vars)
		if err != nil {
			return 0, err
		}
		return evalIntegerInfixExpression(node.Operator, left, right)
	case nil:
		return 0, fault.New(fault.Syntax, "missing expression")
	default:
		return 0, fault.New(fault.Syntax, "unsupported expression %s", node.String())
	}
}

func evalIdentifier(node *ast.Identifier, vars *VarState) (int64, error) {
	val, ok := vars.Get(node.Value)
	if !ok {
		return 0, fault.New(fault.UndefinedVariable, "%s", node.Value)
	}
	return val, nil
}

func evalIntegerInfixExpression(operator string, left, right int64) (int64, error) {
	switch operator {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, fault.New(fault.DivisionByZero, "")
		}
		return left / right, nil
	default:
		return 0, fault.New(fault.Syntax, "unknown operator: %s", operator)
	}
}

// Compare applies one of the IF comparators.
func Compare(operator string, left, right int64) (bool, error) {
	switch operator {
	case "=":
		return left == right, nil
	case "<":
		return left < right, nil
	case ">":
		return left > right, nil
	default:
		return false, fault.New(fault.Syntax, "unknown comparator: %s", operator)
	}
}
