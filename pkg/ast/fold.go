package ast

// Fold performs constant folding on arithmetic expressions. Subtrees whose
// operands are all integer literals are replaced by a single literal carrying
// the operator token of the folded node. Division by a literal zero is left in
// place so that it still faults when the statement runs.
func Fold(expr Expression) Expression {
	node, ok := expr.(*InfixExpression)
	if !ok {
		return expr
	}

	left := Fold(node.Left)
	right := Fold(node.Right)

	leftInt, leftOk := left.(*IntegerLiteral)
	rightInt, rightOk := right.(*IntegerLiteral)

	if leftOk && rightOk {
		var result int64
		switch node.Operator {
		case "+":
			result = leftInt.Value + rightInt.Value
		case "-":
			result = leftInt.Value - rightInt.Value
		case "*":
			result = leftInt.Value * rightInt.Value
		case "/":
			if rightInt.Value == 0 {
				return &InfixExpression{Token: node.Token, Operator: node.Operator, Left: left, Right: right}
			}
			result = leftInt.Value / rightInt.Value
		default:
			return node
		}
		return &IntegerLiteral{Token: node.Token, Value: result}
	}

	if left == node.Left && right == node.Right {
		return node
	}
	return &InfixExpression{Token: node.Token, Operator: node.Operator, Left: left, Right: right}
}
