package trainer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/verte-zerg/arithmetictrainer/internal/generator"
	"github.com/verte-zerg/arithmetictrainer/internal/model"
)

func buildTask(gen *generator.Generator, conf model.OperatorConfig) (model.Task, error) {
	if !conf.Operator.Valid() {
		return model.Task{}, &InvalidOperatorError{Operator: conf.Operator}
	}
	if err := conf.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("invalid %s template: %w", conf.Operator, err)
	}
	operands, err := drawOperands(gen, conf)
	if err != nil {
		return model.Task{}, err
	}
	result, err := apply(conf.Operator, operands)
	if err != nil {
		return model.Task{}, err
	}
	places := int32(conf.VariableDecimalPoints)
	return model.Task{
		Task:                formatExpression(conf.Operator, operands, places),
		ResultDecimalPoints: conf.ResultDecimalPoints,
		CorrectAnswer:       result.Round(places).StringFixed(places),
		Operator:            conf.Operator,
	}, nil
}

// drawOperands generates the operand list. Divisors never draw zero, and a
// collapsed range (min == max) yields min for every operand.
func drawOperands(gen *generator.Generator, conf model.OperatorConfig) ([]decimal.Decimal, error) {
	if conf.VariableMin == conf.VariableMax {
		operands := make([]decimal.Decimal, conf.VariableNum)
		for i := range operands {
			operands[i] = decimal.NewFromInt(int64(conf.VariableMin))
		}
		return operands, nil
	}
	first, err := gen.Number(conf.VariableMin, conf.VariableMax, conf.VariableDecimalPoints, true)
	if err != nil {
		return nil, err
	}
	allowZero := !conf.Operator.IsDivide()
	rest, err := gen.Numbers(conf.VariableNum-1, conf.VariableMin, conf.VariableMax, conf.VariableDecimalPoints, allowZero)
	if err != nil {
		return nil, err
	}
	return append([]decimal.Decimal{first}, rest...), nil
}

// apply reduces operands left to right.
func apply(op model.Operator, operands []decimal.Decimal) (decimal.Decimal, error) {
	if len(operands) == 0 {
		return decimal.Zero, nil
	}
	acc := operands[0]
	for _, x := range operands[1:] {
		switch op {
		case model.OpAdd:
			acc = acc.Add(x)
		case model.OpSubtract:
			acc = acc.Sub(x)
		case model.OpMultiply:
			acc = acc.Mul(x)
		case model.OpDivide, model.OpDivideAlt:
			if x.IsZero() {
				return decimal.Decimal{}, ErrDivisionByZero
			}
			acc = acc.DivRound(x, divisionScale)
		default:
			return decimal.Decimal{}, &InvalidOperatorError{Operator: op}
		}
	}
	if !op.Valid() {
		return decimal.Decimal{}, &InvalidOperatorError{Operator: op}
	}
	return acc, nil
}

func formatExpression(op model.Operator, operands []decimal.Decimal, places int32) string {
	parts := make([]string, len(operands))
	for i, x := range operands {
		parts[i] = x.StringFixed(places)
	}
	return strings.Join(parts, " "+string(op)+" ")
}
