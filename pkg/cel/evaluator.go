package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Evaluator compiles boolean status predicates. Expressions see a single
// variable `state`, the status snapshot, e.g.
//
//	has(state.arena_fight) && state.arena_fight == true
//	int(state.health) * 3 < int(state.max_health)
type Evaluator struct {
	env *cel.Env
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("state", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

// Program is one compiled predicate, safe for repeated evaluation.
type Program struct {
	prg cel.Program
}

// CompileBool compiles the expression and rejects anything that does not
// produce a boolean.
func (e *Evaluator) CompileBool(expression string) (*Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile CEL expression: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("predicate expression must return bool, got %v", ast.OutputType())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &Program{prg: prg}, nil
}

// Eval evaluates the compiled predicate against one status snapshot.
func (p *Program) Eval(state map[string]any) (bool, error) {
	result, _, err := p.prg.Eval(map[string]any{"state": state})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	boolVal, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return bool, got %T", result.Value())
	}

	return boolVal, nil
}
