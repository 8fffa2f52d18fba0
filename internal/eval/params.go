package eval

import (
	"strconv"

	"slsh/internal/environ"
)

// paramNames walks a parameter-list expression, splitting out any &rest
// symbol (which must appear at most once and be followed by exactly one
// more symbol, per §4.C.1 and the testable boundary in §8).
func paramNames(params *environ.Expression) (names []string, rest string, hasRest bool, err error) {
	if params.Kind != environ.KindList {
		return nil, "", false, &BadParamShapeError{Msg: "parameter list must be a list"}
	}
	sawRest := false
	postRest := 0
	for _, p := range params.List {
		if p.Kind != environ.KindSymbol {
			return nil, "", false, &BadParamShapeError{Msg: "parameter name must be a symbol"}
		}
		if p.Str == "&rest" {
			if sawRest {
				return nil, "", false, &BadParamShapeError{Msg: "&rest can only appear once"}
			}
			sawRest = true
			continue
		}
		if sawRest {
			postRest++
			if postRest > 1 {
				return nil, "", false, &BadParamShapeError{Msg: "&rest must be followed by exactly one symbol"}
			}
			rest = p.Str
		} else {
			names = append(names, p.Str)
		}
	}
	if sawRest && postRest != 1 {
		return nil, "", false, &BadParamShapeError{Msg: "&rest must be followed by exactly one symbol"}
	}
	return names, rest, sawRest, nil
}

// bindArgs binds names/rest into scope against actuals, enforcing the
// exact-count rule when there is no &rest and the surplus-collection rule
// when there is one.
func bindArgs(scope *environ.Scope, names []string, rest string, hasRest bool, actuals []*environ.Expression) error {
	min := len(names)
	if !hasRest && len(actuals) != min {
		return &BadArityError{Msg: "wrong number of parameters, expected " + strconv.Itoa(min) + " got " + strconv.Itoa(len(actuals))}
	}
	if hasRest && len(actuals) < min {
		return &BadArityError{Msg: "wrong number of parameters, expected at least " + strconv.Itoa(min) + " got " + strconv.Itoa(len(actuals))}
	}
	for i, n := range names {
		scope.Set(n, actuals[i])
	}
	if hasRest {
		if len(actuals) > min {
			scope.Set(rest, environ.List(append([]*environ.Expression{}, actuals[min:]...)))
		} else {
			scope.Set(rest, environ.Nil)
		}
	}
	return nil
}

// setupArgs evaluates (or not) the actual argument expressions and binds
// them into scope against params (§4.C.1 step 2 / §4.C.2 step 2).
func setupArgs(env *environ.Environment, scope *environ.Scope, params *environ.Expression, args []*environ.Expression, evalArgs bool) error {
	names, rest, hasRest, err := paramNames(params)
	if err != nil {
		return err
	}
	actuals := args
	if evalArgs {
		actuals = make([]*environ.Expression, len(args))
		for i, a := range args {
			v, err := Eval(env, a)
			if err != nil {
				return err
			}
			actuals[i] = v
		}
	}
	return bindArgs(scope, names, rest, hasRest, actuals)
}

