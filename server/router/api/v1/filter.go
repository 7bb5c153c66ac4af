package v1

import (
	"sync"

	"github.com/google/cel-go/cel"
	celast "github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"

	apierrors "github.com/flashwise/flashwise/server/internal/errors"
)

// cardFilter is the parsed form of a card list filter expression. The
// grammar is a conjunction of comparisons over the declared fields, e.g.
//
//	deck == "9dK3bq" && tag in ["verbs", "spanish"] && new == false
type cardFilter struct {
	DeckUID *string
	Tags    []string
	OnlyNew *bool
	Due     *bool
}

var (
	cardFilterEnvOnce sync.Once
	cardFilterEnv     *cel.Env
	cardFilterEnvErr  error
)

func getCardFilterEnv() (*cel.Env, error) {
	cardFilterEnvOnce.Do(func() {
		cardFilterEnv, cardFilterEnvErr = cel.NewEnv(
			cel.Variable("deck", cel.StringType),
			cel.Variable("tag", cel.StringType),
			cel.Variable("new", cel.BoolType),
			cel.Variable("due", cel.BoolType),
		)
	})
	return cardFilterEnv, cardFilterEnvErr
}

// parseCardFilter compiles and walks a filter expression. Anything
// outside the supported conjunction grammar is rejected rather than
// silently ignored.
func parseCardFilter(expression string) (*cardFilter, error) {
	env, err := getCardFilterEnv()
	if err != nil {
		return nil, apierrors.Internal("failed to build filter environment", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, apierrors.InvalidArgument("invalid filter: %s", issues.Err().Error())
	}

	filter := &cardFilter{}
	if err := walkFilterExpr(ast.NativeRep().Expr(), filter); err != nil {
		return nil, err
	}
	return filter, nil
}

func walkFilterExpr(expr celast.Expr, filter *cardFilter) error {
	if expr.Kind() != celast.CallKind {
		return apierrors.InvalidArgument("unsupported filter expression")
	}

	call := expr.AsCall()
	switch call.FunctionName() {
	case operators.LogicalAnd:
		for _, arg := range call.Args() {
			if err := walkFilterExpr(arg, filter); err != nil {
				return err
			}
		}
		return nil
	case operators.Equals:
		return applyEquals(call.Args(), filter)
	case operators.In:
		return applyIn(call.Args(), filter)
	default:
		return apierrors.InvalidArgument("unsupported filter operator %q", call.FunctionName())
	}
}

func applyEquals(args []celast.Expr, filter *cardFilter) error {
	if len(args) != 2 {
		return apierrors.InvalidArgument("malformed filter comparison")
	}
	ident, value, err := identAndLiteral(args)
	if err != nil {
		return err
	}

	switch ident {
	case "deck":
		uid, ok := value.(string)
		if !ok {
			return apierrors.InvalidArgument("deck filter requires a string")
		}
		filter.DeckUID = &uid
	case "tag":
		tag, ok := value.(string)
		if !ok {
			return apierrors.InvalidArgument("tag filter requires a string")
		}
		filter.Tags = append(filter.Tags, tag)
	case "new":
		onlyNew, ok := value.(bool)
		if !ok {
			return apierrors.InvalidArgument("new filter requires a boolean")
		}
		filter.OnlyNew = &onlyNew
	case "due":
		due, ok := value.(bool)
		if !ok {
			return apierrors.InvalidArgument("due filter requires a boolean")
		}
		filter.Due = &due
	default:
		return apierrors.InvalidArgument("unknown filter field %q", ident)
	}
	return nil
}

// applyIn handles `tag in ["a", "b"]`, which requires the card to carry
// every listed tag.
func applyIn(args []celast.Expr, filter *cardFilter) error {
	if len(args) != 2 {
		return apierrors.InvalidArgument("malformed filter membership test")
	}
	if args[0].Kind() != celast.IdentKind || args[0].AsIdent() != "tag" {
		return apierrors.InvalidArgument("membership filters are only supported on tag")
	}
	if args[1].Kind() != celast.ListKind {
		return apierrors.InvalidArgument("tag membership requires a list literal")
	}
	for _, element := range args[1].AsList().Elements() {
		if element.Kind() != celast.LiteralKind {
			return apierrors.InvalidArgument("tag list must contain string literals")
		}
		tag, ok := element.AsLiteral().Value().(string)
		if !ok {
			return apierrors.InvalidArgument("tag list must contain string literals")
		}
		filter.Tags = append(filter.Tags, tag)
	}
	return nil
}

func identAndLiteral(args []celast.Expr) (string, any, error) {
	ident, literal := args[0], args[1]
	if ident.Kind() != celast.IdentKind {
		ident, literal = literal, ident
	}
	if ident.Kind() != celast.IdentKind || literal.Kind() != celast.LiteralKind {
		return "", nil, apierrors.InvalidArgument("filter comparisons must compare a field to a literal")
	}
	return ident.AsIdent(), literal.AsLiteral().Value(), nil
}
