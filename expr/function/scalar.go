package function

import (
	"strings"

	"github.com/streamql/streamql/errkind"
	"github.com/streamql/streamql/types"
)

func init() {
	registerScalar("upper", Signature{
		Args: []types.Kind{types.String},
		ReturnFor: func(argTypes []types.DataType) (types.DataType, error) {
			return types.StringType, nil
		},
	}, func(args []types.Scalar) (types.Scalar, error) {
		if args[0].Null {
			return types.NullScalar(types.String), nil
		}
		return types.StringScalar(strings.ToUpper(args[0].Str)), nil
	})

	registerScalar("lower", Signature{
		Args: []types.Kind{types.String},
		ReturnFor: func(argTypes []types.DataType) (types.DataType, error) {
			return types.StringType, nil
		},
	}, func(args []types.Scalar) (types.Scalar, error) {
		if args[0].Null {
			return types.NullScalar(types.String), nil
		}
		return types.StringScalar(strings.ToLower(args[0].Str)), nil
	})

	registerScalar("abs", Signature{
		Args: []types.Kind{types.Float64},
		ReturnFor: func(argTypes []types.DataType) (types.DataType, error) {
			return argTypes[0], nil
		},
	}, func(args []types.Scalar) (types.Scalar, error) {
		a := args[0]
		if a.Null {
			return types.NullScalar(a.Kind), nil
		}
		switch a.Kind {
		case types.Int8, types.Int16, types.Int32, types.Int64:
			v := a.Int
			if v < 0 {
				v = -v
			}
			return types.IntScalar(a.Kind, v), nil
		case types.Float32, types.Float64:
			v := a.Float
			if v < 0 {
				v = -v
			}
			return types.FloatScalar(a.Kind, v), nil
		default:
			return types.Scalar{}, errkind.TypeError.New("abs() requires a numeric argument")
		}
	})

	registerScalar("coalesce", Signature{
		Args:     []types.Kind{types.Null},
		Variadic: true,
		ReturnFor: func(argTypes []types.DataType) (types.DataType, error) {
			if len(argTypes) == 0 {
				return types.NullType, nil
			}
			return argTypes[0], nil
		},
	}, func(args []types.Scalar) (types.Scalar, error) {
		for _, a := range args {
			if !a.Null {
				return a, nil
			}
		}
		if len(args) == 0 {
			return types.NullScalar(types.Null), nil
		}
		return types.NullScalar(args[0].Kind), nil
	})
}
