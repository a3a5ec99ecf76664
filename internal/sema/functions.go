package sema

import "tern/internal/types"

// overload is one signature of a builtin function. A variadic overload
// repeats its last parameter zero or more times.
type overload struct {
	params   []types.TypeID
	variadic bool
	result   types.TypeID
}

func (ov overload) matches(in *types.Interner, args []types.TypeID) bool {
	if ov.variadic {
		if len(args) < len(ov.params)-1 {
			return false
		}
	} else if len(args) != len(ov.params) {
		return false
	}
	for i, arg := range args {
		p := i
		if p >= len(ov.params) {
			p = len(ov.params) - 1
		}
		if !in.AssignableTo(arg, ov.params[p]) {
			return false
		}
	}
	return true
}

// builtinOverloads builds the signature table of the builtin functions the
// binder installs. Array parameters use any[], which accepts every array via
// element covariance.
func builtinOverloads(in *types.Interner) map[string][]overload {
	str := in.StringType()
	integer := in.Int()
	anyT := in.Any()
	anyArr := in.Array(anyT)
	return map[string][]overload{
		"concat": {
			{params: []types.TypeID{str, str}, variadic: true, result: str},
			{params: []types.TypeID{anyArr, anyArr}, variadic: true, result: anyArr},
		},
		"length": {
			{params: []types.TypeID{str}, result: integer},
			{params: []types.TypeID{anyArr}, result: integer},
		},
		"toUpper": {{params: []types.TypeID{str}, result: str}},
		"toLower": {{params: []types.TypeID{str}, result: str}},
		"min":     {{params: []types.TypeID{integer, integer}, variadic: true, result: integer}},
		"max":     {{params: []types.TypeID{integer, integer}, variadic: true, result: integer}},
		"range":   {{params: []types.TypeID{integer, integer}, result: in.Array(integer)}},
		"string":  {{params: []types.TypeID{anyT}, result: str}},
		"int":     {{params: []types.TypeID{str}, result: integer}, {params: []types.TypeID{integer}, result: integer}},
		"resourceId": {
			{params: []types.TypeID{str, str}, variadic: true, result: str},
		},
	}
}
