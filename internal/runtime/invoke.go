package runtime

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// call resolves name against the agent, then the function registry, and
// invokes it with args resolved at call time. leading values are passed
// before args. found is false when nothing answers to name.
func (e *env) call(name string, args []definition.Argument, leading ...any) (result any, found bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, found, err = nil, true, fmt.Errorf("function '%s' threw: %v", name, r)
		}
	}()

	values := make([]any, 0, len(leading)+len(args))
	values = append(values, leading...)
	for _, arg := range args {
		if arg.Kind == definition.ArgumentProperty {
			values = append(values, e.property(arg.Text()))
			continue
		}
		values = append(values, arg.Literal())
	}

	if d, ok := e.agent.(domain.Dispatcher); ok {
		result, found, err := d.Dispatch(name, values)
		if found || err != nil {
			return result, true, err
		}
	}

	if method := lookupMethod(reflect.ValueOf(e.agent), name); method.IsValid() {
		result, err := callMethod(method, values)
		return result, true, err
	}

	if e.opts.Functions != nil {
		if fn, ok := e.opts.Functions.Function(name); ok {
			result, err := fn(e.agent, values...)
			return result, true, err
		}
	}

	return nil, false, nil
}

// property resolves a "$name" argument against the agent. Unknown properties
// resolve to nil.
func (e *env) property(name string) any {
	if p, ok := e.agent.(domain.PropertyProvider); ok {
		if value, ok := p.Property(name); ok {
			return value
		}
	}
	if m, ok := e.agent.(map[string]any); ok {
		return m[name]
	}

	v := reflect.ValueOf(e.agent)
	if method := lookupMethod(v, name); method.IsValid() {
		t := method.Type()
		if t.NumIn() == 0 && t.NumOut() > 0 {
			return method.Call(nil)[0].Interface()
		}
	}

	s := reflect.Indirect(v)
	if s.Kind() == reflect.Struct {
		for _, candidate := range candidates(name) {
			if field := s.FieldByName(candidate); field.IsValid() && field.CanInterface() {
				return field.Interface()
			}
		}
	}
	return nil
}

// lookupMethod finds name as given, then with its first letter upper-cased,
// so MDSL can say "attack" for an Attack method.
func lookupMethod(v reflect.Value, name string) reflect.Value {
	if !v.IsValid() {
		return reflect.Value{}
	}
	for _, candidate := range candidates(name) {
		if m := v.MethodByName(candidate); m.IsValid() {
			return m
		}
	}
	return reflect.Value{}
}

func candidates(name string) []string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return []string{name}
	}
	return []string{name, string(unicode.ToUpper(r)) + name[size:]}
}

// callMethod invokes method with values converted to its parameter types.
// Missing trailing arguments are zero values and surplus ones are dropped.
// The method may return nothing, a value, an error, or a value and an error.
func callMethod(method reflect.Value, values []any) (any, error) {
	t := method.Type()
	in := make([]reflect.Value, 0, len(values))

	for i := 0; ; i++ {
		var param reflect.Type
		variadic := t.IsVariadic() && i >= t.NumIn()-1
		switch {
		case variadic:
			if i >= len(values) {
				return results(method.Call(in))
			}
			param = t.In(t.NumIn() - 1).Elem()
		case i < t.NumIn():
			param = t.In(i)
		default:
			return results(method.Call(in))
		}

		if i >= len(values) {
			in = append(in, reflect.Zero(param))
			continue
		}
		arg, err := convert(values[i], param)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, arg)
	}
}

func convert(value any, to reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(to), nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(to) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(to.Kind()) {
		return v.Convert(to), nil
	}
	if v.Kind() == to.Kind() && v.Type().ConvertibleTo(to) {
		return v.Convert(to), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %v (%T) as %s", value, value, to)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func results(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}

	var err error
	last := out[len(out)-1]
	if last.Type() == errorType {
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		if len(out) == 1 {
			return nil, err
		}
	}
	return out[0].Interface(), err
}
