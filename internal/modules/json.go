package modules

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cwbudde/go-bob/internal/interp"
	"github.com/cwbudde/go-bob/internal/value"
)

// RegisterJSON installs the "json" builtin module: parse decodes JSON
// text into a Value tree via gjson, stringify encodes a Value tree
// back to JSON text, building nested Array/Dict structure with
// sjson.SetRaw.
func RegisterJSON(in *interp.Interpreter) {
	in.RegisterModule("json", func(b *interp.ModuleBuilder) {
		b.Fn("parse", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 1 {
				return value.None, fmt.Errorf("json.parse(): expected 1 argument but got %d", len(args))
			}
			s, ok := args[0].(value.StringValue)
			if !ok {
				return value.None, fmt.Errorf("json.parse(): argument must be a string")
			}
			if !gjson.Valid(string(s)) {
				return value.None, fmt.Errorf("json.parse(): invalid JSON")
			}
			return decodeJSON(gjson.Parse(string(s))), nil
		})

		b.Fn("stringify", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 1 {
				return value.None, fmt.Errorf("json.stringify(): expected 1 argument but got %d", len(args))
			}
			text, err := encodeJSON(args[0])
			if err != nil {
				return value.None, err
			}
			return value.StringValue(text), nil
		})
	})
}

func decodeJSON(r gjson.Result) value.Value {
	switch {
	case r.Type == gjson.Null:
		return value.None
	case r.Type == gjson.True:
		return value.Bool(true)
	case r.Type == gjson.False:
		return value.Bool(false)
	case r.Type == gjson.Number:
		return value.NumberValue(r.Num)
	case r.Type == gjson.String:
		return value.StringValue(r.Str)
	case r.IsArray():
		var items []value.Value
		r.ForEach(func(_, v gjson.Result) bool {
			items = append(items, decodeJSON(v))
			return true
		})
		return value.NewArray(items)
	case r.IsObject():
		d := value.NewDict().(value.DictValue)
		r.ForEach(func(k, v gjson.Result) bool {
			d.M.Set(k.Str, decodeJSON(v))
			return true
		})
		return d
	default:
		return value.None
	}
}

func encodeJSON(v value.Value) (string, error) {
	switch x := v.(type) {
	case value.NoneValue:
		return "null", nil
	case value.BoolValue:
		if x {
			return "true", nil
		}
		return "false", nil
	case value.IntValue:
		return strconv.FormatInt(int64(x), 10), nil
	case value.NumberValue:
		return strconv.FormatFloat(float64(x), 'g', -1, 64), nil
	case value.StringValue:
		quoted, err := json.Marshal(string(x))
		if err != nil {
			return "", err
		}
		return string(quoted), nil
	case value.ArrayValue:
		doc := "[]"
		for i, item := range *x.Items {
			child, err := encodeJSON(item)
			if err != nil {
				return "", err
			}
			doc, err = sjson.SetRaw(doc, strconv.Itoa(i), child)
			if err != nil {
				return "", err
			}
		}
		return doc, nil
	case value.DictValue:
		doc := "{}"
		var err error
		x.M.Range(func(k string, val value.Value) bool {
			var child string
			child, err = encodeJSON(val)
			if err != nil {
				return false
			}
			doc, err = sjson.SetRaw(doc, k, child)
			return err == nil
		})
		if err != nil {
			return "", err
		}
		return doc, nil
	default:
		return "", fmt.Errorf("json.stringify(): cannot encode value of type %s", v.Kind().String())
	}
}
