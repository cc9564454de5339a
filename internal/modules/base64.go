package modules

import (
	"encoding/base64"
	"fmt"

	"github.com/cwbudde/go-bob/internal/interp"
	"github.com/cwbudde/go-bob/internal/value"
)

// RegisterBase64 installs the "base64" builtin module.
func RegisterBase64(in *interp.Interpreter) {
	in.RegisterModule("base64", func(b *interp.ModuleBuilder) {
		b.Fn("encode", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 1 {
				return value.None, fmt.Errorf("base64.encode(): expected 1 argument but got %d", len(args))
			}
			s, ok := args[0].(value.StringValue)
			if !ok {
				return value.None, fmt.Errorf("base64.encode(): argument must be a string")
			}
			return value.StringValue(base64.StdEncoding.EncodeToString([]byte(s))), nil
		})
		b.Fn("decode", func(args []value.Value, line, col int) (value.Value, error) {
			if len(args) != 1 {
				return value.None, fmt.Errorf("base64.decode(): expected 1 argument but got %d", len(args))
			}
			s, ok := args[0].(value.StringValue)
			if !ok {
				return value.None, fmt.Errorf("base64.decode(): argument must be a string")
			}
			data, err := base64.StdEncoding.DecodeString(string(s))
			if err != nil {
				return value.None, fmt.Errorf("base64.decode(): %w", err)
			}
			return value.StringValue(string(data)), nil
		})
	})
}
