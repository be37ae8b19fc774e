package mcp

import (
	"fmt"

	"github.com/asaskevich/govalidator"
	"github.com/mitchellh/mapstructure"
)

// Validator is implemented by request structs that check themselves after
// decoding.
type Validator interface {
	Validate() error
}

// DecodeRequest copies tool arguments onto out, which should already hold
// the operation's defaults. Field names come from json tags and scalar
// values are coerced (a "5" string fills an int32 field). Unknown keys are
// ignored.
func DecodeRequest(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if v, ok := out.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// ValidateStruct runs the govalidator `valid` tags on req.
func ValidateStruct(req any) error {
	if _, err := govalidator.ValidateStruct(req); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
