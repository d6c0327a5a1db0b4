// Package compiler turns normalized schemas into reusable validators.
//
// It wraps github.com/santhosh-tekuri/jsonschema/v5 behind a small capability:
//
//	c, err := compiler.New(compiler.WithFormats(map[string]func(any) bool{
//	    "sku": isSKU,
//	}))
//	if err != nil {
//	    return err
//	}
//	if err := c.AddSchema("money.json", moneySchema); err != nil {
//	    return err
//	}
//	v, err := c.Compile(map[string]any{"$ref": "money.json"})
//	if err != nil {
//	    return err
//	}
//	for _, violation := range v.Validate(instance) {
//	    fmt.Println(violation.InstancePath, violation.Keyword, violation.Message)
//	}
//
// A [Validator] is immutable and keeps no per-call state: Validate returns the
// violations for that call only, so one Validator may be shared by any number of
// goroutines.
//
// Violations are flattened from the library's error tree. Leaf failures are
// reported in instance-path order; a failing anyOf or oneOf is reported after the
// failures of its branches. A "required" failure yields one violation per missing
// property, with the property name in Params["missingProperty"].
package compiler
