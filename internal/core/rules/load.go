package rules

import (
	"bytes"
	"io"
	"os"

	"crosspost/internal/core/delay"
	perr "crosspost/internal/platform/errors"
	"crosspost/internal/platform/validate"

	"gopkg.in/yaml.v3"
)

// Set is a rule file: either a top-level "rules" list or a bare list
type Set struct {
	Rules []Rule `json:"rules" yaml:"rules" validate:"min=1,unique=Name,dive"`
}

// the delay tag must exist before any Rule is validated, including by HTTP binding
func init() {
	if err := registerDelayTag(); err != nil {
		panic("rules: register delay tag: " + err.Error())
	}
}

func registerDelayTag() error {
	return validate.RegisterTag("delay", func(fl validate.FieldLevel) bool {
		return delay.Check(fl.Field().Interface()) == nil
	}, "{0} is not a valid delay expression")
}

// Validate checks names, destinations and delay literals, every violation lands in the error details
func (s Set) Validate() error {
	if err := validate.Struct(s); err != nil {
		return perr.WithOp(err, "rules.validate")
	}
	return nil
}

// Load decodes a YAML or JSON rule set from r and validates it
func Load(r io.Reader) (Set, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Set{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read rule set")
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return Set{}, perr.Validationf("rule set is empty")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Set{}, perr.Wrap(err, perr.ErrorCodeValidation, "parse rule set")
	}

	var set Set
	root := &doc
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root = doc.Content[0]
	}
	switch root.Kind {
	case yaml.SequenceNode:
		err = root.Decode(&set.Rules)
	case yaml.MappingNode:
		err = root.Decode(&set)
	default:
		return Set{}, perr.Validationf("rule set must be a list or a mapping with a rules key")
	}
	if err != nil {
		return Set{}, perr.Wrap(err, perr.ErrorCodeValidation, "decode rule set")
	}

	if err := set.Validate(); err != nil {
		return Set{}, err
	}
	return set, nil
}

// LoadFile reads and validates a rule file
func LoadFile(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return Set{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "open rule file %s", path)
	}
	defer f.Close()
	return Load(f)
}
