package collect

import (
	formskema "github.com/reoring/formskema"
)

// CrossFieldValidatorEntry is a custom validator lifted out of its field.
type CrossFieldValidatorEntry struct {
	SourceFieldKey string `json:"sourceFieldKey" yaml:"sourceFieldKey"`
	formskema.ValidatorConfig
}

// CrossFieldLogicEntry is a logic rule lifted out of its field.
type CrossFieldLogicEntry struct {
	SourceFieldKey string `json:"sourceFieldKey" yaml:"sourceFieldKey"`
	formskema.LogicConfig
}

// CrossFieldCollection holds the static cross-field extraction of a tree.
type CrossFieldCollection struct {
	Validators []CrossFieldValidatorEntry `json:"validators" yaml:"validators"`
	Logic      []CrossFieldLogicEntry     `json:"logic" yaml:"logic"`
}

// CrossField extracts every custom validator and every logic entry keyed by
// the dotted path of the field that declares it. Array items are not entered;
// they are evaluated per instance at runtime.
func CrossField(fields []*formskema.FieldDef) CrossFieldCollection {
	out := CrossFieldCollection{
		Validators: []CrossFieldValidatorEntry{},
		Logic:      []CrossFieldLogicEntry{},
	}
	for v := range formskema.Walk(fields, "", formskema.WalkArrayOpaque) {
		if v.Field.Key == "" {
			continue
		}
		for _, vc := range v.Field.Validators {
			if vc.Type != formskema.ValidatorCustom {
				continue
			}
			out.Validators = append(out.Validators, CrossFieldValidatorEntry{SourceFieldKey: v.Path, ValidatorConfig: vc})
		}
		for _, lc := range v.Field.Logic {
			out.Logic = append(out.Logic, CrossFieldLogicEntry{SourceFieldKey: v.Path, LogicConfig: lc})
		}
	}
	return out
}
