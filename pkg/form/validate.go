package form

import "maps"

// Errors maps field names to validation messages.
type Errors map[string][]string

// Add appends a message for field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field has messages.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// First returns the first message for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Empty reports whether there are no messages at all.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Validate checks the fields of step against their constraints. values may
// hold values of other steps, which cross-field constraints can see; only
// the step's own fields are checked. An invalid step yields an empty
// result.
func (f *Form) Validate(step int, values map[string]any) Errors {
	errs := Errors{}
	for _, name := range f.StepFields(step) {
		field := f.Fields[name]
		v := values[name]
		for _, c := range field.Constraints {
			if !c.Valid(v, field, values) {
				errs.Add(name, c.message())
				if c.Name == "required" {
					break
				}
			}
		}
	}
	return errs
}

// merge returns a copy of base overlaid with values.
func merge(base, values map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(values))
	maps.Copy(out, base)
	maps.Copy(out, values)
	return out
}
