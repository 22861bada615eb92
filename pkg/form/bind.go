package form

import (
	"net/url"
	"strings"

	"github.com/sitegear/sitegear/pkg/sanitizer"
)

// Bind extracts the values of step's fields from submitted form data.
// Text is stripped of markup; passwords are kept verbatim. A checkbox binds
// to a bool and checkboxes to a []string. File fields are skipped; callers
// store uploads and add their keys.
func (f *Form) Bind(step int, data url.Values) map[string]any {
	values := make(map[string]any)
	for _, name := range f.StepFields(step) {
		field := f.Fields[name]
		switch field.Type {
		case TypeFile:
			continue
		case TypeCheckbox:
			v := strings.ToLower(data.Get(name))
			values[name] = v != "" && v != "0" && v != "false" && v != "off"
		case TypeCheckboxes:
			picked := make([]string, 0, len(data[name]))
			for _, v := range data[name] {
				if v = sanitizer.PlainText(v); v != "" {
					picked = append(picked, v)
				}
			}
			values[name] = picked
		case TypePassword:
			values[name] = data.Get(name)
		default:
			values[name] = sanitizer.PlainText(data.Get(name))
		}
	}
	return values
}
