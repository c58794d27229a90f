package liberfly

import (
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
)

// FormatValidationErrorToMap flattens an ozzo validation error into the
// field -> messages mapping the API returns with a 422. Nested errors are
// flattened with a dotted path.
func FormatValidationErrorToMap(err error) map[string][]string {
	out := map[string][]string{}
	collectValidationErrors("", err, out)
	return out
}

func collectValidationErrors(prefix string, err error, out map[string][]string) {
	if err == nil {
		return
	}

	errs, ok := err.(validation.Errors)
	if !ok {
		key := prefix
		if key == "" {
			key = "_"
		}
		out[key] = append(out[key], err.Error())
		return
	}

	// stable ordering keeps responses and tests deterministic
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}
		collectValidationErrors(key, errs[field], out)
	}
}
