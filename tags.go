package bizdesk

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTag parses a `bizdesk:"..."` struct tag value into FieldSchema attributes.
//
//	required          the field must be set when a record is validated
//	appendonly        a list that only grows; existing entries never change
//	stamp=<field>     entries appended to an appendonly list get an id and
//	                  have <field> set to the time they were stored
//	default=<value>   value for a zero field on Add; "[]" for lists and
//	                  "today" for date strings
//	enum=a|b|c        allowed values
//	min=N, max=N      numeric bounds, or length bounds for strings
//	ref=<collection>  id of a record in another collection
//
// Unknown options, repeated options and malformed numbers are errors.
func ParseTag(tag string) (FieldSchema, error) {
	var fs FieldSchema
	seen := map[string]bool{}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, hasVal := strings.Cut(part, "=")
		if seen[key] {
			return fs, fmt.Errorf("option %q given twice", key)
		}
		seen[key] = true

		if flag, ok := tagFlags[key]; ok {
			if hasVal {
				return fs, fmt.Errorf("option %q takes no value", key)
			}
			flag(&fs)
			continue
		}
		opt, ok := tagOptions[key]
		if !ok {
			return fs, fmt.Errorf("unknown option %q", key)
		}
		if !hasVal || val == "" {
			return fs, fmt.Errorf("option %q needs a value", key)
		}
		if err := opt(&fs, val); err != nil {
			return fs, fmt.Errorf("option %q: %w", key, err)
		}
	}

	if fs.Stamp != "" && !fs.AppendOnly {
		return fs, fmt.Errorf("stamp=%s needs appendonly", fs.Stamp)
	}
	if fs.Min != nil && fs.Max != nil && *fs.Min > *fs.Max {
		return fs, fmt.Errorf("min %d is greater than max %d", *fs.Min, *fs.Max)
	}
	return fs, nil
}

var tagFlags = map[string]func(*FieldSchema){
	"required":   func(fs *FieldSchema) { fs.Required = true },
	"appendonly": func(fs *FieldSchema) { fs.AppendOnly = true },
}

var tagOptions = map[string]func(*FieldSchema, string) error{
	"default": func(fs *FieldSchema, v string) error { fs.Default = v; return nil },
	"ref":     func(fs *FieldSchema, v string) error { fs.Ref = v; return nil },
	"stamp":   func(fs *FieldSchema, v string) error { fs.Stamp = v; return nil },
	"enum": func(fs *FieldSchema, v string) error {
		for _, e := range strings.Split(v, "|") {
			if e == "" {
				return fmt.Errorf("empty value in %q", v)
			}
			fs.Enum = append(fs.Enum, e)
		}
		return nil
	},
	"min": func(fs *FieldSchema, v string) error { return parseBound(&fs.Min, v) },
	"max": func(fs *FieldSchema, v string) error { return parseBound(&fs.Max, v) },
}

func parseBound(dst **int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%q is not an integer", v)
	}
	*dst = &n
	return nil
}
