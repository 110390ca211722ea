package openapi

import (
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// GenerateSchema creates an OpenAPI schema from a Go struct using reflection.
// Required fields come from `binding:"required"`, enums from `binding:"oneof=..."`
// or an `enums` tag.
func GenerateSchema(v interface{}) *Schema {
	if v == nil {
		return nil
	}

	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return typeToSchema(t, map[reflect.Type]bool{})
}

func typeToSchema(t reflect.Type, seen map[reflect.Type]bool) *Schema {
	switch t {
	case timeType:
		return &Schema{Type: "string", Format: "date-time"}
	case uuidType:
		return &Schema{Type: "string", Format: "uuid"}
	}

	switch t.Kind() {
	case reflect.Struct:
		// a type that contains itself is rendered as an opaque object the second time
		if seen[t] {
			return &Schema{Type: "object"}
		}
		seen[t] = true
		defer delete(seen, t)

		schema := &Schema{
			Type:       "object",
			Properties: make(map[string]*Schema),
		}
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)

			// embedded structs without a json name are flattened like encoding/json does
			if field.Anonymous && field.Tag.Get("json") == "" && indirect(field.Type).Kind() == reflect.Struct {
				if embedded := typeToSchema(field.Type, seen); embedded != nil {
					for k, v := range embedded.Properties {
						schema.Properties[k] = v
					}
					schema.Required = append(schema.Required, embedded.Required...)
				}
				continue
			}

			if !field.IsExported() {
				continue
			}
			name, ok := fieldName(field)
			if !ok {
				continue
			}

			prop := typeToSchema(field.Type, seen)
			if prop == nil {
				continue
			}
			if field.Type.Kind() == reflect.Ptr {
				prop.Nullable = true
			}
			if desc := field.Tag.Get("description"); desc != "" {
				prop.Description = desc
			}
			if enum := enumValues(field); len(enum) > 0 {
				prop.Enum = enum
			}
			if isRequired(field) {
				schema.Required = append(schema.Required, name)
			}
			schema.Properties[name] = prop
		}
		return schema

	case reflect.Slice, reflect.Array:
		return &Schema{
			Type:  "array",
			Items: typeToSchema(t.Elem(), seen),
		}

	case reflect.Map:
		return &Schema{Type: "object"}

	case reflect.String:
		return &Schema{Type: "string"}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}

	case reflect.Bool:
		return &Schema{Type: "boolean"}

	case reflect.Ptr:
		return typeToSchema(t.Elem(), seen)

	default:
		return &Schema{Type: "string"}
	}
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func fieldName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, true
	}
	return field.Name, true
}

func isRequired(field reflect.StructField) bool {
	for _, rule := range strings.Split(field.Tag.Get("binding"), ",") {
		if rule == "required" {
			return true
		}
	}
	return false
}

func enumValues(field reflect.StructField) []string {
	if tag := field.Tag.Get("enums"); tag != "" {
		return strings.Split(tag, ",")
	}
	for _, rule := range strings.Split(field.Tag.Get("binding"), ",") {
		if values, ok := strings.CutPrefix(rule, "oneof="); ok {
			return strings.Fields(values)
		}
	}
	return nil
}
