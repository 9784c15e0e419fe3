package generator

import (
	"fmt"
	"mime/multipart"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	openapi "github.com/go-openapi/spec"
	"github.com/google/uuid"
)

const definitionPrefix = "#/definitions/"

var (
	timeType       = reflect.TypeOf(time.Time{})
	uuidType       = reflect.TypeOf(uuid.UUID{})
	fileHeaderType = reflect.TypeOf(&multipart.FileHeader{})
)

func float64Ptr(f float64) *float64 {
	return &f
}

func int64Ptr(i int64) *int64 {
	return &i
}

func unsigned(prop func() *openapi.Schema) func() *openapi.Schema {
	return func() *openapi.Schema {
		schema := prop()
		schema.Minimum = float64Ptr(0)
		return schema
	}
}

// Constructors rather than shared values: constraints are written into the
// returned schema.
var simpleTypesMapping = map[reflect.Kind]func() *openapi.Schema{
	reflect.Bool:    openapi.BoolProperty,
	reflect.Int:     openapi.Int64Property,
	reflect.Int8:    openapi.Int8Property,
	reflect.Int16:   openapi.Int16Property,
	reflect.Int32:   openapi.Int32Property,
	reflect.Int64:   openapi.Int64Property,
	reflect.Uint:    unsigned(openapi.Int64Property),
	reflect.Uint8:   unsigned(openapi.Int8Property),
	reflect.Uint16:  unsigned(openapi.Int16Property),
	reflect.Uint32:  unsigned(openapi.Int32Property),
	reflect.Uint64:  unsigned(openapi.Int64Property),
	reflect.Float32: openapi.Float32Property,
	reflect.Float64: openapi.Float64Property,
	reflect.String:  openapi.StringProperty,
}

// SchemaGenerator builds definitions for struct types. Struct fields are
// described with the constraints found in their validate tags; uploaded
// files and path or query parameters are left out of the body schema.
type SchemaGenerator struct {
	processTypes []reflect.Type
	processed    int
	queued       map[reflect.Type]struct{}
	defs         openapi.Definitions
	cTypes       map[reflect.Type]func() *openapi.Schema
}

func NewSchemaGenerator() *SchemaGenerator {
	return &SchemaGenerator{
		processTypes: make([]reflect.Type, 0),
		queued:       make(map[reflect.Type]struct{}),
		defs:         openapi.Definitions{},
		cTypes: map[reflect.Type]func() *openapi.Schema{
			timeType: openapi.DateTimeProperty,
			uuidType: UUIDProperty,
		},
	}
}

// GetSchema returns the definitions of paramType and every struct it
// references, together with the ones collected before.
func (gen *SchemaGenerator) GetSchema(paramType reflect.Type) (openapi.Definitions, error) {
	gen.Ref(paramType)
	return gen.Definitions()
}

// Ref queues a struct type for definition and returns a reference to it.
func (gen *SchemaGenerator) Ref(paramType reflect.Type) *openapi.Schema {
	for paramType.Kind() == reflect.Ptr {
		paramType = paramType.Elem()
	}
	if _, ok := gen.queued[paramType]; !ok {
		gen.queued[paramType] = struct{}{}
		gen.processTypes = append(gen.processTypes, paramType)
	}
	return openapi.RefProperty(definitionPrefix + getDefinitionName(paramType))
}

// Definitions processes every queued type.
func (gen *SchemaGenerator) Definitions() (openapi.Definitions, error) {
	for ; gen.processed < len(gen.processTypes); gen.processed++ {
		param := gen.processTypes[gen.processed]
		if param.Kind() != reflect.Struct {
			// can generate schema only for structs
			continue
		}
		defStructName := getDefinitionName(param)
		structSchema, err := gen.processStruct(param)
		if err != nil {
			return nil, fmt.Errorf("cannot process parameter %s: %w", defStructName, err)
		}
		gen.defs[defStructName] = *structSchema
	}
	return gen.defs, nil
}

func (gen *SchemaGenerator) processParam(paramType reflect.Type) (*openapi.Schema, error) {
	if cType := gen.tryCustomType(paramType); cType != nil {
		return cType, nil
	}
	if simpleType, ok := simpleTypesMapping[paramType.Kind()]; ok {
		return simpleType(), nil
	}
	switch paramType.Kind() {
	case reflect.Slice, reflect.Array:
		fieldType, err := gen.processParam(paramType.Elem())
		if err != nil {
			return nil, fmt.Errorf("cannot process array property: %w", err)
		}
		if fieldType == nil {
			return nil, nil
		}
		return openapi.ArrayProperty(fieldType), nil
	case reflect.Map:
		fieldType, err := gen.processParam(paramType.Elem())
		if err != nil {
			return nil, fmt.Errorf("cannot process map property: %w", err)
		}
		if fieldType == nil {
			return nil, nil
		}
		return openapi.MapProperty(fieldType), nil
	case reflect.Struct:
		if paramType.Name() == "" {
			return gen.processStruct(paramType)
		}
		return gen.Ref(paramType), nil
	case reflect.Ptr:
		return gen.processParam(paramType.Elem())
	case reflect.Interface:
		return &openapi.Schema{
			SchemaProps: openapi.SchemaProps{
				AnyOf: []openapi.Schema{
					*openapi.StringProperty(),
					{SchemaProps: openapi.SchemaProps{Type: []string{"integer"}}},
					{SchemaProps: openapi.SchemaProps{Type: []string{"number"}}},
					*openapi.BoolProperty(),
				}},
			SwaggerSchemaProps: openapi.SwaggerSchemaProps{Example: "any value"},
		}, nil
	}
	return nil, nil
}

func (gen *SchemaGenerator) processStruct(paramType reflect.Type) (*openapi.Schema, error) {
	res := &openapi.Schema{}
	res.Type = []string{"object"}
	res.Properties = openapi.SchemaProperties{}

	for i := 0; i < paramType.NumField(); i++ {
		field := paramType.Field(i)
		if unicode.IsLower([]rune(field.Name)[0]) {
			continue
		}
		if isFileField(field.Type) {
			continue
		}
		if _, in := paramTag(field); in == "path" || in == "query" {
			continue
		}
		fieldName := strings.Split(field.Tag.Get("json"), ",")[0]
		if fieldName == "-" {
			continue
		}
		if fieldName == "" {
			fieldName = field.Name
		}

		schema, err := gen.processParam(field.Type)
		if err != nil {
			return nil, fmt.Errorf("cannot process field %s: %w", fieldName, err)
		}
		if schema == nil {
			// Pass unsupported types
			continue
		}
		if applyValidateTag(schema, field.Tag.Get("validate"), field.Type) {
			res.Required = append(res.Required, fieldName)
		}
		res.Properties[fieldName] = *schema
	}
	return res, nil
}

func (gen *SchemaGenerator) tryCustomType(paramType reflect.Type) *openapi.Schema {
	if cSchema, ok := gen.cTypes[paramType]; ok {
		return cSchema()
	}
	if paramType.Kind() != reflect.Struct || paramType.NumField() != 1 {
		return nil
	}
	sField := paramType.Field(0)
	if !sField.Anonymous {
		return nil
	}
	if cSchema, ok := gen.cTypes[sField.Type]; ok {
		return cSchema()
	}
	return nil
}

// applyValidateTag copies the rules of a validate tag that the document can
// express into schema and reports whether the field is required. Rules after
// dive apply to elements and are not described.
func applyValidateTag(schema *openapi.Schema, tag string, fieldType reflect.Type) bool {
	if tag == "" || tag == "-" {
		return false
	}
	for fieldType.Kind() == reflect.Ptr {
		fieldType = fieldType.Elem()
	}
	kind := fieldType.Kind()
	var required bool
	for _, rule := range strings.Split(tag, ",") {
		name, param, _ := strings.Cut(strings.TrimSpace(rule), "=")
		switch name {
		case "dive":
			return required
		case "required":
			required = true
		case "email":
			schema.Format = "email"
		case "uuid", "uuid4":
			schema.Format = "uuid"
		case "url", "uri":
			schema.Format = "uri"
		case "oneof":
			for _, v := range strings.Fields(param) {
				schema.Enum = append(schema.Enum, v)
			}
		case "min", "max", "len":
			applySize(schema, name, param, kind)
		case "gte", "gt", "lte", "lt":
			applyBound(schema, name, param, kind)
		}
	}
	return required
}

func applySize(schema *openapi.Schema, rule, param string, kind reflect.Kind) {
	switch kind {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
	default:
		// on numbers min and max behave like gte and lte
		if rule == "min" {
			applyBound(schema, "gte", param, kind)
		} else if rule == "max" {
			applyBound(schema, "lte", param, kind)
		}
		return
	}
	n, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return
	}
	lower := rule == "min" || rule == "len"
	upper := rule == "max" || rule == "len"
	if kind == reflect.String {
		if lower {
			schema.MinLength = int64Ptr(n)
		}
		if upper {
			schema.MaxLength = int64Ptr(n)
		}
		return
	}
	if kind == reflect.Map {
		if lower {
			schema.MinProperties = int64Ptr(n)
		}
		if upper {
			schema.MaxProperties = int64Ptr(n)
		}
		return
	}
	if lower {
		schema.MinItems = int64Ptr(n)
	}
	if upper {
		schema.MaxItems = int64Ptr(n)
	}
}

func applyBound(schema *openapi.Schema, rule, param string, kind reflect.Kind) {
	switch {
	case kind == reflect.Interface:
	case kind >= reflect.Int && kind <= reflect.Float64:
	default:
		return
	}
	f, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return
	}
	switch rule {
	case "gte", "gt":
		schema.Minimum = float64Ptr(f)
		schema.ExclusiveMinimum = rule == "gt"
	case "lte", "lt":
		schema.Maximum = float64Ptr(f)
		schema.ExclusiveMaximum = rule == "lt"
	}
}

func isFileField(fieldType reflect.Type) bool {
	if fieldType == fileHeaderType {
		return true
	}
	return fieldType.Kind() == reflect.Slice && fieldType.Elem() == fileHeaderType
}

func UUIDProperty() *openapi.Schema {
	fType := openapi.StringProperty()
	fType.SchemaProps.Format = "uuid"
	return fType
}

func getDefinitionName(defType reflect.Type) string {
	pParts := strings.Split(defType.PkgPath(), "/")
	lastPart := pParts[len(pParts)-1]
	if len(lastPart) > 0 {
		lastPart += "."
	}
	defName := lastPart + defType.Name()
	return defName
}
