package generator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"

	openapi "github.com/go-openapi/spec"
)

// RequestFormField is the multipart field holding the JSON encoded request
// next to uploaded files.
const RequestFormField = "request"

var pathParamsRe = regexp.MustCompile(`:\w+`)

// pathParamsProcessor parse path, search for path parameters. Create path for swagger annotation
func (s *SwaggerGenerator) pathParamsProcessor(op *openapi.Operation, path string) string {
	for _, param := range pathParamsRe.FindAllString(path, -1) {
		pName := param[1:]
		path = strings.ReplaceAll(path, param, "{"+pName+"}")
		op.Parameters = append(op.Parameters, *openapi.PathParam(pName).Typed("string", ""))
	}
	return path
}

// queryParamsProcessor describes string fields of a GET or DELETE request as
// query parameters. When onlyTagged is set only fields marked
// `param:"name,query"` are taken, as bodied requests carry the rest.
func (s *SwaggerGenerator) queryParamsProcessor(op *openapi.Operation, paramType reflect.Type, onlyTagged bool) {
	skipParams := make(map[string]struct{}, len(op.Parameters))
	for _, pParam := range op.Parameters {
		skipParams[pParam.Name] = struct{}{}
	}
	for i := 0; i < paramType.NumField(); i++ {
		field := paramType.Field(i)
		fInfo := GetFieldInfo(field)
		if fInfo == nil || fInfo.In == "path" {
			continue
		}
		if onlyTagged && fInfo.In != "query" {
			continue
		}
		if _, skip := skipParams[fInfo.Name]; skip {
			continue
		}
		if field.Type.Kind() != reflect.String {
			// Only type string supported for query parameters
			continue
		}
		sParam := openapi.QueryParam(fInfo.Name).Typed("string", "")
		sParam.Required = hasRule(field.Tag.Get("validate"), "required")
		op.Parameters = append(op.Parameters, *sParam)
	}
}

func (s *SwaggerGenerator) bodyParamsProcessor(op *openapi.Operation, routeInfo RouteInfo) {
	paramType := *routeInfo.Handler.RequestType
	fileParams := append([]FileUploadParameters{}, routeInfo.Parameters.FileUpload...)
	for _, uParam := range processFileUploadParam(paramType) {
		var found bool
		for _, infoParam := range fileParams {
			if uParam.Name == infoParam.Name {
				found = true
				break
			}
		}
		if !found {
			fileParams = append(fileParams, uParam)
		}
	}

	bodyRef := s.schemas.Ref(paramType)
	if len(fileParams) == 0 {
		op.Consumes = []string{"application/json"}
		bodyParam := openapi.BodyParam(paramType.Name(), bodyRef)
		bodyParam.Required = true
		op.Parameters = append(op.Parameters, *bodyParam)
		return
	}

	op.Consumes = []string{"multipart/form-data"}
	for _, fileParam := range fileParams {
		var schemaFileParam *openapi.Parameter
		if fileParam.MultipleFiles {
			schemaFileParam = openapi.FormDataParam(fileParam.Name)
			schemaFileParam.Type = "array"
			schemaFileParam.Items = &openapi.Items{}
			schemaFileParam.Items.Typed("string", "binary")
		} else {
			schemaFileParam = openapi.FileParam(fileParam.Name)
		}
		op.Parameters = append(op.Parameters, *schemaFileParam)
	}
	dataParam := openapi.FormDataParam(RequestFormField).Typed("string", "")
	dataParam.Description = fmt.Sprintf("JSON encoded %s", getDefinitionName(paramType))
	if defaultVal := requestDefault(paramType, op.Parameters); defaultVal != nil {
		dataParam.Default = defaultVal
	}
	op.Parameters = append(op.Parameters, *dataParam)
}

// requestDefault is the zero request as a JSON object, without the fields
// already sent as path, query or file parameters.
func requestDefault(paramType reflect.Type, params []openapi.Parameter) map[string]interface{} {
	dumpVal, err := json.Marshal(reflect.New(paramType).Elem().Interface())
	if err != nil {
		return nil
	}
	defaultMapVal := make(map[string]interface{})
	if err := json.Unmarshal(dumpVal, &defaultMapVal); err != nil {
		return nil
	}
	for _, p := range params {
		delete(defaultMapVal, p.Name)
	}
	for i := 0; i < paramType.NumField(); i++ {
		fInfo := GetFieldInfo(paramType.Field(i))
		if fInfo != nil && fInfo.In != "" {
			delete(defaultMapVal, fInfo.JSONName)
		}
	}
	return defaultMapVal
}

func processFileUploadParam(paramType reflect.Type) []FileUploadParameters {
	fParams := make([]FileUploadParameters, 0)
	for i := 0; i < paramType.NumField(); i++ {
		field := paramType.Field(i)
		if !isFileField(field.Type) {
			continue
		}
		fInfo := GetFieldInfo(field)
		if fInfo == nil {
			continue
		}
		fParams = append(fParams, FileUploadParameters{
			Name:          fInfo.Name,
			jsonName:      fInfo.JSONName,
			MultipleFiles: field.Type.Kind() == reflect.Slice,
		})
	}
	return fParams
}

func (s *SwaggerGenerator) responseProcessor(op *openapi.Operation, routeInfo RouteInfo) {
	op.Produces = []string{"application/json"}
	op.Responses = &openapi.Responses{}
	op.Responses.StatusCodeResponses = make(map[int]openapi.Response)
	resp := openapi.NewResponse().WithDescription(http.StatusText(http.StatusOK))
	if routeInfo.Handler.OutputType != nil {
		resp = resp.WithSchema(s.schemas.Ref(*routeInfo.Handler.OutputType))
	}
	op.Responses.StatusCodeResponses[http.StatusOK] = *resp

	codes := make([]int, 0, len(routeInfo.Parameters.Errors))
	for code := range routeInfo.Parameters.Errors {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		errResp := openapi.NewResponse().WithDescription(routeInfo.Parameters.Errors[code])
		op.Responses.StatusCodeResponses[code] = *errResp
	}
}

func hasRule(tag, rule string) bool {
	for _, r := range strings.Split(tag, ",") {
		if r == "dive" {
			return false
		}
		if r == rule {
			return true
		}
	}
	return false
}

// paramTag returns the name and location of a `param:"name,in"` tag.
func paramTag(field reflect.StructField) (name, in string) {
	tagParts := strings.Split(field.Tag.Get("param"), ",")
	if len(tagParts) > 1 {
		in = tagParts[1]
	}
	return tagParts[0], in
}

// GetFieldInfo resolves the parameter name of a request field: the param tag
// when set, the json name otherwise. Nil means the field is not a parameter.
func GetFieldInfo(field reflect.StructField) *fieldInfo {
	paramName, in := paramTag(field)
	if paramName == "-" {
		return nil
	}
	jsonName := strings.Split(field.Tag.Get("json"), ",")[0]
	if jsonName == "-" {
		if paramName == "" {
			return nil
		}
		jsonName = ""
	} else if jsonName == "" {
		jsonName = field.Name
	}
	res := &fieldInfo{
		Name:     paramName,
		JSONName: jsonName,
		In:       in,
	}
	if res.Name == "" {
		res.Name = jsonName
	}
	return res
}
