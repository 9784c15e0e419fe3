package wrapper

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"reflect"
	"regexp"

	"github.com/AlhimicMan/formsadvanced/generator"
	"github.com/labstack/echo/v4"
)

type ReqField struct {
	ParamName       string
	StructFieldName string
}

type fileField struct {
	fieldName       string
	structFieldName string
	multiple        bool
}

var (
	fHeaderType  = reflect.TypeOf(&multipart.FileHeader{})
	pathParamsRe = regexp.MustCompile(`:\w+`)
)

func (g *WrapGroup) callProcessor(path string, handler interface{}, processBody bool) echo.HandlerFunc {
	handlerType := reflect.TypeOf(handler)
	inParamsCount := handlerType.NumIn()
	outParamsCount := handlerType.NumOut()
	reqParam := handlerType.In(1)
	pathParamNames := make([]string, 0)
	for _, param := range pathParamsRe.FindAllString(path, -1) {
		pathParamNames = append(pathParamNames, param[1:])
	}
	queryParams, pathParams := g.getParams(reqParam, pathParamNames, processBody)
	fParams := g.getUploadFileParams(reqParam)
	handlerFunc := reflect.ValueOf(handler)
	return func(c echo.Context) error {
		inputVal := reflect.New(reqParam)
		if processBody {
			if err := decodeBody(c, inputVal, fParams); err != nil {
				return c.JSON(http.StatusBadRequest, NewErrorResult(http.StatusBadRequest, err.Error()))
			}
		}
		inputVal = inputVal.Elem()
		for _, pParamName := range pathParams {
			fItem := inputVal.FieldByName(pParamName.StructFieldName)
			fItem.SetString(c.Param(pParamName.ParamName))
		}
		for _, qParamName := range queryParams {
			fItem := inputVal.FieldByName(qParamName.StructFieldName)
			fItem.SetString(c.QueryParam(qParamName.ParamName))
		}

		inValues := []reflect.Value{
			reflect.ValueOf(c.Request().Context()),
			inputVal,
		}
		if inParamsCount > 2 {
			inValues = append(inValues, reflect.ValueOf(c.Request()))
		}
		if inParamsCount > 3 {
			inValues = append(inValues, reflect.ValueOf(c.Response()))
		}
		results := handlerFunc.Call(inValues)
		errVal := results[outParamsCount-1]
		if resultErr := valueError(errVal); resultErr != nil {
			return writeError(c, resultErr)
		}
		if outParamsCount == 2 {
			return c.JSON(http.StatusOK, results[0].Interface())
		}
		return nil
	}
}

// valueError extracts the returned error, treating typed nil pointers such
// as a nil *ErrorResult as no error.
func valueError(errVal reflect.Value) error {
	switch errVal.Kind() {
	case reflect.Ptr, reflect.Interface:
		if errVal.IsNil() {
			return nil
		}
	}
	resultErr, ok := errVal.Interface().(error)
	if !ok {
		return fmt.Errorf("callback cannot process error: %v", errVal.Interface())
	}
	return resultErr
}

func writeError(c echo.Context, resultErr error) error {
	var errRes *ErrorResult
	if errors.As(resultErr, &errRes) {
		return c.JSON(errRes.statusCode(), errRes)
	}
	var errVal ErrorResult
	if errors.As(resultErr, &errVal) {
		return c.JSON(errVal.statusCode(), errVal)
	}
	var httpErr *echo.HTTPError
	if errors.As(resultErr, &httpErr) {
		return httpErr
	}
	return c.JSON(http.StatusInternalServerError, NewErrorResult(http.StatusInternalServerError, resultErr.Error()))
}

// decodeBody fills inputVal from a JSON body, a multipart form with files or
// an urlencoded form, depending on the request content type.
func decodeBody(c echo.Context, inputVal reflect.Value, fParams []fileField) error {
	mediaType, _, _ := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
	switch mediaType {
	case echo.MIMEMultipartForm:
		mForm, err := c.MultipartForm()
		if err != nil {
			return fmt.Errorf("cannot get multipart form: %w", err)
		}
		if err := processMultipartUpload(mForm, inputVal, fParams); err != nil {
			return fmt.Errorf("cannot process multipart form: %w", err)
		}
		return nil
	case echo.MIMEApplicationForm:
		values, err := c.FormParams()
		if err != nil {
			return fmt.Errorf("cannot parse form: %w", err)
		}
		return decodeRequestValue(values[generator.RequestFormField], inputVal)
	}
	err := json.NewDecoder(c.Request().Body).Decode(inputVal.Interface())
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("could not decode req body json: %w", err)
	}
	return nil
}

func decodeRequestValue(reqBody []string, inputVal reflect.Value) error {
	if len(reqBody) == 0 || reqBody[0] == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(reqBody[0]), inputVal.Interface()); err != nil {
		return fmt.Errorf("could not decode %s json: %w", generator.RequestFormField, err)
	}
	return nil
}

func processMultipartUpload(mForm *multipart.Form, inputVal reflect.Value, fParams []fileField) error {
	if err := decodeRequestValue(mForm.Value[generator.RequestFormField], inputVal); err != nil {
		return err
	}
	inputVal = inputVal.Elem()
	for _, fP := range fParams {
		fHeaders, ok := mForm.File[fP.fieldName]
		if !ok {
			continue
		}
		fItem := inputVal.FieldByName(fP.structFieldName)
		if fP.multiple {
			fItem.Set(reflect.ValueOf(fHeaders))
		} else if len(fHeaders) > 0 {
			fItem.Set(reflect.ValueOf(fHeaders[0]))
		}
	}
	return nil
}

func (g *WrapGroup) getUploadFileParams(paramType reflect.Type) []fileField {
	fParams := make([]fileField, 0)
	for i := 0; i < paramType.NumField(); i++ {
		field := paramType.Field(i)
		var multiple bool
		switch {
		case field.Type == fHeaderType:
		case field.Type.Kind() == reflect.Slice && field.Type.Elem() == fHeaderType:
			multiple = true
		default:
			continue
		}
		fInfo := generator.GetFieldInfo(field)
		if fInfo == nil {
			continue
		}
		fParams = append(fParams, fileField{
			fieldName:       fInfo.Name,
			structFieldName: field.Name,
			multiple:        multiple,
		})
	}
	return fParams
}

func (g *WrapGroup) getParams(paramType reflect.Type, pathParams []string, processBody bool) (qParamNames []ReqField, pParamNames []ReqField) {
	for i := 0; i < paramType.NumField(); i++ {
		field := paramType.Field(i)
		fInfo := generator.GetFieldInfo(field)
		if fInfo == nil {
			continue
		}
		if field.Type.Kind() != reflect.String {
			// Only type string supported for query parameters
			continue
		}
		isPathParam := fInfo.In == "path"
		for _, pParam := range pathParams {
			if fInfo.Name == pParam {
				isPathParam = true
			}
		}
		reqField := ReqField{
			ParamName:       fInfo.Name,
			StructFieldName: field.Name,
		}
		if isPathParam {
			pParamNames = append(pParamNames, reqField)
		} else if fInfo.In == "query" || !processBody {
			qParamNames = append(qParamNames, reqField)
		}
	}
	return qParamNames, pParamNames
}
