package wrapper

import (
	"context"
	"net/http"
	"reflect"

	"github.com/AlhimicMan/formsadvanced/generator"
	"github.com/pkg/errors"
)

var (
	ctxType        = reflect.TypeOf((*context.Context)(nil)).Elem()
	requestType    = reflect.TypeOf(&http.Request{})
	respWriterType = reflect.TypeOf((*http.ResponseWriter)(nil)).Elem()
	errorInterface = reflect.TypeOf((*error)(nil)).Elem()
)

// processHandler checks that handler has one of the supported shapes
//
//	func(ctx, Req) error
//	func(ctx, Req) (Res, error)
//	func(ctx, Req, *http.Request) (Res, error)
//	func(ctx, Req, *http.Request, http.ResponseWriter) error
//
// where Req and Res are structs, and describes it for the API document.
func processHandler(handler interface{}) (generator.HandlerInfo, error) {
	handlerType := reflect.TypeOf(handler)
	if handlerType == nil || handlerType.Kind() != reflect.Func {
		return generator.HandlerInfo{}, errors.New("cannot register handler: not a function")
	}

	inputParamsCount := handlerType.NumIn()
	if inputParamsCount < 2 || inputParamsCount > 4 {
		return generator.HandlerInfo{}, errors.Errorf("cannot register handler: unsupported input params count: %d", inputParamsCount)
	}
	if !handlerType.In(0).Implements(ctxType) {
		return generator.HandlerInfo{}, errors.New("cannot register handler: first parameter must be Context")
	}
	reqParam := handlerType.In(1)
	if reqParam.Kind() != reflect.Struct {
		return generator.HandlerInfo{}, errors.New("cannot register handler: second parameter must be struct")
	}
	if inputParamsCount > 2 && handlerType.In(2) != requestType {
		return generator.HandlerInfo{}, errors.Errorf("cannot register handler: third parameter must be *http.Request, have %s", handlerType.In(2).String())
	}
	if inputParamsCount > 3 && !handlerType.In(3).Implements(respWriterType) {
		return generator.HandlerInfo{}, errors.New("cannot register handler: fourth parameter must implement http.ResponseWriter")
	}

	var outType *reflect.Type
	switch handlerType.NumOut() {
	case 1:
		if !handlerType.Out(0).Implements(errorInterface) {
			return generator.HandlerInfo{}, errors.New("cannot register handler: return value must be an error")
		}
	case 2:
		if handlerType.Out(0).Kind() != reflect.Struct {
			return generator.HandlerInfo{}, errors.New("cannot register handler: first return value must be a struct")
		}
		if !handlerType.Out(1).Implements(errorInterface) {
			return generator.HandlerInfo{}, errors.New("cannot register handler: second return value must be an error")
		}
		outRes := handlerType.Out(0)
		outType = &outRes
	default:
		return generator.HandlerInfo{}, errors.Errorf("cannot register handler: unsupported out params count %d", handlerType.NumOut())
	}

	return generator.HandlerInfo{
		RequestType: &reqParam,
		OutputType:  outType,
	}, nil
}
