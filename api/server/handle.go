package server

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/photon-storage/go-common/log"

	"github.com/photon-storage/sth-explorer/api/pagination"
	"github.com/photon-storage/sth-explorer/api/service"
)

// handleFunc is a service method of one of the forms
//
//	func(*gin.Context) error
//	func(*gin.Context) (T, error)
//	func(*gin.Context, *Req) (T, error)
//	func(*gin.Context, *Req, *pagination.Query) (*pagination.Result, error)
type handleFunc interface{}

var (
	ginContextType = reflect.TypeOf(&gin.Context{})
	paginationType = reflect.TypeOf(&pagination.Query{})
	resultType     = reflect.TypeOf(&pagination.Result{})
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
)

type response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// statusCoder lets a response choose its success status code.
type statusCoder interface {
	StatusCode() int
}

func validateFunc(fn handleFunc) error {
	ft := reflect.TypeOf(fn)
	if ft == nil || ft.Kind() != reflect.Func {
		return errors.New("handler must be a function")
	}

	if ft.NumIn() < 1 || ft.NumIn() > 3 {
		return errors.New("handler must take one to three parameters")
	}

	if ft.In(0) != ginContextType {
		return errors.New("the first parameter must be *gin.Context")
	}

	if ft.NumIn() >= 2 && ft.In(1).Kind() != reflect.Ptr {
		return errors.New("the second parameter must be a pointer")
	}

	if ft.NumIn() == 3 && ft.In(2) != paginationType {
		return errors.New("the third parameter must be *pagination.Query")
	}

	if ft.NumOut() < 1 || ft.NumOut() > 2 {
		return errors.New("handler must return one or two values")
	}

	if ft.Out(ft.NumOut()-1) != errorType {
		return errors.New("the last return value must be an error")
	}

	if ft.NumIn() == 3 && (ft.NumOut() != 2 || ft.Out(0) != resultType) {
		return errors.New("paginated handlers must return *pagination.Result")
	}

	return nil
}

func (s *Server) handle(fn handleFunc) gin.HandlerFunc {
	if err := validateFunc(fn); err != nil {
		log.Fatal("invalid handler", "error", err)
	}

	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	return func(c *gin.Context) {
		args := []reflect.Value{reflect.ValueOf(c)}
		if ft.NumIn() >= 2 {
			req := reflect.New(ft.In(1).Elem())
			if err := bind(c, req.Interface()); err != nil {
				c.Error(errors.Wrap(service.ErrBadRequest, err.Error()))
				return
			}
			args = append(args, req)
		}

		if ft.NumIn() == 3 {
			page := &pagination.Query{}
			if err := c.ShouldBindQuery(page); err != nil {
				c.Error(errors.Wrap(service.ErrBadRequest, err.Error()))
				return
			}
			page.Normalize()
			args = append(args, reflect.ValueOf(page))
		}

		out := fv.Call(args)
		if err, _ := out[len(out)-1].Interface().(error); err != nil {
			c.Error(err)
			return
		}

		var data interface{}
		status := http.StatusOK
		if len(out) == 2 {
			data = out[0].Interface()
			if sc, ok := data.(statusCoder); ok {
				status = sc.StatusCode()
			}
		}

		c.JSON(status, &response{
			Code: http.StatusOK,
			Msg:  "ok",
			Data: data,
		})
	}
}

func bind(c *gin.Context, req interface{}) error {
	if c.Request.Method == http.MethodGet {
		return c.ShouldBindQuery(req)
	}

	return c.ShouldBindJSON(req)
}

func handleError() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, code, msg := service.Classify(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				"path", c.FullPath(),
				"error", err,
			)
		}

		c.JSON(status, &response{
			Code: code,
			Msg:  msg,
		})
	}
}
