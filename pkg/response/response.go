package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the unified API response envelope. Successful responses carry
// status "success" and a data payload; failures carry status "error" and a
// human-readable message.
type Body struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// AppError is a structured application error carrying the HTTP status the
// transport layer should respond with. Services return these; handlers never
// inspect business failures themselves.
type AppError struct {
	HTTPStatus int
	Message    string
}

func (e *AppError) Error() string {
	return e.Message
}

// Error kind constructors

func NewBadRequest(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Message: msg}
}

func NewUnauthorized(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Message: msg}
}

func NewForbidden(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusForbidden, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Message: msg}
}

func NewConflict(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Message: msg}
}

func NewServerError(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Message: msg}
}

// AsAppError unwraps err into an *AppError if it is one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a 404-class AppError.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.HTTPStatus == http.StatusNotFound
}

// IsConflict reports whether err is a 409-class AppError.
func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.HTTPStatus == http.StatusConflict
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Status: "success", Data: data})
}

// SuccessMessage sends a 200 OK response with data and a message.
func SuccessMessage(c *gin.Context, data interface{}, msg string) {
	c.JSON(http.StatusOK, Body{Status: "success", Data: data, Message: msg})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Status: "success", Data: data})
}

// Error sends an error response. If err is an *AppError its status is used;
// anything else becomes a generic 500.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, Body{Status: "error", Message: appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, Body{Status: "error", Message: "internal server error"})
}

// Convenience error responders for handler-level failures.

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Body{Status: "error", Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Body{Status: "error", Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Body{Status: "error", Message: msg})
}

func ServerError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, Body{Status: "error", Message: msg})
}
