package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "Success"
	StatusError   = "Error"
)

type Response struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func NewResponse(status string, code int, message string, data any) Response {
	return Response{
		Status:  status,
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// SuccessResponse returns a 200 JSON response carrying data
func SuccessResponse(c *gin.Context, data any) {
	c.JSON(
		http.StatusOK,
		NewResponse(StatusSuccess, http.StatusOK, "", data),
	)
}

// CreatedResponse returns a 201 JSON response with a short message and the created resource
func CreatedResponse(c *gin.Context, message string, data any) {
	c.JSON(
		http.StatusCreated,
		NewResponse(StatusSuccess, http.StatusCreated, message, data),
	)
}

// NoContentResponse answers 204 with an empty body
func NoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(
		code,
		NewResponse(StatusError, code, message, nil),
	)
}

// AbortWithError writes the error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, e Error) {
	c.AbortWithStatusJSON(
		e.Code,
		NewResponse(StatusError, e.Code, e.Message, nil),
	)
}
