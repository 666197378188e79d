package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey é a chave do gin.Context onde o logger de requisição grava o id.
const RequestIDKey = "requestID"

// HTTPError é o corpo de toda resposta de erro da API. Field e Reason só
// aparecem em falhas de validação; RequestID liga a resposta ao log.
type HTTPError struct {
	Code      string `json:"error_code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func body(c *gin.Context, code, message string) HTTPError {
	return HTTPError{
		Code:      code,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
	}
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, body(c, code, message))
}

// Invalid responde 400 apontando o campo rejeitado.
func Invalid(c *gin.Context, field, reason, message string) {
	e := body(c, "validation_failed", message)
	e.Field, e.Reason = field, reason
	c.JSON(http.StatusBadRequest, e)
}

// Abort escreve o erro e interrompe a cadeia de middlewares.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, body(c, code, message))
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}
