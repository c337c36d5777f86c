package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/daniil11ru/qrtrack/cli/tracker/types"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const serverErrorMessage = "Server error"

// respondError переводит ошибку сценария в HTTP-ответ. notFound задаёт текст для 404.
func respondError(c *gin.Context, err error, notFound string) {
	var validation *types.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"msg": validation.Message})
	case errors.Is(err, types.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": notFound})
	default:
		log.WithFields(log.Fields{"path": c.FullPath(), "err": err}).Error("Ошибка обработки запроса")
		c.JSON(http.StatusInternalServerError, gin.H{"msg": serverErrorMessage})
	}
}

// bindJSON разбирает тело; пустое тело не считается ошибкой, проверку полей делает сценарий.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && (typeErr.Field == "latitude" || typeErr.Field == "longitude") {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "latitude and longitude must be numbers"})
		return false
	}

	log.WithField("err", err).Debug("Некорректное тело запроса")
	c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request body"})
	return false
}
