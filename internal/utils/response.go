package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success sends a 200 response with a message and optional named payloads.
func Success(c *gin.Context, message string, payload gin.H) {
	respond(c, http.StatusOK, message, payload)
}

// Created sends a 201 response with a message and optional named payloads.
func Created(c *gin.Context, message string, payload gin.H) {
	respond(c, http.StatusCreated, message, payload)
}

func respond(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"message": message}
	for key, value := range payload {
		body[key] = value
	}
	c.JSON(status, body)
}

// Fail sends an error response with the error/details contract.
func Fail(c *gin.Context, statusCode int, errorMessage, details string) {
	body := gin.H{"error": errorMessage}
	if details != "" {
		body["details"] = details
	}
	c.JSON(statusCode, body)
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, errorMessage, details string) {
	Fail(c, http.StatusBadRequest, errorMessage, details)
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, errorMessage string) {
	Fail(c, http.StatusUnauthorized, errorMessage, "")
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, errorMessage string) {
	Fail(c, http.StatusForbidden, errorMessage, "")
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, errorMessage, details string) {
	Fail(c, http.StatusNotFound, errorMessage, details)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, errorMessage, details string) {
	Fail(c, http.StatusInternalServerError, errorMessage, details)
}
