package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	pkgerrors "relatus/pkg/errors"
)

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "ok", response["status"])
}

func TestRequireUser_MissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requireUser())
	router.GET("/api/nodes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"owner": ownerID(c)})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/nodes", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireUser_BlankHeaderRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requireUser())
	router.GET("/api/nodes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/nodes", nil)
	req.Header.Set("X-User-ID", "   ")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireUser_ResolvesOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requireUser())
	router.GET("/api/nodes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"owner": ownerID(c)})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/nodes", nil)
	req.Header.Set("X-User-ID", "user-42")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "user-42", response["owner"])
}

func TestRespondError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{pkgerrors.NewNodeNotFound("node-1"), http.StatusNotFound},
		{pkgerrors.NewUnauthorized("node-1"), http.StatusForbidden},
		{pkgerrors.NewInvalidArgument("bad input"), http.StatusBadRequest},
		{pkgerrors.NewConflict("duplicate"), http.StatusConflict},
		{pkgerrors.NewGraphQueryFailed("match", assert.AnError), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		router := gin.New()
		router.GET("/boom", func(c *gin.Context) {
			respondError(c, tc.err)
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/boom", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, tc.status, w.Code, "error: %v", tc.err)
	}
}

func TestIntQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/echo", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"limit": intQuery(c, "limit", 7)})
	})

	cases := []struct {
		query string
		want  float64
	}{
		{"", 7},
		{"?limit=3", 3},
		{"?limit=abc", 7},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/echo"+tc.query, nil)
		router.ServeHTTP(w, req)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.Equal(t, tc.want, response["limit"], "query: %q", tc.query)
	}
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})
	router.POST("/api/nodes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/api/nodes", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
