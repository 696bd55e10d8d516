package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "edudata-explorer/internal/common/errors"
	"edudata-explorer/internal/common/logger"
	"edudata-explorer/internal/explorer"
	"edudata-explorer/internal/models"
)

const sessionKey = "session"

type fetchRequest struct {
	Dataset string `json:"dataset" binding:"required"`
	Year    int    `json:"year"`
}

type queryRequest struct {
	Question string `json:"question"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func abortWithError(c *gin.Context, svc *explorer.Service, action string, err error) {
	msg := svc.UserMessage(action, err)
	code := apperrors.CodeOf(err)
	c.AbortWithStatusJSON(apperrors.HTTPStatus(code), gin.H{
		"error": errorBody{Code: string(code), Message: msg},
	})
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request handled", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}

func sessionMiddleware(svc *explorer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := svc.Session(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": errorBody{Code: "NOT_FOUND", Message: "Session not found."},
			})
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

func sessionFromContext(c *gin.Context) *models.Session {
	v, _ := c.Get(sessionKey)
	s, _ := v.(*models.Session)
	return s
}

func healthHandler(svc *explorer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": svc.SessionCount(),
		})
	}
}

func ListDatasetsHandler(svc *explorer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"datasets":    svc.Datasets(),
			"defaultYear": svc.DefaultYear(),
			"minYear":     models.MinYear,
			"maxYear":     models.MaxYear,
		})
	}
}

func CreateSessionHandler(svc *explorer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := svc.StartSession()
		c.JSON(http.StatusCreated, session)
	}
}

func EndSessionHandler(svc *explorer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.EndSession(c.Param("id")); err != nil && !errors.Is(err, explorer.ErrSessionNotFound) {
			abortWithError(c, svc, "end-session", err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// FetchHandler fetches into the session slot. An unknown dataset answers
// 200 with a null dataset, mirroring the fetcher's null result.
func FetchHandler(svc *explorer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req fetchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, svc, "fetch", apperrors.NewValidationError("dataset is required"))
			return
		}

		dataset, err := svc.Fetch(c.Request.Context(), sessionFromContext(c), req.Dataset, req.Year)
		if err != nil {
			abortWithError(c, svc, "fetch", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"dataset": dataset})
	}
}

func DigestHandler(svc *explorer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.Digest(c.Request.Context(), sessionFromContext(c))
		if err != nil {
			abortWithError(c, svc, "digest", err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func QueryHandler(svc *explorer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req queryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, svc, "query", apperrors.NewValidationError("please enter a query"))
			return
		}

		out, err := svc.Ask(c.Request.Context(), sessionFromContext(c), req.Question)
		if err != nil {
			abortWithError(c, svc, "query", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"answer": out.Answer})
	}
}
