package server

import (
	"compress/gzip"
	"fmt"
	"log"
	"net/http"
	"strings"

	"tasktracker/internal/domain/errors"

	"github.com/gin-gonic/gin"
)

// Recovery перехватывает панику обработчика, логирует её и отдаёт клиенту
// общий ответ 500. Детали паники попадают в тело только в режиме development.
func Recovery(mode string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Println("[ERROR] Паника при обработке запроса:", r)
				body := gin.H{"error": errors.ErrInternalServer.Error()}
				if mode == ModeDevelopment {
					body["message"] = fmt.Sprint(r)
				}
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, body)
			}
		}()
		ctx.Next()
	}
}

func CORS() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Access-Control-Allow-Origin", "*")
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gw    *gzip.Writer
	wrote bool
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	// Ответы без тела не сжимаем, иначе gzip-заголовок станет телом ответа.
	if statusCode == http.StatusNoContent || statusCode == http.StatusNotModified {
		w.Header().Del("Content-Encoding")
		w.gw = nil
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if w.gw == nil {
		return w.ResponseWriter.Write(data)
	}
	w.wrote = true
	return w.gw.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipResponseWriter) finish() {
	if w.gw == nil {
		return
	}
	if w.wrote {
		if err := w.gw.Close(); err != nil {
			log.Println("[ERROR] Не удалось завершить сжатие ответа:", err)
		}
		return
	}
	if !w.Written() {
		w.Header().Del("Content-Encoding")
	}
}

// GzipResponseCompress сжимает тело ответа, когда клиент прислал
// Accept-Encoding: gzip.
func GzipResponseCompress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodHead {
			ctx.Next()
			return
		}
		acceptEnc := strings.ToLower(ctx.GetHeader("Accept-Encoding"))
		if !strings.Contains(acceptEnc, "gzip") {
			ctx.Next()
			return
		}

		ctx.Header("Content-Encoding", "gzip")
		ctx.Header("Vary", "Accept-Encoding")

		gw := &gzipResponseWriter{ResponseWriter: ctx.Writer, gw: gzip.NewWriter(ctx.Writer)}
		ctx.Writer = gw

		ctx.Next()

		gw.finish()
	}
}
