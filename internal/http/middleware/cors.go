package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS allows browser form clients on other origins to call the API and read
// the batch report headers.
func CORS() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Access-Control-Allow-Origin", "*")
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Content-Type")
		ctx.Header("Access-Control-Expose-Headers",
			"Content-Disposition, X-Batch-Run-ID, X-Batch-Processed, X-Batch-Skipped, X-Batch-Skipped-Files")

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}
