package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linkai/library/pkg/metrics"
)

// Metrics HTTP请求指标中间件
// 按路由模板(c.FullPath)打点,避免/books/1、/books/2把标签基数打爆
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			// 未匹配到路由(404),统一归类
			path = "unmatched"
		}

		metrics.IncGauge(metrics.HTTPRequestsInProgress)
		start := time.Now()

		c.Next()

		metrics.DecGauge(metrics.HTTPRequestsInProgress)

		status := strconv.Itoa(c.Writer.Status())
		labels := map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": status,
		}
		metrics.IncCounterVec(metrics.HTTPRequestsTotal, labels)
		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration, map[string]string{
			"method": c.Request.Method,
			"path":   path,
		}, time.Since(start).Seconds())
	}
}
