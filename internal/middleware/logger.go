package middleware

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const redacted = "REDACTED"

// Logger is gin's access log with the token query parameter masked, so
// stream credentials never reach the log output.
func Logger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(p gin.LogFormatterParams) string {
		if p.Latency > time.Minute {
			p.Latency = p.Latency.Truncate(time.Second)
		}
		return fmt.Sprintf("[GIN] %v | %3d | %13v | %15s | %-7s %#v\n%s",
			p.TimeStamp.Format("2006/01/02 - 15:04:05"),
			p.StatusCode,
			p.Latency,
			p.ClientIP,
			p.Method,
			RedactPath(p.Path),
			p.ErrorMessage,
		)
	})
}

// RedactPath masks the token query value in a request path.
func RedactPath(path string) string {
	base, rawQuery, found := strings.Cut(path, "?")
	if !found {
		return path
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return base + "?" + redacted
	}
	if _, ok := query[TokenParam]; !ok {
		return path
	}
	query.Set(TokenParam, redacted)
	return base + "?" + query.Encode()
}
