// api/middleware/response_time.go

package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// ResponseTime stamps X-Response-Time on every response. The header has to
// land before the first body write, so the writer is wrapped rather than
// setting it after c.Next().
func ResponseTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &timedWriter{ResponseWriter: c.Writer, start: time.Now()}
		c.Next()
	}
}

type timedWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timedWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timedWriter) Write(data []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(data)
}

func (w *timedWriter) WriteString(data string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(data)
}

func (w *timedWriter) stamp() {
	if w.stamped {
		return
	}
	w.stamped = true
	w.Header().Set("X-Response-Time", fmt.Sprintf("%.2fms", float64(time.Since(w.start).Microseconds())/1000))
}
