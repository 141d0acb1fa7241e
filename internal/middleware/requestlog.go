package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// ContextError carries an error a handler turned into a 500 response, so
// the request line can record it.
const ContextError = "request_error"

// RequestLog writes one structured line per request.
func RequestLog(log *zap.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			err := v.Error
			if err == nil {
				err, _ = c.Get(ContextError).(error)
			}
			if err != nil {
				log.Error("request", append(fields, zap.Error(err))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	})
}
