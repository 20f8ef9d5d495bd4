package httpserver

import (
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Option -.
type Option func(*Server)

// Port -.
func Port(port string) Option {
	return func(s *Server) {
		s.address = net.JoinHostPort("", port)
	}
}

// Prefork -.
func Prefork(prefork bool) Option {
	return func(s *Server) {
		s.prefork = prefork
	}
}

// ReadTimeout -.
func ReadTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = timeout
	}
}

// WriteTimeout -.
func WriteTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.writeTimeout = timeout
	}
}

// ShutdownTimeout -.
func ShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = timeout
	}
}

// BodyLimit caps request bodies, multipart uploads included.
func BodyLimit(bytes int) Option {
	return func(s *Server) {
		if bytes > 0 {
			s.bodyLimit = bytes
		}
	}
}

// AppName is reported in the startup log line and fiber's app name.
func AppName(name string) Option {
	return func(s *Server) {
		s.appName = name
	}
}

// ErrorHandler replaces fiber's plain-text error handler.
func ErrorHandler(h fiber.ErrorHandler) Option {
	return func(s *Server) {
		s.errorHandler = h
	}
}
