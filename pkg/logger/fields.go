package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field type alias for convenience
type Field = zap.Field

// String constructs a field with the given key and value
func String(key string, val string) Field {
	return zap.String(key, val)
}

// Strings constructs a field with the given key and slice of strings
func Strings(key string, val []string) Field {
	return zap.Strings(key, val)
}

// Int constructs a field with the given key and value
func Int(key string, val int) Field {
	return zap.Int(key, val)
}

// Int64 constructs a field with the given key and value
func Int64(key string, val int64) Field {
	return zap.Int64(key, val)
}

// Float64 constructs a field with the given key and value
func Float64(key string, val float64) Field {
	return zap.Float64(key, val)
}

// Bool constructs a field with the given key and value
func Bool(key string, val bool) Field {
	return zap.Bool(key, val)
}

// Time constructs a field with the given key and value
func Time(key string, val time.Time) Field {
	return zap.Time(key, val)
}

// Duration constructs a field with the given key and value
func Duration(key string, val time.Duration) Field {
	return zap.Duration(key, val)
}

// Error constructs a field that lazily stores err.Error() under the key "error"
func Error(err error) Field {
	return zap.Error(err)
}

// Any takes a key and an arbitrary value and chooses the best way to represent them
func Any(key string, val interface{}) Field {
	return zap.Any(key, val)
}

// ByteString constructs a field that carries UTF-8 encoded text as a []byte
func ByteString(key string, val []byte) Field {
	return zap.ByteString(key, val)
}

// Request and tracing fields

func RequestID(id string) Field {
	return zap.String("request_id", id)
}

func TraceID(id string) Field {
	return zap.String("trace_id", id)
}

func SpanID(id string) Field {
	return zap.String("span_id", id)
}

func Method(method string) Field {
	return zap.String("method", method)
}

func Path(path string) Field {
	return zap.String("path", path)
}

func Query(q string) Field {
	return zap.String("query", q)
}

func StatusCode(code int) Field {
	return zap.Int("status_code", code)
}

func Latency(d time.Duration) Field {
	return zap.Duration("latency", d)
}

func ClientIP(ip string) Field {
	return zap.String("client_ip", ip)
}

func UserAgent(ua string) Field {
	return zap.String("user_agent", ua)
}

func BodySize(size int) Field {
	return zap.Int("body_size", size)
}

func Referer(ref string) Field {
	return zap.String("referer", ref)
}

// Application fields

// Component tags log lines with the subsystem that produced them
func Component(name string) Field {
	return zap.String("component", name)
}

// Operation tags log lines with the operation being performed
func Operation(name string) Field {
	return zap.String("operation", name)
}

func Environment(env string) Field {
	return zap.String("environment", env)
}

func Version(version string) Field {
	return zap.String("version", version)
}

// Domain fields

func UserID(id string) Field {
	return zap.String("user_id", id)
}

func ProjectID(id string) Field {
	return zap.String("project_id", id)
}

func DeploymentID(id string) Field {
	return zap.String("deployment_id", id)
}

func RepoURL(url string) Field {
	return zap.String("repo_url", url)
}

func Status(status string) Field {
	return zap.String("status", status)
}
