package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	requestBodyLogKey  = "http.request.body.summary"
	responseBodyLogKey = "http.response.body.summary"
	maxLoggedBody      = 2048
	redacted           = "redacted"
	binaryBody         = "binary"
)

var sensitiveKeys = []string{"password", "token", "secret", "authorization"}

// registerLogging writes one structured record per request. Bodies are
// summarised by BodyDump and sensitive fields are redacted.
func registerLogging(e *echo.Echo, logger *slog.Logger) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			userID := "anonymous"
			if user, ok := CurrentUser(c); ok {
				userID = user.ID
			} else if identity, ok := currentIdentity(c); ok {
				userID = identity.UserID
			}

			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Int64("latency_ms", v.Latency.Milliseconds()),
				slog.String("user_id", userID),
			}
			if body := c.Get(requestBodyLogKey); body != nil {
				attrs = append(attrs, slog.Any("request_body", body))
			}
			if body := c.Get(responseBodyLogKey); body != nil {
				attrs = append(attrs, slog.Any("response_body", body))
			}

			level := slog.LevelInfo
			switch {
			case v.Status >= 500:
				level = slog.LevelError
			case v.Status >= 400:
				level = slog.LevelWarn
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			logger.LogAttrs(context.Background(), level, "http request", attrs...)
			return nil
		},
	}))

	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, resBody []byte) {
		if summary := sanitizeBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
			c.Set(requestBodyLogKey, summary)
		}
		if summary := sanitizeBody(resBody, c.Response().Header().Get(echo.HeaderContentType)); summary != nil {
			c.Set(responseBodyLogKey, summary)
		}
	}))
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

func sanitizeBody(body []byte, contentType string) interface{} {
	if len(body) == 0 {
		return nil
	}
	lowered := strings.ToLower(strings.TrimSpace(contentType))

	if strings.HasPrefix(lowered, "multipart/form-data") {
		return sanitizeMultipart(body, contentType)
	}
	if strings.HasPrefix(lowered, "application/json") || json.Valid(body) {
		var data interface{}
		if err := json.Unmarshal(body, &data); err == nil {
			return limitJSONSize(sanitizeJSON(data, ""))
		}
	}
	if containsBinaryBytes(body) {
		return binaryBody
	}
	return clampString(string(body))
}

func sanitizeJSON(value interface{}, key string) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			if isSensitiveKey(k) {
				out[k] = redacted
				continue
			}
			out[k] = sanitizeJSON(item, k)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = sanitizeJSON(item, key)
		}
		return out
	case string:
		if containsBinaryBytes([]byte(v)) {
			return binaryBody
		}
		return clampString(v)
	default:
		return v
	}
}

// limitJSONSize replaces large payloads with their top-level keys.
func limitJSONSize(value interface{}) interface{} {
	buf, err := json.Marshal(value)
	if err != nil || len(buf) <= maxLoggedBody {
		return value
	}
	summary := map[string]interface{}{"_truncated": true, "_bytes": len(buf)}
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		summary["_keys"] = keys
	case []interface{}:
		summary["_items"] = len(v)
	}
	return summary
}

func sanitizeMultipart(body []byte, contentType string) interface{} {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		return binaryBody
	}

	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	fields := make(map[string]interface{})
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return binaryBody
		}
		name := part.FormName()
		switch {
		case name == "":
		case part.FileName() != "":
			fields[name] = map[string]interface{}{"file": part.FileName(), "type": part.Header.Get(echo.HeaderContentType)}
		case isSensitiveKey(name):
			fields[name] = redacted
		default:
			data, err := io.ReadAll(io.LimitReader(part, maxLoggedBody+1))
			if err != nil || containsBinaryBytes(data) {
				fields[name] = binaryBody
			} else {
				fields[name] = clampString(string(data))
			}
		}
		_ = part.Close()
	}
	if len(fields) == 0 {
		return binaryBody
	}
	return fields
}

func containsBinaryBytes(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return true
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
		data = data[size:]
	}
	return false
}

func clampString(value string) string {
	if len(value) <= maxLoggedBody {
		return value
	}
	truncated := value[:maxLoggedBody]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "...(truncated)"
}
