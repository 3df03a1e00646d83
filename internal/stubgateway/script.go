package stubgateway

import (
	"encoding/json"
	"net/http"
)

type responseMessage struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

func authBody(code, message string) string {
	body, _ := json.Marshal(map[string]any{
		"status": "ERROR",
		"code":   code,
		"responseMessages": []responseMessage{
			{Code: code, Level: "ERROR", Message: message},
		},
	})
	return string(body)
}

func jsonScript(status int, body string) Script {
	return Script{Status: status, ContentType: "application/json", Body: body}
}

func scriptHandler(s Script) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if s.ContentType != "" {
			w.Header().Set("Content-Type", s.ContentType)
		}
		w.WriteHeader(s.Status)
		_, _ = w.Write([]byte(s.Body))
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	scriptHandler(jsonScript(status, body))(w, nil)
}
