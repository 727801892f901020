package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/samber/lo"
)

const (
	contentTypeJSON = "application/json"
	contentTypeRSS  = "application/rss+xml; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"

	headerDegraded = "X-Listing-Degraded"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
	"Access-Control-Allow-Methods": "OPTIONS,GET,POST",
}

type messageBody struct {
	Message string `json:"message"`
}

func degradedHeader(degraded bool) map[string]string {
	if !degraded {
		return nil
	}
	return map[string]string{headerDegraded: "true"}
}

func respond(status int, contentType, body string, extra map[string]string) events.APIGatewayProxyResponse {
	headers := lo.Assign(corsHeaders, extra)
	if contentType != "" {
		headers["Content-Type"] = contentType
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}
}

func respondJSON(status int, v any, extra map[string]string) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return respond(http.StatusInternalServerError, contentTypeJSON, `{"message":"Internal Server Error"}`, nil)
	}
	return respond(status, contentTypeJSON, string(body), extra)
}

func message(status int, format string, args ...any) events.APIGatewayProxyResponse {
	return respondJSON(status, messageBody{Message: fmt.Sprintf(format, args...)}, nil)
}

// MethodNotAllowed is the envelope returned for any method outside the API.
func MethodNotAllowed() events.APIGatewayProxyResponse {
	return message(http.StatusMethodNotAllowed, "Method Not Allowed")
}
