package handler

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
)

// LambdaFunc is the signature lambda.Start expects for API Gateway proxy events.
type LambdaFunc func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// LambdaHandler adapts the Router to API Gateway proxy events. Errors are
// always reported through the response so the gateway never sees a failed invocation.
func LambdaHandler(r *Router) LambdaFunc {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		body := req.Body
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(body)
			if err != nil {
				return toProxyResponse(r.failure(ctx, "decode", fmt.Errorf("decode base64 body: %w", err))), nil
			}
			body = string(decoded)
		}

		resp := r.Handle(ctx, Request{
			Method:         req.HTTPMethod,
			Path:           req.Path,
			PathParameters: req.PathParameters,
			Body:           body,
		})
		return toProxyResponse(resp), nil
	}
}

func toProxyResponse(resp Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}
}
