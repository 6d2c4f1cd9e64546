package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"specprobe/internal/errors"
)

// LambdaInvoker is the slice of the Lambda API the probe client needs.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// lambdaDispatcher holds the lazily constructed Lambda client. AWS
// configuration is only loaded when a lambda:// URL is actually probed, so
// audits of plain HTTP deployments never touch the credential chain.
type lambdaDispatcher struct {
	once    sync.Once
	invoker LambdaInvoker
	initErr error
}

func (d *lambdaDispatcher) client(ctx context.Context) (LambdaInvoker, error) {
	d.once.Do(func() {
		if d.invoker != nil {
			return
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			d.initErr = err
			return
		}
		d.invoker = lambda.NewFromConfig(cfg)
	})
	if d.initErr != nil {
		return nil, d.initErr
	}
	return d.invoker, nil
}

// sendLambda dispatches a probe to an AWS Lambda function as an API Gateway
// v2 HTTP event. The function name is the URL host.
func (c *Client) sendLambda(ctx context.Context, req *http.Request, payload []byte) (*Response, error) {
	functionName := req.URL.Host
	if functionName == "" {
		return nil, errors.New(errors.ErrorTypeRequest, "lambda URL missing function name").
			WithContext("url", req.URL.String())
	}

	invoker, err := c.lambda.client(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "Connection error").
			WithContext("url", req.URL.String())
	}

	event := probeToLambdaEvent(req, payload)
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeRequest, "Unable to encode Lambda event")
	}

	c.logger.Debug().Str("function", functionName).Str("path", req.URL.Path).Msg("invoking lambda probe")

	output, err := invoker.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        eventJSON,
	})
	if err != nil {
		perr := categorize(err)
		perr.WithContext("url", req.URL.String())
		return nil, perr
	}
	if output.FunctionError != nil {
		return nil, errors.Newf(errors.ErrorTypeRequest, "Lambda function error: %s", *output.FunctionError).
			WithContext("url", req.URL.String())
	}

	return lambdaResponseToProbe(output.Payload)
}

// probeToLambdaEvent converts a probe request into an API Gateway v2 HTTP
// proxy event.
func probeToLambdaEvent(req *http.Request, payload []byte) *events.APIGatewayV2HTTPRequest {
	headers := make(map[string]string)
	for key, values := range req.Header {
		headers[key] = strings.Join(values, ",")
	}

	queryParams := make(map[string]string)
	for key, values := range req.URL.Query() {
		queryParams[key] = strings.Join(values, ",")
	}

	now := time.Now()
	return &events.APIGatewayV2HTTPRequest{
		Version:               "2.0",
		RouteKey:              fmt.Sprintf("%s %s", req.Method, req.URL.Path),
		RawPath:               req.URL.Path,
		RawQueryString:        req.URL.RawQuery,
		Headers:               headers,
		QueryStringParameters: queryParams,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			APIID:      "specprobe-adapter",
			DomainName: "lambda.local",
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:    req.Method,
				Path:      req.URL.Path,
				Protocol:  "HTTP/1.1",
				SourceIP:  "127.0.0.1",
				UserAgent: userAgent,
			},
			RequestID: fmt.Sprintf("specprobe-%d", now.UnixNano()),
			RouteKey:  fmt.Sprintf("%s %s", req.Method, req.URL.Path),
			Stage:     "$default",
			Time:      now.Format("02/Jan/2006:15:04:05 -0700"),
			TimeEpoch: now.UnixMilli(),
		},
		Body:            string(payload),
		IsBase64Encoded: false,
	}
}

// lambdaResponseToProbe converts an API Gateway v2 HTTP response payload into
// a probe response.
func lambdaResponseToProbe(payload []byte) (*Response, error) {
	var lambdaResp events.APIGatewayV2HTTPResponse
	if err := json.Unmarshal(payload, &lambdaResp); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeRequest, "Unable to decode Lambda response")
	}

	header := make(http.Header)
	for key, value := range lambdaResp.Headers {
		header.Set(key, value)
	}

	body := []byte(lambdaResp.Body)
	if lambdaResp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(lambdaResp.Body)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeRequest, "Unable to decode Lambda response body")
		}
		body = decoded
	}

	return &Response{
		StatusCode: lambdaResp.StatusCode,
		Header:     header,
		Body:       body,
	}, nil
}
