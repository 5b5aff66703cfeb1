// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package target

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultAPIURL is the production Iterable API host
	DefaultAPIURL = "https://api.iterable.com"

	// DefaultRequestTimeoutSec bounds each outbound call; a timeout is
	// treated like a 5xx for retry purposes
	DefaultRequestTimeoutSec = 60

	paramAPIKey = "api_key"
	userAgent   = "firehose-iterable"
)

// apiResponseSuccessCode is the code Iterable sets on accepted requests
const apiResponseSuccessCode = "Success"

// APIResponse is the standard Iterable response body
type APIResponse struct {
	Msg    string                 `json:"msg"`
	Code   string                 `json:"code"`
	Params map[string]interface{} `json:"params"`
}

// Success reports whether the API-level success flag is set
func (a *APIResponse) Success() bool {
	return a.Code == apiResponseSuccessCode
}

// ListAPIResponse is the response body of list subscribe/unsubscribe
// calls; a non-zero fail count alongside HTTP success is informational
type ListAPIResponse struct {
	SuccessCount int `json:"successCount"`
	FailCount    int `json:"failCount"`
}

// Response carries the raw outcome of one dispatched request for the
// classifier
type Response struct {
	StatusCode int
	Body       []byte
}

// API parses the response body as a standard Iterable response. Error
// bodies that fail to parse yield an empty response rather than an
// error since the HTTP status is what matters for classification.
func (r *Response) API() *APIResponse {
	var parsed APIResponse
	if err := json.Unmarshal(r.Body, &parsed); err != nil {
		return &APIResponse{}
	}
	return &parsed
}

// List parses the response body as a list subscribe/unsubscribe
// response
func (r *Response) List() *ListAPIResponse {
	var parsed ListAPIResponse
	if err := json.Unmarshal(r.Body, &parsed); err != nil {
		return &ListAPIResponse{}
	}
	return &parsed
}

// IterableTarget holds a client for dispatching requests to the
// Iterable REST API. The underlying HTTP client is stateless between
// requests and safe to reuse across invocations.
type IterableTarget struct {
	client *http.Client
	apiURL string
	apiKey string
	log    *log.Entry
}

func checkURL(str string) error {
	u, err := url.Parse(str)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.New(fmt.Sprintf("Invalid url for Iterable target: '%s'", str))
	}
	return nil
}

// NewIterableTarget creates a client for dispatching requests to the
// Iterable API with the given key
func NewIterableTarget(apiKey string, apiURL string, requestTimeoutSec int) (*IterableTarget, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required for Iterable target")
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if err := checkURL(apiURL); err != nil {
		return nil, err
	}
	if requestTimeoutSec <= 0 {
		requestTimeoutSec = DefaultRequestTimeoutSec
	}
	return &IterableTarget{
		client: &http.Client{
			Timeout: time.Duration(requestTimeoutSec) * time.Second,
		},
		apiURL: apiURL,
		apiKey: apiKey,
		log:    log.WithFields(log.Fields{"target": "iterable", "url": apiURL}),
	}, nil
}

// Send dispatches one request and returns the raw response for
// classification. A non-nil error is a transport-level failure; HTTP
// and API-level failures are surfaced through the Response.
func (it *IterableTarget) Send(req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrapf(err, "Error marshalling request for '%s'", req.Path())
	}

	requestURL := fmt.Sprintf("%s/%s?%s=%s", it.apiURL, req.Path(), paramAPIKey, url.QueryEscape(it.apiKey))
	request, err := http.NewRequest("POST", requestURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, errors.Wrapf(err, "Error creating request for '%s'", req.Path())
	}
	request.Header.Add("Content-Type", "application/json")
	request.Header.Add("User-Agent", userAgent)

	it.log.Debugf("Sending request to %s ...", req.Path())
	resp, err := it.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Any error reading the body is ignored, the status code is what
	// drives classification.
	respBody, _ := ioutil.ReadAll(resp.Body)

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}

// Open does nothing for this target
func (it *IterableTarget) Open() {}

// Close does nothing for this target
func (it *IterableTarget) Close() {}

// GetID returns an identifier for this target
func (it *IterableTarget) GetID() string {
	return it.apiURL
}
