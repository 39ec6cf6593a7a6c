// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdhttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pirayeshfar/location-finder/internal/http"
	"github.com/pirayeshfar/location-finder/internal/inference"
)

const (
	name = "gemini"

	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-2.5-flash"
	DefaultTimeout  = time.Minute * 2

	apiKeyHeader = "x-goog-api-key"
)

var ErrMissingHTTPClient = errors.New("http client is required")

// Gemini is a client for the generateContent method of the Gemini API.
type Gemini struct {
	name     string
	http     *http.Client
	apiKey   string
	model    string
	endpoint string
	timeout  time.Duration
}

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type tool struct {
	GoogleMaps   *struct{} `json:"googleMaps,omitempty"`
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type toolConfig struct {
	RetrievalConfig struct {
		LatLng latLng `json:"latLng"`
	} `json:"retrievalConfig"`
}

type generateRequest struct {
	Contents   []content   `json:"contents"`
	Tools      []tool      `json:"tools,omitempty"`
	ToolConfig *toolConfig `json:"toolConfig,omitempty"`
}

type APIResult struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// New returns a Gemini client. Empty model, endpoint and timeout values select the defaults.
func New(client *http.Client, apiKey, model, endpoint string, timeout time.Duration) (*Gemini, error) {
	if client == nil {
		return nil, ErrMissingHTTPClient
	}
	if apiKey == "" {
		return nil, inference.ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gemini{
		name:     name,
		http:     client,
		apiKey:   apiKey,
		model:    model,
		endpoint: strings.TrimRight(endpoint, "/"),
		timeout:  timeout,
	}, nil
}

func (g *Gemini) Name() string {
	return g.name
}

// Generate sends the prompt to the model and returns the concatenated text parts of the first
// candidate.
func (g *Gemini) Generate(ctx context.Context, req inference.Request) (inference.Response, error) {
	body := bytes.NewBuffer(nil)
	if err := json.NewEncoder(body).Encode(buildRequest(req)); err != nil {
		return inference.Response{}, fmt.Errorf("failed to encode request to JSON: %w", err)
	}

	result := new(APIResult)
	headers := map[string]string{
		"Content-Type": "application/json",
		apiKeyHeader:   g.apiKey,
	}
	code, err := g.http.PostWithTimeout(ctx, g.generateURL(), result, body, headers, g.timeout)
	if err != nil {
		return inference.Response{}, fmt.Errorf("failed to call generateContent: %w", err)
	}
	if result.Error != nil {
		return inference.Response{}, fmt.Errorf("generateContent returned error %d (%s): %s",
			result.Error.Code, result.Error.Status, result.Error.Message)
	}
	if code != stdhttp.StatusOK {
		return inference.Response{}, fmt.Errorf("generateContent returned unexpected status code: %d", code)
	}
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return inference.Response{}, fmt.Errorf("prompt was blocked: %s", result.PromptFeedback.BlockReason)
	}

	text := result.text()
	if strings.TrimSpace(text) == "" {
		return inference.Response{}, inference.ErrEmptyResponse
	}
	return inference.Response{Text: text}, nil
}

func (g *Gemini) generateURL() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.endpoint, url.PathEscape(g.model))
}

func buildRequest(req inference.Request) generateRequest {
	genReq := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
	}
	if req.Tools.GeoGrounding {
		genReq.Tools = append(genReq.Tools, tool{GoogleMaps: &struct{}{}})
	}
	if req.Tools.WebSearch {
		genReq.Tools = append(genReq.Tools, tool{GoogleSearch: &struct{}{}})
	}
	if req.LocationBias != nil {
		genReq.ToolConfig = &toolConfig{}
		genReq.ToolConfig.RetrievalConfig.LatLng = latLng{
			Latitude:  req.LocationBias.Latitude,
			Longitude: req.LocationBias.Longitude,
		}
	}
	return genReq
}

func (r *APIResult) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var builder strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		builder.WriteString(p.Text)
	}
	return builder.String()
}
