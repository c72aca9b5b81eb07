// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"encoding/json"
	"net/http"

	"github.com/mcpany/dx-gateway/pkg/dxerror"
)

// upstreamErrorBody is the DX API's JSON error convention.
type upstreamErrorBody struct {
	ErrorClassification string           `json:"errorClassification"`
	LocalizedValue      string           `json:"localizedValue"`
	ErrorDetails        []dxerror.Detail `json:"errorDetails"`
}

// decodeResponse turns a raw upstream reply into a Result or a tagged error.
// Success bodies are decoded as JSON objects; a success with a non-object or
// empty body yields an empty data map (e.g. 204 from delete).
func decodeResponse(resp *Response) (*Result, *dxerror.Error) {
	if resp.Status >= http.StatusBadRequest {
		return nil, decodeError(resp)
	}

	result := &Result{ETag: resp.Header.Get("eTag")}
	if result.ETag == "" {
		result.ETag = resp.Header.Get("Etag")
	}
	if len(resp.Body) == 0 {
		result.Data = map[string]any{}
		return result, nil
	}
	if err := json.Unmarshal(resp.Body, &result.Data); err != nil {
		// Some endpoints return bare arrays or plain text; keep the raw
		// payload addressable for the formatter.
		result.Data = map[string]any{"raw": string(resp.Body)}
	}
	return result, nil
}

// decodeError maps an upstream failure response to the error taxonomy,
// preserving the upstream message and errorDetails[] when present.
func decodeError(resp *Response) *dxerror.Error {
	var body upstreamErrorBody
	message := ""
	if len(resp.Body) > 0 && json.Unmarshal(resp.Body, &body) == nil {
		if body.LocalizedValue != "" {
			message = body.LocalizedValue
		} else if body.ErrorClassification != "" {
			message = body.ErrorClassification
		} else if len(body.ErrorDetails) > 0 {
			message = body.ErrorDetails[0].Message
		}
	}
	return dxerror.FromHTTP(resp.Status, message, body.ErrorDetails)
}
