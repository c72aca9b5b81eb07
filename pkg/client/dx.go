// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mcpany/dx-gateway/pkg/config"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
)

// Result is the decoded outcome of a facade call. ETag carries the
// optimistic-concurrency token from the response header when the endpoint
// returns one; it is opaque to everything above the facade.
type Result struct {
	Data map[string]any
	ETag string
}

// DXClient exposes one method per upstream endpoint family used by the tool
// shells. Each method constructs the URL, headers, and body for its endpoint
// and decodes the reply; it has no knowledge of argument-level validation or
// Markdown formatting.
type DXClient struct {
	exec *Executor
}

// NewDXClient wraps an executor in the endpoint facade.
func NewDXClient(exec *Executor) *DXClient {
	return &DXClient{exec: exec}
}

// CaseContent carries the optional write-body fields shared by create and
// action endpoints.
type CaseContent struct {
	Content          map[string]any `json:"content,omitempty"`
	PageInstructions []any          `json:"pageInstructions,omitempty"`
	Attachments      []any          `json:"attachments,omitempty"`
}

// writeBody serializes a CaseContent plus any extra top-level fields.
func writeBody(cc *CaseContent, extra map[string]any) ([]byte, *dxerror.Error) {
	body := map[string]any{}
	if cc != nil {
		if cc.Content != nil {
			body["content"] = cc.Content
		}
		if cc.PageInstructions != nil {
			body["pageInstructions"] = cc.PageInstructions
		}
		if cc.Attachments != nil {
			body["attachments"] = cc.Attachments
		}
	}
	for k, v := range extra {
		body[k] = v
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, dxerror.New(dxerror.KindBadRequest, "failed to serialize request body: %v", err)
	}
	return raw, nil
}

// GetCase retrieves a case by ID. viewType and pageName are optional.
func (c *DXClient) GetCase(ctx context.Context, cfg *config.Effective, caseID, viewType, pageName string) (*Result, *dxerror.Error) {
	query := url.Values{}
	if viewType != "" {
		query.Set("viewType", viewType)
	}
	if pageName != "" {
		query.Set("pageName", pageName)
	}
	return c.call(ctx, cfg, &Request{
		Method: http.MethodGet,
		Path:   "/cases/" + EscapeSegment(caseID),
		Query:  query,
	})
}

// CreateCase creates a new case of the given type.
func (c *DXClient) CreateCase(ctx context.Context, cfg *config.Effective, caseTypeID string, cc *CaseContent, viewType string) (*Result, *dxerror.Error) {
	body, derr := writeBody(cc, map[string]any{"caseTypeID": caseTypeID})
	if derr != nil {
		return nil, derr
	}
	query := url.Values{}
	if viewType != "" {
		query.Set("viewType", viewType)
	}
	return c.call(ctx, cfg, &Request{
		Method:      http.MethodPost,
		Path:        "/cases",
		Query:       query,
		Body:        body,
		ContentType: "application/json",
	})
}

// DeleteCase deletes a case that is still in the create stage.
func (c *DXClient) DeleteCase(ctx context.Context, cfg *config.Effective, caseID string) (*Result, *dxerror.Error) {
	return c.call(ctx, cfg, &Request{
		Method: http.MethodDelete,
		Path:   "/cases/" + EscapeSegment(caseID),
	})
}

// GetCaseAction retrieves a case-wide action's view; the response carries the
// eTag required to perform the action.
func (c *DXClient) GetCaseAction(ctx context.Context, cfg *config.Effective, caseID, actionID, viewType string) (*Result, *dxerror.Error) {
	query := url.Values{}
	if viewType == "" {
		viewType = "form"
	}
	query.Set("viewType", viewType)
	return c.call(ctx, cfg, &Request{
		Method: http.MethodGet,
		Path:   "/cases/" + EscapeSegment(caseID) + "/actions/" + EscapeSegment(actionID),
		Query:  query,
	})
}

// PerformCaseAction submits a case-wide action under optimistic concurrency.
// eTag must be a non-empty trimmed string; auto-fetch happens above the
// facade.
func (c *DXClient) PerformCaseAction(ctx context.Context, cfg *config.Effective, caseID, actionID, eTag string, cc *CaseContent) (*Result, *dxerror.Error) {
	body, derr := writeBody(cc, nil)
	if derr != nil {
		return nil, derr
	}
	header := http.Header{}
	header.Set("If-Match", eTag)
	return c.call(ctx, cfg, &Request{
		Method:      http.MethodPatch,
		Path:        "/cases/" + EscapeSegment(caseID) + "/actions/" + EscapeSegment(actionID),
		Header:      header,
		Body:        body,
		ContentType: "application/json",
	})
}

// GetCaseStages lists the stage progression of a case.
func (c *DXClient) GetCaseStages(ctx context.Context, cfg *config.Effective, caseID string) (*Result, *dxerror.Error) {
	return c.call(ctx, cfg, &Request{
		Method: http.MethodGet,
		Path:   "/cases/" + EscapeSegment(caseID) + "/stages",
	})
}

// GetAssignment retrieves an assignment's details.
func (c *DXClient) GetAssignment(ctx context.Context, cfg *config.Effective, assignmentID, viewType string) (*Result, *dxerror.Error) {
	query := url.Values{}
	if viewType != "" {
		query.Set("viewType", viewType)
	}
	return c.call(ctx, cfg, &Request{
		Method: http.MethodGet,
		Path:   "/assignments/" + EscapeSegment(assignmentID),
		Query:  query,
	})
}

// GetAssignmentAction retrieves an assignment action's view and the eTag
// required to perform it.
func (c *DXClient) GetAssignmentAction(ctx context.Context, cfg *config.Effective, assignmentID, actionID, viewType string) (*Result, *dxerror.Error) {
	query := url.Values{}
	if viewType == "" {
		viewType = "form"
	}
	query.Set("viewType", viewType)
	return c.call(ctx, cfg, &Request{
		Method: http.MethodGet,
		Path:   "/assignments/" + EscapeSegment(assignmentID) + "/actions/" + EscapeSegment(actionID),
		Query:  query,
	})
}

// PerformAssignmentAction submits an assignment action under optimistic
// concurrency.
func (c *DXClient) PerformAssignmentAction(ctx context.Context, cfg *config.Effective, assignmentID, actionID, eTag string, cc *CaseContent) (*Result, *dxerror.Error) {
	body, derr := writeBody(cc, nil)
	if derr != nil {
		return nil, derr
	}
	header := http.Header{}
	header.Set("If-Match", eTag)
	return c.call(ctx, cfg, &Request{
		Method:      http.MethodPatch,
		Path:        "/assignments/" + EscapeSegment(assignmentID) + "/actions/" + EscapeSegment(actionID),
		Header:      header,
		Body:        body,
		ContentType: "application/json",
	})
}

// GetNextAssignment fetches the next work item for the authenticated
// operator.
func (c *DXClient) GetNextAssignment(ctx context.Context, cfg *config.Effective, viewType string) (*Result, *dxerror.Error) {
	query := url.Values{}
	if viewType != "" {
		query.Set("viewType", viewType)
	}
	return c.call(ctx, cfg, &Request{
		Method: http.MethodGet,
		Path:   "/assignments/next",
		Query:  query,
	})
}

// GetCaseTypes lists the case types available to the application.
func (c *DXClient) GetCaseTypes(ctx context.Context, cfg *config.Effective) (*Result, *dxerror.Error) {
	return c.call(ctx, cfg, &Request{
		Method: http.MethodGet,
		Path:   "/casetypes",
	})
}

// GetCaseTypeAction retrieves the metadata of a case type's action.
func (c *DXClient) GetCaseTypeAction(ctx context.Context, cfg *config.Effective, caseTypeID, actionID string) (*Result, *dxerror.Error) {
	return c.call(ctx, cfg, &Request{
		Method: http.MethodGet,
		Path:   "/casetypes/" + EscapeSegment(caseTypeID) + "/actions/" + EscapeSegment(actionID),
	})
}

// ListDataViewQuery carries the body of a list-data-view request.
type ListDataViewQuery struct {
	Select     []map[string]any `json:"select,omitempty"`
	Filter     map[string]any   `json:"filter,omitempty"`
	SortBy     []map[string]any `json:"sortBy,omitempty"`
	PageNumber int              `json:"-"`
	PageSize   int              `json:"-"`
}

// GetDataView retrieves a single-object data view with optional parameters.
func (c *DXClient) GetDataView(ctx context.Context, cfg *config.Effective, dataViewID string, parameters map[string]any) (*Result, *dxerror.Error) {
	query := url.Values{}
	if len(parameters) > 0 {
		raw, err := json.Marshal(parameters)
		if err != nil {
			return nil, dxerror.New(dxerror.KindBadRequest, "failed to serialize dataViewParameters: %v", err)
		}
		query.Set("dataViewParameters", string(raw))
	}
	return c.call(ctx, cfg, &Request{
		Method: http.MethodGet,
		Path:   "/data_views/" + EscapeSegment(dataViewID),
		Query:  query,
	})
}

// GetListDataView queries a list data view with select/filter/paging
// instructions.
func (c *DXClient) GetListDataView(ctx context.Context, cfg *config.Effective, dataViewID string, q *ListDataViewQuery) (*Result, *dxerror.Error) {
	body := map[string]any{}
	if q != nil {
		queryPart := map[string]any{}
		if len(q.Select) > 0 {
			queryPart["select"] = q.Select
		}
		if q.Filter != nil {
			queryPart["filter"] = q.Filter
		}
		if len(q.SortBy) > 0 {
			queryPart["sortBy"] = q.SortBy
		}
		if len(queryPart) > 0 {
			body["query"] = queryPart
		}
		if q.PageSize > 0 {
			paging := map[string]any{"pageSize": strconv.Itoa(q.PageSize)}
			if q.PageNumber > 0 {
				paging["pageNumber"] = strconv.Itoa(q.PageNumber)
			}
			body["paging"] = paging
		}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, dxerror.New(dxerror.KindBadRequest, "failed to serialize data view query: %v", err)
	}
	return c.call(ctx, cfg, &Request{
		Method:      http.MethodPost,
		Path:        "/data_views/" + EscapeSegment(dataViewID),
		Body:        raw,
		ContentType: "application/json",
	})
}

// GetCaseAttachments lists the attachments of a case.
func (c *DXClient) GetCaseAttachments(ctx context.Context, cfg *config.Effective, caseID string) (*Result, *dxerror.Error) {
	return c.call(ctx, cfg, &Request{
		Method: http.MethodGet,
		Path:   "/cases/" + EscapeSegment(caseID) + "/attachments",
	})
}

// AddCaseAttachments links previously uploaded files (by temporary
// attachment ID) or URLs to a case.
func (c *DXClient) AddCaseAttachments(ctx context.Context, cfg *config.Effective, caseID string, attachments []any) (*Result, *dxerror.Error) {
	raw, err := json.Marshal(map[string]any{"attachments": attachments})
	if err != nil {
		return nil, dxerror.New(dxerror.KindBadRequest, "failed to serialize attachments: %v", err)
	}
	return c.call(ctx, cfg, &Request{
		Method:      http.MethodPost,
		Path:        "/cases/" + EscapeSegment(caseID) + "/attachments",
		Body:        raw,
		ContentType: "application/json",
	})
}

// GetAttachmentContent downloads an attachment's content. The upstream
// returns base64 content for files and a URL for links.
func (c *DXClient) GetAttachmentContent(ctx context.Context, cfg *config.Effective, attachmentID string) (*Result, *dxerror.Error) {
	return c.call(ctx, cfg, &Request{
		Method: http.MethodGet,
		Path:   "/attachments/" + EscapeSegment(attachmentID),
	})
}

// Ping probes connectivity and authentication by listing case types.
func (c *DXClient) Ping(ctx context.Context, cfg *config.Effective) (*Result, *dxerror.Error) {
	return c.GetCaseTypes(ctx, cfg)
}

// call issues the request through the executor and decodes the response.
func (c *DXClient) call(ctx context.Context, cfg *config.Effective, req *Request) (*Result, *dxerror.Error) {
	resp, derr := c.exec.Do(ctx, cfg, req)
	if derr != nil {
		return nil, derr
	}
	return decodeResponse(resp)
}
