// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package dataviews contains the tools that wrap the DX API's data view
// endpoints.
package dataviews

import (
	"context"

	"github.com/mcpany/dx-gateway/pkg/client"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
	"github.com/mcpany/dx-gateway/pkg/tool"
)

// Category is the registry tag for data view tools.
const Category = "dataviews"

// GetDataView retrieves a single-object data view.
type GetDataView struct {
	tool.Base
}

// NewGetDataView creates the get_data_view tool.
func NewGetDataView(b tool.Base) *GetDataView {
	return &GetDataView{Base: b}
}

// Definition returns the tool descriptor.
func (t *GetDataView) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "get_data_view",
		Category:    Category,
		Description: "Retrieve a single-object data view, optionally passing data view parameters.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"dataViewID":         tool.String("ID of the data view (e.g. D_OperatorDetails)."),
			"dataViewParameters": tool.Object("Parameters the data view expects, as a flat object.", nil),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "dataViewID"),
	}
}

// Execute validates the arguments and issues the upstream read.
func (t *GetDataView) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "dataViewID"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Get Data View", args)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Get Data View", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.GetDataView(ctx, cfg,
			tool.StringArg(args, "dataViewID"), tool.MapArg(args, "dataViewParameters"))
	}, nil)
}

// GetListDataView queries a list data view with select, filter, sort, and
// paging instructions.
type GetListDataView struct {
	tool.Base
}

// NewGetListDataView creates the get_list_data_view tool.
func NewGetListDataView(b tool.Base) *GetListDataView {
	return &GetListDataView{Base: b}
}

func (t *GetListDataView) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "get_list_data_view",
		Category:    Category,
		Description: "Query a list data view with optional select, filter, sort, and paging instructions.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"dataViewID":         tool.String("ID of the list data view (e.g. D_EmployeeList)."),
			"select":             tool.Array("Fields to return, each as {\"field\": name}.", &tool.Schema{Type: "object"}),
			"filter":             tool.Object("Filter expression in the DX query format.", nil),
			"sortBy":             tool.Array("Sort instructions, each as {\"field\": name, \"type\": \"ASC\"|\"DESC\"}.", &tool.Schema{Type: "object"}),
			"pageNumber":         tool.Integer("1-based page number; requires pageSize."),
			"pageSize":           tool.Integer("Maximum rows per page."),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "dataViewID"),
	}
}

func (t *GetListDataView) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "dataViewID"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Get List Data View", args)
	if errRes != nil {
		return errRes
	}

	q := &client.ListDataViewQuery{
		Select:     objectSlice(tool.SliceArg(args, "select")),
		Filter:     tool.MapArg(args, "filter"),
		SortBy:     objectSlice(tool.SliceArg(args, "sortBy")),
		PageNumber: tool.IntArg(args, "pageNumber", 0),
		PageSize:   tool.IntArg(args, "pageSize", 0),
	}
	return tool.WithErrorHandling("Get List Data View", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.GetListDataView(ctx, cfg, tool.StringArg(args, "dataViewID"), q)
	}, nil)
}

// objectSlice keeps only the object entries of a JSON array argument.
func objectSlice(in []any) []map[string]any {
	var out []map[string]any
	for _, v := range in {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
