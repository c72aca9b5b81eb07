// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package casetypes contains the tools that wrap the DX API's case type
// metadata endpoints.
package casetypes

import (
	"context"

	"github.com/mcpany/dx-gateway/pkg/client"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
	"github.com/mcpany/dx-gateway/pkg/tool"
)

// Category is the registry tag for case type tools.
const Category = "casetypes"

// GetCaseTypes lists the case types the application exposes.
type GetCaseTypes struct {
	tool.Base
}

// NewGetCaseTypes creates the get_case_types tool.
func NewGetCaseTypes(b tool.Base) *GetCaseTypes {
	return &GetCaseTypes{Base: b}
}

// Definition returns the tool descriptor.
func (t *GetCaseTypes) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "get_case_types",
		Category:    Category,
		Description: "List the case types available to the configured application.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}),
	}
}

// Execute issues the upstream read.
func (t *GetCaseTypes) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	cfg, fctx, errRes := t.Resolve("Get Case Types", req.Arguments)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Get Case Types", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.GetCaseTypes(ctx, cfg)
	}, nil)
}

// GetCaseTypeAction retrieves the metadata of a case type's action, useful
// for discovering the fields an action expects before any case exists.
type GetCaseTypeAction struct {
	tool.Base
}

// NewGetCaseTypeAction creates the get_case_type_action tool.
func NewGetCaseTypeAction(b tool.Base) *GetCaseTypeAction {
	return &GetCaseTypeAction{Base: b}
}

func (t *GetCaseTypeAction) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "get_case_type_action",
		Category:    Category,
		Description: "Retrieve the metadata of a case type's action, including the fields it expects.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"caseTypeID":         tool.String("ID of the case type (e.g. OSIEO3-DocsApp-Work-Expense)."),
			"actionID":           tool.String("ID of the action whose metadata to retrieve."),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "caseTypeID", "actionID"),
	}
}

func (t *GetCaseTypeAction) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "caseTypeID", "actionID"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Get Case Type Action", args)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Get Case Type Action", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.GetCaseTypeAction(ctx, cfg,
			tool.StringArg(args, "caseTypeID"), tool.StringArg(args, "actionID"))
	}, nil)
}
