// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package cases contains the tools that wrap the DX API's case endpoints.
package cases

import (
	"context"

	"github.com/mcpany/dx-gateway/pkg/client"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
	"github.com/mcpany/dx-gateway/pkg/tool"
)

// Category is the registry tag for case tools.
const Category = "cases"

// GetCase retrieves a case by its full handle.
type GetCase struct {
	tool.Base
}

// NewGetCase creates the get_case tool.
func NewGetCase(b tool.Base) *GetCase {
	return &GetCase{Base: b}
}

// Definition returns the tool descriptor.
func (t *GetCase) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "get_case",
		Category:    Category,
		Description: "Retrieve a case's details by its full case handle.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"caseID":             tool.String("Full case handle (e.g. OSIEO3-DOCSAPP-WORK E-55001)."),
			"viewType":           tool.StringEnum("Level of UI metadata to include.", "none", "page"),
			"pageName":           tool.String("Name of a specific page to return; requires viewType=page."),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "caseID"),
	}
}

// Execute validates the arguments and issues the upstream read.
func (t *GetCase) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "caseID"); res != nil {
		return res
	}
	if res := tool.CheckEnum(args, "viewType", "none", "page"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Get Case", args)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Get Case", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.GetCase(ctx, cfg,
			tool.StringArg(args, "caseID"), tool.StringArg(args, "viewType"), tool.StringArg(args, "pageName"))
	}, nil)
}

// CreateCase starts a new case of the given type.
type CreateCase struct {
	tool.Base
}

// NewCreateCase creates the create_case tool.
func NewCreateCase(b tool.Base) *CreateCase {
	return &CreateCase{Base: b}
}

func (t *CreateCase) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "create_case",
		Category:    Category,
		Description: "Create a new case of the given case type, optionally seeding field values.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"caseTypeID":         tool.String("ID of the case type to instantiate (e.g. OSIEO3-DocsApp-Work-Expense)."),
			"content":            tool.Object("Initial case field values.", nil),
			"pageInstructions":   tool.Array("Page-level operations for embedded pages.", &tool.Schema{Type: "object"}),
			"attachments":        tool.Array("Attachments to link at creation time.", &tool.Schema{Type: "object"}),
			"viewType":           tool.StringEnum("Level of UI metadata to include in the response.", "none", "form", "page"),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "caseTypeID"),
	}
}

func (t *CreateCase) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "caseTypeID"); res != nil {
		return res
	}
	if res := tool.CheckEnum(args, "viewType", "none", "form", "page"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Create Case", args)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Create Case", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.CreateCase(ctx, cfg,
			tool.StringArg(args, "caseTypeID"), tool.CaseContentArgs(args), tool.StringArg(args, "viewType"))
	}, nil)
}

// DeleteCase removes a case that is still in the create stage.
type DeleteCase struct {
	tool.Base
}

// NewDeleteCase creates the delete_case tool.
func NewDeleteCase(b tool.Base) *DeleteCase {
	return &DeleteCase{Base: b}
}

func (t *DeleteCase) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "delete_case",
		Category:    Category,
		Description: "Delete a case that is still in the create stage.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"caseID":             tool.String("Full case handle of the case to delete."),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "caseID"),
	}
}

func (t *DeleteCase) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "caseID"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Delete Case", args)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Delete Case", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.DeleteCase(ctx, cfg, tool.StringArg(args, "caseID"))
	}, nil)
}

// GetCaseAction retrieves a case-wide action's view; the returned eTag is
// the one a subsequent perform needs.
type GetCaseAction struct {
	tool.Base
}

// NewGetCaseAction creates the get_case_action tool.
func NewGetCaseAction(b tool.Base) *GetCaseAction {
	return &GetCaseAction{Base: b}
}

func (t *GetCaseAction) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "get_case_action",
		Category:    Category,
		Description: "Retrieve the view of a case-wide action and the eTag required to perform it.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"caseID":             tool.String("Full case handle."),
			"actionID":           tool.String("ID of the case-wide action (e.g. pyUpdateCaseDetails)."),
			"viewType":           tool.StringEnum("Level of UI metadata to include.", "form", "page"),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "caseID", "actionID"),
	}
}

func (t *GetCaseAction) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "caseID", "actionID"); res != nil {
		return res
	}
	if res := tool.CheckEnum(args, "viewType", "form", "page"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Get Case Action", args)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Get Case Action", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.GetCaseAction(ctx, cfg,
			tool.StringArg(args, "caseID"), tool.StringArg(args, "actionID"), tool.StringArg(args, "viewType"))
	}, nil)
}

// PerformCaseAction submits a case-wide action. eTag is optional; when
// omitted, the current one is fetched through get-case-action before the
// write, with the same effective configuration.
type PerformCaseAction struct {
	tool.Base
}

// NewPerformCaseAction creates the perform_case_action tool.
func NewPerformCaseAction(b tool.Base) *PerformCaseAction {
	return &PerformCaseAction{Base: b}
}

func (t *PerformCaseAction) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "perform_case_action",
		Category:    Category,
		Description: "Perform a case-wide action, optionally updating case content. Omit eTag to have the current one fetched automatically.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"caseID":             tool.String("Full case handle."),
			"actionID":           tool.String("ID of the case-wide action to perform."),
			"eTag":               tool.String("Optimistic-concurrency token from a prior read; fetched automatically when omitted."),
			"content":            tool.Object("Case field values to submit with the action.", nil),
			"pageInstructions":   tool.Array("Page-level operations for embedded pages.", &tool.Schema{Type: "object"}),
			"attachments":        tool.Array("Attachments to link while performing the action.", &tool.Schema{Type: "object"}),
			"viewType":           tool.StringEnum("Level of UI metadata to include in the response.", "form", "page", "none"),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "caseID", "actionID"),
	}
}

func (t *PerformCaseAction) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "caseID", "actionID"); res != nil {
		return res
	}
	if res := tool.CheckEnum(args, "viewType", "form", "page", "none"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Perform Case Action", args)
	if errRes != nil {
		return errRes
	}

	caseID := tool.StringArg(args, "caseID")
	actionID := tool.StringArg(args, "actionID")
	eTag := tool.StringArg(args, "eTag")

	return tool.WithErrorHandling("Perform Case Action", fctx, func() (*client.Result, *dxerror.Error) {
		if eTag == "" {
			fetched, derr := t.Client.FetchETag(ctx, cfg, &client.EntityRef{
				Kind:     client.EntityCaseAction,
				CaseID:   caseID,
				ActionID: actionID,
			})
			if derr != nil {
				return nil, derr
			}
			eTag = fetched
			fctx.AutoFetchedETag = true
		}
		return t.Client.PerformCaseAction(ctx, cfg, caseID, actionID, eTag, tool.CaseContentArgs(args))
	}, nil)
}

// GetCaseStages lists a case's stage progression.
type GetCaseStages struct {
	tool.Base
}

// NewGetCaseStages creates the get_case_stages tool.
func NewGetCaseStages(b tool.Base) *GetCaseStages {
	return &GetCaseStages{Base: b}
}

func (t *GetCaseStages) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "get_case_stages",
		Category:    Category,
		Description: "List a case's stages with their visited status.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"caseID":             tool.String("Full case handle."),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "caseID"),
	}
}

func (t *GetCaseStages) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "caseID"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Get Case Stages", args)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Get Case Stages", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.GetCaseStages(ctx, cfg, tool.StringArg(args, "caseID"))
	}, nil)
}
