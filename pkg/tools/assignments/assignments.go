// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package assignments contains the tools that wrap the DX API's assignment
// endpoints.
package assignments

import (
	"context"

	"github.com/mcpany/dx-gateway/pkg/client"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
	"github.com/mcpany/dx-gateway/pkg/tool"
)

// Category is the registry tag for assignment tools.
const Category = "assignments"

// GetAssignment retrieves an assignment's details.
type GetAssignment struct {
	tool.Base
}

// NewGetAssignment creates the get_assignment tool.
func NewGetAssignment(b tool.Base) *GetAssignment {
	return &GetAssignment{Base: b}
}

// Definition returns the tool descriptor.
func (t *GetAssignment) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "get_assignment",
		Category:    Category,
		Description: "Retrieve an assignment's details, including its instructions and available actions.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"assignmentID":       tool.String("Full handle of the assignment (e.g. ASSIGN-WORKLIST OSIEO3-DOCSAPP-WORK E-55001!APPROVAL_FLOW)."),
			"viewType":           tool.StringEnum("Level of UI metadata to include.", "form", "page"),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "assignmentID"),
	}
}

// Execute validates the arguments and issues the upstream read.
func (t *GetAssignment) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "assignmentID"); res != nil {
		return res
	}
	if res := tool.CheckEnum(args, "viewType", "form", "page"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Get Assignment", args)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Get Assignment", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.GetAssignment(ctx, cfg, tool.StringArg(args, "assignmentID"), tool.StringArg(args, "viewType"))
	}, nil)
}

// GetAssignmentAction retrieves an assignment action's view; the returned
// eTag is the one a subsequent perform needs.
type GetAssignmentAction struct {
	tool.Base
}

// NewGetAssignmentAction creates the get_assignment_action tool.
func NewGetAssignmentAction(b tool.Base) *GetAssignmentAction {
	return &GetAssignmentAction{Base: b}
}

func (t *GetAssignmentAction) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "get_assignment_action",
		Category:    Category,
		Description: "Retrieve the view of an assignment action and the eTag required to perform it.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"assignmentID":       tool.String("Full handle of the assignment."),
			"actionID":           tool.String("ID of the action (e.g. Verify, Approve)."),
			"viewType":           tool.StringEnum("Level of UI metadata to include.", "form", "page"),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "assignmentID", "actionID"),
	}
}

func (t *GetAssignmentAction) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "assignmentID", "actionID"); res != nil {
		return res
	}
	if res := tool.CheckEnum(args, "viewType", "form", "page"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Get Assignment Action", args)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Get Assignment Action", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.GetAssignmentAction(ctx, cfg,
			tool.StringArg(args, "assignmentID"), tool.StringArg(args, "actionID"), tool.StringArg(args, "viewType"))
	}, nil)
}

// PerformAssignmentAction submits an assignment action. eTag is optional:
// when the caller omits it, the current one is fetched through the
// corresponding read (get-assignment-action with viewType=form) before the
// write, using the same effective configuration.
type PerformAssignmentAction struct {
	tool.Base
}

// NewPerformAssignmentAction creates the perform_assignment_action tool.
func NewPerformAssignmentAction(b tool.Base) *PerformAssignmentAction {
	return &PerformAssignmentAction{Base: b}
}

func (t *PerformAssignmentAction) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "perform_assignment_action",
		Category:    Category,
		Description: "Perform an assignment action, optionally updating case content. Omit eTag to have the current one fetched automatically.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"assignmentID":       tool.String("Full handle of the assignment."),
			"actionID":           tool.String("ID of the action to perform."),
			"eTag":               tool.String("Optimistic-concurrency token from a prior read; fetched automatically when omitted."),
			"content":            tool.Object("Case field values to submit with the action.", nil),
			"pageInstructions":   tool.Array("Page-level operations for embedded pages.", &tool.Schema{Type: "object"}),
			"attachments":        tool.Array("Attachments to link while performing the action.", &tool.Schema{Type: "object"}),
			"viewType":           tool.StringEnum("Level of UI metadata to include in the response.", "form", "page", "none"),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "assignmentID", "actionID"),
	}
}

func (t *PerformAssignmentAction) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "assignmentID", "actionID"); res != nil {
		return res
	}
	if res := tool.CheckEnum(args, "viewType", "form", "page", "none"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Perform Assignment Action", args)
	if errRes != nil {
		return errRes
	}

	assignmentID := tool.StringArg(args, "assignmentID")
	actionID := tool.StringArg(args, "actionID")
	eTag := tool.StringArg(args, "eTag")

	return tool.WithErrorHandling("Perform Assignment Action", fctx, func() (*client.Result, *dxerror.Error) {
		if eTag == "" {
			fetched, derr := t.Client.FetchETag(ctx, cfg, &client.EntityRef{
				Kind:         client.EntityAssignmentAction,
				AssignmentID: assignmentID,
				ActionID:     actionID,
			})
			if derr != nil {
				return nil, derr
			}
			eTag = fetched
			fctx.AutoFetchedETag = true
		}
		return t.Client.PerformAssignmentAction(ctx, cfg, assignmentID, actionID, eTag, tool.CaseContentArgs(args))
	}, nil)
}

// GetNextAssignment fetches the next work item the authenticated operator
// should act on (get-next-work).
type GetNextAssignment struct {
	tool.Base
}

// NewGetNextAssignment creates the get_next_assignment tool.
func NewGetNextAssignment(b tool.Base) *GetNextAssignment {
	return &GetNextAssignment{Base: b}
}

func (t *GetNextAssignment) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "get_next_assignment",
		Category:    Category,
		Description: "Retrieve the next assignment the authenticated operator should work on.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"viewType":           tool.StringEnum("Level of UI metadata to include.", "form", "page"),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}),
	}
}

func (t *GetNextAssignment) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.CheckEnum(args, "viewType", "form", "page"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Get Next Assignment", args)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Get Next Assignment", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.GetNextAssignment(ctx, cfg, tool.StringArg(args, "viewType"))
	}, nil)
}
