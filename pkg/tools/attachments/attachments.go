// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package attachments contains the tools that wrap the DX API's attachment
// endpoints.
package attachments

import (
	"context"

	"github.com/mcpany/dx-gateway/pkg/client"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
	"github.com/mcpany/dx-gateway/pkg/tool"
)

// Category is the registry tag for attachment tools.
const Category = "attachments"

// GetCaseAttachments lists the attachments of a case.
type GetCaseAttachments struct {
	tool.Base
}

// NewGetCaseAttachments creates the get_case_attachments tool.
func NewGetCaseAttachments(b tool.Base) *GetCaseAttachments {
	return &GetCaseAttachments{Base: b}
}

// Definition returns the tool descriptor.
func (t *GetCaseAttachments) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "get_case_attachments",
		Category:    Category,
		Description: "List the attachments linked to a case.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"caseID":             tool.String("Full case handle."),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "caseID"),
	}
}

// Execute validates the arguments and issues the upstream read.
func (t *GetCaseAttachments) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "caseID"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Get Case Attachments", args)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Get Case Attachments", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.GetCaseAttachments(ctx, cfg, tool.StringArg(args, "caseID"))
	}, nil)
}

// AddCaseAttachments links previously uploaded files or URLs to a case.
type AddCaseAttachments struct {
	tool.Base
}

// NewAddCaseAttachments creates the add_case_attachments tool.
func NewAddCaseAttachments(b tool.Base) *AddCaseAttachments {
	return &AddCaseAttachments{Base: b}
}

func (t *AddCaseAttachments) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "add_case_attachments",
		Category:    Category,
		Description: "Link uploaded files (by temporary attachment ID) or URLs to a case.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"caseID":             tool.String("Full case handle."),
			"attachments":        tool.Array("Attachment descriptors: {\"type\": \"File\", \"ID\": tempID} or {\"type\": \"URL\", \"url\": ..., \"name\": ...}, each with a \"category\".", &tool.Schema{Type: "object"}),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "caseID", "attachments"),
	}
}

func (t *AddCaseAttachments) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "caseID", "attachments"); res != nil {
		return res
	}
	list := tool.SliceArg(args, "attachments")
	if len(list) == 0 {
		return tool.ValidationError("attachments must be a non-empty array")
	}
	cfg, fctx, errRes := t.Resolve("Add Case Attachments", args)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Add Case Attachments", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.AddCaseAttachments(ctx, cfg, tool.StringArg(args, "caseID"), list)
	}, nil)
}

// UploadAttachment uploads a local file as a temporary attachment. The
// returned ID is linked to a case with add_case_attachments.
type UploadAttachment struct {
	tool.Base
}

// NewUploadAttachment creates the upload_attachment tool.
func NewUploadAttachment(b tool.Base) *UploadAttachment {
	return &UploadAttachment{Base: b}
}

func (t *UploadAttachment) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "upload_attachment",
		Category:    Category,
		Description: "Upload a local file as a temporary attachment; link it to a case with add_case_attachments.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"filePath":           tool.String("Path of the file to upload, resolved on the gateway host."),
			"appendUniqueID":     tool.Boolean("Append a unique suffix to the stored file name (default false)."),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "filePath"),
	}
}

func (t *UploadAttachment) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "filePath"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Upload Attachment", args)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Upload Attachment", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.UploadAttachment(ctx, cfg, t.FS,
			tool.StringArg(args, "filePath"), tool.BoolArg(args, "appendUniqueID", false))
	}, nil)
}

// GetAttachment downloads an attachment's content.
type GetAttachment struct {
	tool.Base
}

// NewGetAttachment creates the get_attachment tool.
func NewGetAttachment(b tool.Base) *GetAttachment {
	return &GetAttachment{Base: b}
}

func (t *GetAttachment) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "get_attachment",
		Category:    Category,
		Description: "Download an attachment's content: base64 data for files, the target URL for links.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"attachmentID":       tool.String("Full handle of the attachment (e.g. LINK-ATTACHMENT OSIEO3-DOCSAPP-WORK E-55001!20240101T000000.000 GMT)."),
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}, "attachmentID"),
	}
}

func (t *GetAttachment) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	args := req.Arguments
	if res := tool.Require(args, "attachmentID"); res != nil {
		return res
	}
	cfg, fctx, errRes := t.Resolve("Get Attachment", args)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Get Attachment", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.GetAttachmentContent(ctx, cfg, tool.StringArg(args, "attachmentID"))
	}, nil)
}
