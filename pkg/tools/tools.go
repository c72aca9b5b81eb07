// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package tools aggregates every built-in tool. Registration is explicit:
// each tool is constructed here with the shared Base, so the full tool set
// is visible in one place and the registry can validate it at startup.
package tools

import (
	"github.com/mcpany/dx-gateway/pkg/tool"
	"github.com/mcpany/dx-gateway/pkg/tools/assignments"
	"github.com/mcpany/dx-gateway/pkg/tools/attachments"
	"github.com/mcpany/dx-gateway/pkg/tools/cases"
	"github.com/mcpany/dx-gateway/pkg/tools/casetypes"
	"github.com/mcpany/dx-gateway/pkg/tools/dataviews"
	"github.com/mcpany/dx-gateway/pkg/tools/gateway"
)

// All returns the full built-in tool set, sharing one Base.
func All(b tool.Base) []tool.Tool {
	return []tool.Tool{
		cases.NewGetCase(b),
		cases.NewCreateCase(b),
		cases.NewDeleteCase(b),
		cases.NewGetCaseAction(b),
		cases.NewPerformCaseAction(b),
		cases.NewGetCaseStages(b),

		assignments.NewGetAssignment(b),
		assignments.NewGetAssignmentAction(b),
		assignments.NewPerformAssignmentAction(b),
		assignments.NewGetNextAssignment(b),

		casetypes.NewGetCaseTypes(b),
		casetypes.NewGetCaseTypeAction(b),

		dataviews.NewGetDataView(b),
		dataviews.NewGetListDataView(b),

		attachments.NewGetCaseAttachments(b),
		attachments.NewAddCaseAttachments(b),
		attachments.NewUploadAttachment(b),
		attachments.NewGetAttachment(b),

		gateway.NewPing(b),
	}
}

// Factory adapts All to the registry's factory signature.
func Factory(b tool.Base) func() ([]tool.Tool, error) {
	return func() ([]tool.Tool, error) {
		return All(b), nil
	}
}
