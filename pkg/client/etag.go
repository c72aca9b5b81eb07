// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"strings"

	"github.com/mcpany/dx-gateway/pkg/config"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
	"github.com/mcpany/dx-gateway/pkg/logging"
)

// EntityKind names the read endpoint family used to obtain a current eTag.
type EntityKind string

const (
	// EntityCaseAction reads via get-case-action with viewType=form.
	EntityCaseAction EntityKind = "caseAction"
	// EntityAssignmentAction reads via get-assignment-action with
	// viewType=form.
	EntityAssignmentAction EntityKind = "assignmentAction"
	// EntityCase reads via get-case.
	EntityCase EntityKind = "case"
)

// EntityRef identifies the entity whose current eTag a write needs. Each
// write tool that permits auto-fetch declares its corresponding read here, so
// the preliminary read lives in one place.
type EntityRef struct {
	Kind         EntityKind
	CaseID       string
	AssignmentID string
	ActionID     string
}

// FetchETag performs the preliminary read for a write invoked without an
// eTag. The read uses the same effective configuration as the write that
// follows; the two are issued sequentially on the caller's goroutine.
//
// A failed read yields ETAG_FETCH_FAILED wrapping the read's error and the
// write must not proceed. A read that succeeds without an eTag header yields
// ETAG_MISSING.
func (c *DXClient) FetchETag(ctx context.Context, cfg *config.Effective, ref *EntityRef) (string, *dxerror.Error) {
	var res *Result
	var derr *dxerror.Error

	switch ref.Kind {
	case EntityCaseAction:
		res, derr = c.GetCaseAction(ctx, cfg, ref.CaseID, ref.ActionID, "form")
	case EntityAssignmentAction:
		res, derr = c.GetAssignmentAction(ctx, cfg, ref.AssignmentID, ref.ActionID, "form")
	case EntityCase:
		res, derr = c.GetCase(ctx, cfg, ref.CaseID, "none", "")
	default:
		return "", dxerror.New(dxerror.KindETagFetchFailed, "unknown eTag source %q", ref.Kind)
	}

	if derr != nil {
		return "", &dxerror.Error{
			Kind:    dxerror.KindETagFetchFailed,
			Message: "preliminary read to obtain the current eTag failed: " + derr.Message,
			Status:  derr.Status,
			Details: derr.Details,
			Cause:   derr,
		}
	}

	eTag := strings.TrimSpace(res.ETag)
	if eTag == "" {
		return "", dxerror.New(dxerror.KindETagMissing, "the preliminary read returned no eTag; the entity may not support optimistic concurrency")
	}
	logging.GetLogger().Debug("auto-fetched eTag", "kind", string(ref.Kind), "sessionID", cfg.SessionID)
	return eTag, nil
}
