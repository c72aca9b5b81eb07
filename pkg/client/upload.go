// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mcpany/dx-gateway/pkg/config"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
)

// UploadAttachment uploads one file as a temporary attachment and returns the
// upstream result, whose ID is later linked to a case via AddCaseAttachments.
// The file is read through fs so tests can use an in-memory filesystem; the
// handle is released on every exit path.
func (c *DXClient) UploadAttachment(ctx context.Context, cfg *config.Effective, fs afero.Fs, filePath string, appendUniqueID bool) (*Result, *dxerror.Error) {
	file, err := fs.Open(filePath)
	if err != nil {
		return nil, dxerror.New(dxerror.KindBadRequest, "cannot open file %q: %v", filePath, err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("arrayOfFiles", filepath.Base(filePath))
	if err != nil {
		return nil, dxerror.New(dxerror.KindInternalServerError, "failed to build multipart body: %v", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, dxerror.New(dxerror.KindBadRequest, "failed to read file %q: %v", filePath, err)
	}
	if err := writer.WriteField("appendUniqueIdToFileName", fmt.Sprintf("%t", appendUniqueID)); err != nil {
		return nil, dxerror.New(dxerror.KindInternalServerError, "failed to build multipart body: %v", err)
	}
	if err := writer.Close(); err != nil {
		return nil, dxerror.New(dxerror.KindInternalServerError, "failed to finalize multipart body: %v", err)
	}

	return c.call(ctx, cfg, &Request{
		Method:      http.MethodPost,
		Path:        "/attachments/upload",
		Body:        buf.Bytes(),
		ContentType: writer.FormDataContentType(),
	})
}
