// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package dataviews

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpany/dx-gateway/pkg/auth"
	"github.com/mcpany/dx-gateway/pkg/client"
	"github.com/mcpany/dx-gateway/pkg/testutil"
	"github.com/mcpany/dx-gateway/pkg/tool"
)

func newBase(t *testing.T, stub *testutil.StubDX) tool.Base {
	t.Helper()
	httpClient := stub.Server.Client()
	exec := client.NewExecutor(httpClient, auth.NewCache(httpClient))
	return tool.Base{
		Client: client.NewDXClient(exec),
		Config: stub.Config(),
		FS:     afero.NewMemMapFs(),
	}
}

func run(t *testing.T, tl tool.Tool, args map[string]any) *tool.Result {
	t.Helper()
	res := tl.Execute(context.Background(), &tool.ExecutionRequest{
		ToolName:  tl.Definition().Name,
		Arguments: args,
	})
	require.NotNil(t, res)
	return res
}

func TestGetDataViewSendsParameters(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	stub := testutil.NewStubDX(t)
	stub.DataHandler = func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		testutil.JSONResponse(w, http.StatusOK, "", map[string]any{"pyFirstName": "Ada"})
	}

	res := run(t, NewGetDataView(newBase(t, stub)), map[string]any{
		"dataViewID":         "D_OperatorDetails",
		"dataViewParameters": map[string]any{"OperatorID": "ada@example.com"},
	})

	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "Ada")

	var params map[string]any
	require.NoError(t, json.Unmarshal([]byte(gotQuery.Get("dataViewParameters")), &params))
	assert.Equal(t, "ada@example.com", params["OperatorID"])
}

func TestGetListDataViewBuildsQueryBody(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	stub.DataHandler = func(w http.ResponseWriter, r *http.Request) {
		testutil.JSONResponse(w, http.StatusOK, "", map[string]any{
			"data": []any{
				map[string]any{"Name": "Ada"},
				map[string]any{"Name": "Grace"},
			},
		})
	}

	res := run(t, NewGetListDataView(newBase(t, stub)), map[string]any{
		"dataViewID": "D_EmployeeList",
		"select":     []any{map[string]any{"field": "Name"}},
		"sortBy":     []any{map[string]any{"field": "Name", "type": "ASC"}},
		"pageSize":   float64(25),
		"pageNumber": float64(2),
	})

	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "Data (2 rows)")

	reqs := stub.Requests()
	require.Len(t, reqs, 1)
	var body map[string]any
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	query := body["query"].(map[string]any)
	assert.Contains(t, query, "select")
	assert.Contains(t, query, "sortBy")
	paging := body["paging"].(map[string]any)
	assert.Equal(t, "25", paging["pageSize"])
	assert.Equal(t, "2", paging["pageNumber"])
}

func TestGetListDataViewRequiresID(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	res := run(t, NewGetListDataView(newBase(t, stub)), map[string]any{})

	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "dataViewID")
	assert.Zero(t, stub.DataCalls())
}
