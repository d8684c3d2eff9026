/*
Copyright The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cleanup

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/apiclient"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/resource"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/scenario"
)

type recordedDelete struct {
	resType resource.Type
	id      string
}

type fakeDeleter struct {
	deletes  []recordedDelete
	failIDs  map[string]error
	statusFn func(id string) int
}

func (f *fakeDeleter) DeleteResource(ctx context.Context, t resource.Type, id string, spec *resource.Spec) (*apiclient.Response, error) {
	f.deletes = append(f.deletes, recordedDelete{resType: t, id: id})
	if err, ok := f.failIDs[id]; ok {
		return &apiclient.Response{StatusCode: http.StatusInternalServerError}, err
	}
	status := http.StatusOK
	if f.statusFn != nil {
		status = f.statusFn(id)
	}
	return &apiclient.Response{StatusCode: status, Body: []byte(`{"message": "deleted successfully"}`)}, nil
}

func populated() *scenario.Context {
	sctx := scenario.New()
	sctx.Register(resource.CreatedResource{Type: resource.TypeVPC, ID: "vpc-1"})
	sctx.Register(resource.CreatedResource{Type: resource.TypeSubnet, ID: "subnet-1", ParentID: "vpc-1"})
	sctx.Register(resource.CreatedResource{Type: resource.TypeSubnet, ID: "subnet-2", ParentID: "vpc-1"})
	return sctx
}

func TestRunDeletesInReverseCreationOrder(t *testing.T) {
	deleter := &fakeDeleter{}
	sctx := populated()

	results, err := New(deleter).Run(context.Background(), sctx)

	require.NoError(t, err)
	require.Len(t, results, 3)

	// subnets created after the VPC must be deleted before it
	assert.Equal(t, []recordedDelete{
		{resType: resource.TypeSubnet, id: "subnet-2"},
		{resType: resource.TypeSubnet, id: "subnet-1"},
		{resType: resource.TypeVPC, id: "vpc-1"},
	}, deleter.deletes)
}

func TestRunClearsRegistryAlways(t *testing.T) {
	tests := []struct {
		name    string
		failIDs map[string]error
	}{
		{name: "all deletes succeed"},
		{name: "every delete fails", failIDs: map[string]error{
			"vpc-1":    fmt.Errorf("boom"),
			"subnet-1": fmt.Errorf("boom"),
			"subnet-2": fmt.Errorf("boom"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sctx := populated()
			_, _ = New(&fakeDeleter{failIDs: tt.failIDs}).Run(context.Background(), sctx)
			assert.Empty(t, sctx.Resources())
		})
	}
}

func TestRunFailureDoesNotAbortRemaining(t *testing.T) {
	deleter := &fakeDeleter{failIDs: map[string]error{
		"subnet-2": fmt.Errorf("api unavailable"),
	}}
	sctx := populated()

	results, err := New(deleter).Run(context.Background(), sctx)

	// all three got their one attempt
	assert.Len(t, deleter.deletes, 3)

	require.Len(t, results, 3)
	assert.False(t, results[0].Succeeded())
	assert.True(t, results[1].Succeeded())
	assert.True(t, results[2].Succeeded())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "subnet-2")
	assert.NotContains(t, err.Error(), "subnet-1")
}

func TestRunWithCancelledContextStillDeletes(t *testing.T) {
	deleter := &fakeDeleter{}
	sctx := populated()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := New(deleter).WithTimeout(time.Second).Run(ctx, sctx)

	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Len(t, deleter.deletes, 3)
	assert.Empty(t, sctx.Resources())
}

func TestRunEmptyRegistry(t *testing.T) {
	deleter := &fakeDeleter{}
	results, err := New(deleter).Run(context.Background(), scenario.New())

	assert.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, deleter.deletes)
}
