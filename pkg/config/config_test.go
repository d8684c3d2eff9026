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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "env"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "env", name+".env"), []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, "qa", `
izo_mcn_url=http://mcn.qa.example:8081
vpc_id_for_deletion=vpc-04fc4339d04982788
`)

	cfg, err := Load("qa", dir)
	require.NoError(t, err)

	assert.Equal(t, "http://mcn.qa.example:8081", cfg.BaseURL)
	assert.Equal(t, "vpc-04fc4339d04982788", cfg.VPCIDForDeletion)
	assert.Equal(t, "tata", cfg.TenantID)
	assert.Equal(t, "caltestorg", cfg.OrganizationName)

	headers := cfg.Headers()
	assert.Equal(t, "tata", headers["X-TenantID"])
	assert.Equal(t, "caltestorg", headers["Organization-Name"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("uat", t.TempDir())
	assert.ErrorContains(t, err, "not found")
}

func TestLoadMissingBaseURL(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, "qa", "vpc_id_for_deletion=vpc-1\n")

	_, err := Load("qa", dir)
	assert.ErrorContains(t, err, "izo_mcn_url")
}

func TestLoadProcessEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, "qa", "izo_mcn_url=http://from-file\n")
	t.Setenv("izo_mcn_url", "http://from-env")

	cfg, err := Load("qa", dir)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", cfg.BaseURL)
}

func TestLoadCustomHeaders(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, "dev", `
izo_mcn_url=http://mcn.dev.example
x_tenant_id=acme
organization_name=acmeorg
`)

	cfg, err := Load("dev", dir)
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.TenantID)
	assert.Equal(t, "acmeorg", cfg.OrganizationName)
}
