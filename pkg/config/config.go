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

// Package config loads per-environment settings for the harness. Each target
// environment (dev, qa, uat) has a dotenv file under env/, selected by name;
// process environment variables override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved harness configuration for one environment.
type Config struct {
	// BaseURL is the MCN API root (izo_mcn_url).
	BaseURL string
	// TenantID and OrganizationName are sent on every request.
	TenantID         string
	OrganizationName string
	// VPCIDForDeletion and SubnetIDForDeletion are externally supplied
	// resource IDs for the delete-by-ID scenarios.
	VPCIDForDeletion    string
	SubnetIDForDeletion string
}

const (
	defaultTenantID         = "tata"
	defaultOrganizationName = "caltestorg"
)

// Load reads env/<name>.env under baseDir. The file must exist and must
// provide izo_mcn_url; everything else has defaults or is optional.
func Load(name, baseDir string) (*Config, error) {
	path := filepath.Join(baseDir, "env", name+".env")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("environment file %q not found: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading environment file %q: %w", path, err)
	}

	cfg := &Config{
		BaseURL:             get(v, "izo_mcn_url"),
		TenantID:            get(v, "x_tenant_id"),
		OrganizationName:    get(v, "organization_name"),
		VPCIDForDeletion:    get(v, "vpc_id_for_deletion"),
		SubnetIDForDeletion: get(v, "subnet_id_for_deletion"),
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("environment variable %q not found in %s", "izo_mcn_url", path)
	}
	if cfg.TenantID == "" {
		cfg.TenantID = defaultTenantID
	}
	if cfg.OrganizationName == "" {
		cfg.OrganizationName = defaultOrganizationName
	}
	return cfg, nil
}

// Headers returns the static request headers for the API client.
func (c *Config) Headers() map[string]string {
	return map[string]string{
		"X-TenantID":        c.TenantID,
		"Organization-Name": c.OrganizationName,
	}
}

// get prefers the process environment over the file, checking the key as-is
// and uppercased since the suite's dotenv files use lowercase names.
func get(v *viper.Viper, key string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	if val, ok := os.LookupEnv(strings.ToUpper(key)); ok {
		return val
	}
	return v.GetString(key)
}
