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

// Command harness runs the VPC/subnet API scenarios against a target
// environment. The environment is picked by name and resolved from a dotenv
// file under env/; resource IDs for the delete-by-ID scenarios come from
// flags or the environment file.
package main

import (
	"fmt"
	"os"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"
	"github.com/spf13/cobra"

	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/apiclient"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/config"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/harness"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/logging"
	"github.com/Shreyoshi-Cal/mcn-qa-harness/pkg/params"
)

var (
	envName     string
	baseDir     string
	tags        string
	format      string
	featureDir  string
	concurrency int
	vpcID       string
	subnetID    string
)

var rootCmd = &cobra.Command{
	Use:   "harness",
	Short: "BDD harness for the MCN VPC/subnet API",
	Long: `Runs the Gherkin feature suite against an MCN environment.

The environment file env/<name>.env supplies the API base URL and tenant
headers. Delete-by-ID scenarios take their target from --vpc-id/--subnet-id
or from vpc_id_for_deletion/subnet_id_for_deletion in the environment file.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the feature suite against the selected environment",
	RunE:  run,
}

func init() {
	runCmd.Flags().StringVar(&envName, "env", "qa", "target environment name (env/<name>.env)")
	runCmd.Flags().StringVar(&baseDir, "base-dir", ".", "directory containing the env/ folder")
	runCmd.Flags().StringVar(&tags, "tags", "", "godog tag expression, e.g. \"@vpc && ~@cli\"")
	runCmd.Flags().StringVar(&format, "format", "pretty", "godog output format")
	runCmd.Flags().StringVar(&featureDir, "features", "features", "directory holding the .feature files")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 1, "scenarios to run in parallel")
	runCmd.Flags().StringVar(&vpcID, "vpc-id", "", "VPC ID for the delete-by-ID scenario")
	runCmd.Flags().StringVar(&subnetID, "subnet-id", "", "subnet ID for the delete-by-ID scenario")
	rootCmd.AddCommand(runCmd)
}

func run(cmd *cobra.Command, args []string) error {
	log := logging.NewLogger("harness-cli")

	cfg, err := config.Load(envName, baseDir)
	if err != nil {
		return err
	}
	if vpcID == "" {
		vpcID = cfg.VPCIDForDeletion
	}
	if subnetID == "" {
		subnetID = cfg.SubnetIDForDeletion
	}

	client := apiclient.New(cfg.BaseURL, apiclient.HeaderSetter(cfg.Headers()))
	h := harness.New(harness.Options{
		Client:           client,
		Env:              params.OSEnv,
		ExternalVPCID:    vpcID,
		ExternalSubnetID: subnetID,
	})
	log.Info("suite starting",
		"environment", envName, "baseURL", cfg.BaseURL,
		"features", featureDir, "tags", tags, "runID", h.RunID())

	suite := godog.TestSuite{
		Name:                "mcn-qa-harness",
		ScenarioInitializer: h.InitializeScenario,
		Options: &godog.Options{
			Format:      format,
			Paths:       []string{featureDir},
			Tags:        tags,
			Concurrency: concurrency,
			Output:      colors.Colored(os.Stdout),
			Strict:      true,
		},
	}

	status := suite.Run()
	if status != 0 {
		return fmt.Errorf("suite finished with failures (status %d)", status)
	}
	log.Info("suite passed", "runID", h.RunID())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
