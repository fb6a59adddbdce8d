// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"

	"github.com/amoldhamale1105/frostbite/cfg"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error
	unmarshalErr  error
	RuntimeConfig cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "frostbite",
	Short: "Frostbite boots a FAT16 disk image and runs its process lifecycle kernel",
	Long: `Frostbite is a userspace simulation of an aarch64 teaching kernel's
process table, scheduler and three-tier open-file layer, reading its
root directory and binaries from a read-only FAT16 disk image.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}
		return cfg.Validate(&RuntimeConfig)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file.")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(psCmd)
}

func initConfig() {
	RuntimeConfig = cfg.GetDefaultConfig()
	viper.SetEnvPrefix("FROSTBITE")
	viper.AutomaticEnv()
	yamlTags := func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }

	if cfgFile == "" {
		unmarshalErr = viper.Unmarshal(&RuntimeConfig, viper.DecodeHook(cfg.DecodeHook()), yamlTags)
		return
	}
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("reading config file: %w", err)
		return
	}
	unmarshalErr = viper.Unmarshal(&RuntimeConfig, viper.DecodeHook(cfg.DecodeHook()), yamlTags)
}
