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

	"github.com/spf13/cobra"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "Boot a disk image and print the process table after the first dispatch",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, img, err := bootKernel(&RuntimeConfig)
		if err != nil {
			return err
		}
		defer img.Close()

		k.Tick() // dispatch init so it shows RUNNING rather than READY

		fmt.Printf("%-6s %-6s %-8s %s\n", "PID", "PPID", "STATE", "NAME")
		for _, pid := range k.ActiveProcs() {
			data, ok := k.ProcData(pid)
			if !ok {
				continue
			}
			fmt.Printf("%-6d %-6d %-8s %s\n", data.Pid, data.Ppid, data.State, data.Name)
		}
		return nil
	},
}
