// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/vecscan/pkg/config"
)

// generate writes the default scan parameters as a toml file that
// mo-scan -cfg accepts.
func generate(w io.Writer) error {
	if _, err := io.WriteString(w, "# default configuration of mo-scan\n\n"); err != nil {
		return err
	}
	return toml.NewEncoder(w).Encode(config.NewDefaultParameters())
}

func main() {
	argCnt := len(os.Args)
	if argCnt > 2 {
		fmt.Printf("Usage: %s [outputFile]\n", os.Args[0])
		os.Exit(-1)
	}

	out := os.Stdout
	if argCnt == 2 {
		f, err := os.Create(os.Args[1])
		if err != nil {
			fmt.Printf("create %s failed. error:%v \n", os.Args[1], err)
			os.Exit(-1)
		}
		defer f.Close()
		out = f
	}
	if err := generate(out); err != nil {
		fmt.Printf("generate configuration failed. error:%v \n", err)
		os.Exit(-1)
	}
}
