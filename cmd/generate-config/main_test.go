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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/vecscan/pkg/config"
)

func TestGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.toml")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, generate(f))
	require.NoError(t, f.Close())

	sp, err := config.LoadParameters(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, config.NewDefaultParameters(), sp)
}
