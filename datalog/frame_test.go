// Copyright 2020-2021 Dolthub, Inc.
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

package datalog

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameProject(t *testing.T) {
	require := require.New(t)

	frame := Frame{"X": "a", "Y": "b", "Z": "c"}
	projected := frame.Project([]string{"X", "Z", "W"})
	require.True(projected.Equals(Frame{"X": "a", "Z": "c"}))
}

func TestFrameCopyIsIndependent(t *testing.T) {
	require := require.New(t)

	frame := Frame{"X": "a"}
	cp := frame.Copy()
	cp["Y"] = "b"
	require.True(frame.Equals(Frame{"X": "a"}))
}

func TestFrameString(t *testing.T) {
	require := require.New(t)
	require.Equal("{}", NewFrame().String())
	require.Equal("{X: a, Y: b}", Frame{"Y": "b", "X": "a"}.String())
}

func TestFrameIterToFrames(t *testing.T) {
	require := require.New(t)

	iter := FramesToIter(Frame{"X": "a"}, Frame{"X": "b"})
	frames, err := FrameIterToFrames(iter)
	require.NoError(err)
	require.Len(frames, 2)
	require.True(frames[0].Equals(Frame{"X": "a"}))
	require.True(frames[1].Equals(Frame{"X": "b"}))

	_, err = iter.Next()
	require.Equal(io.EOF, err)
}

func TestHashOf(t *testing.T) {
	require := require.New(t)

	h1, err := HashOf(Frame{"X": "a", "Y": "b"})
	require.NoError(err)
	h2, err := HashOf(Frame{"Y": "b", "X": "a"})
	require.NoError(err)
	require.Equal(h1, h2)

	h3, err := HashOf(Frame{"X": "a", "Y": "c"})
	require.NoError(err)
	require.NotEqual(h1, h3)
}
