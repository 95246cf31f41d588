// Copyright 2025 The goamqp Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLivenessMonitor(t *testing.T) {
	l := NewLiveness()
	mon := l.Monitor()
	assert.True(t, mon.Valid())

	l.Destroy()
	assert.False(t, mon.Valid())
}

func TestLivenessMonitorSurvivesUnrelatedInstances(t *testing.T) {
	a := NewLiveness()
	b := NewLiveness()

	monA := a.Monitor()
	b.Destroy()

	assert.True(t, monA.Valid())
}

func TestLivenessReset(t *testing.T) {
	l := NewLiveness()
	l.Destroy()
	mon := l.Monitor()
	assert.False(t, mon.Valid())

	l.Reset()
	assert.True(t, mon.Valid())
}

func TestZeroMonitorIsInvalid(t *testing.T) {
	var mon Monitor
	assert.False(t, mon.Valid())
}
