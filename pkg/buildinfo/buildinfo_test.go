/*
Copyright 2014 The Camlistore Authors

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

package buildinfo

import "testing"

func TestTestingLinked(t *testing.T) {
	if !TestingLinked() {
		t.Error("TestingLinked() = false inside a test binary; want true")
	}
}

func TestSummaryUnknownByDefault(t *testing.T) {
	Version, GitInfo = "", ""
	if got := Summary(); got != "unknown" {
		t.Errorf("Summary() = %q; want %q", got, "unknown")
	}
}

func TestSummaryCombinesVersionAndGitInfo(t *testing.T) {
	Version, GitInfo = "0.1.0", "abcdef1"
	defer func() { Version, GitInfo = "", "" }()
	want := "0.1.0, abcdef1"
	if got := Summary(); got != want {
		t.Errorf("Summary() = %q; want %q", got, want)
	}
}
