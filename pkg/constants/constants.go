/*
Copyright 2014 the Camlistore authors.

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

// Package constants contains bulicore-wide constants.
//
// This is a leaf package, without dependencies.
package constants

// MaxEmbeddedPreviewSize bounds how much of an inner archive member
// EmbeddedPreview will read out of a KRA/ORA container before giving
// up and falling back to a full raster decode. 16 MB comfortably
// covers a merged-image PNG preview at any canonical thumbnail size.
const MaxEmbeddedPreviewSize = 16 << 20
