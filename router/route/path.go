// Copyright 2025 The Rivaas Authors
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

package route

import "strings"

// JoinPath joins a mount or group prefix with a route path.
// The result always starts with a single '/' and never contains "//" at
// the seam. A trailing slash on path is preserved.
func JoinPath(prefix, path string) string {
	prefix = strings.TrimRight(prefix, "/")
	if path == "" || path == "/" {
		if prefix == "" {
			return "/"
		}
		return ensureLeadingSlash(prefix)
	}
	path = strings.TrimLeft(path, "/")
	return ensureLeadingSlash(prefix + "/" + path)
}

func ensureLeadingSlash(p string) string {
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}
