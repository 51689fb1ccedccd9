// Copyright 2025 walteh LLC
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

/*
Package operation wires the components together for each command.

	+--------+     +------+     +---------+     +--------+     +---------+
	| config | --> | lock | --> | load    | --> | engine | --> | persist |
	+--------+     +------+     | (both)  |     +--------+     | journal |
	                            +---------+                    +---------+

🎯 Purpose:
- Holds the lock of the tree an operation writes, for its whole duration
- Loads both metadata documents concurrently
- Runs the sync engine, the version tracker, the merger or the watcher
- Persists the destination document and journals every written file

⚡ Failure handling:
- Sync stops at the first failed file; entries finished before it are saved
- Merge continues past failed files and returns them joined
- A journal that cannot be written is logged, never fatal
*/
package operation
