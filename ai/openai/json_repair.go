// Copyright 2025 Poiesic Systems
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


package openai

// repairJSON attempts to fix common JSON formatting issues in LLM responses:
// keys missing their opening quote (`, type":` -> `, "type":`) and trailing
// commas before a closing bracket or brace.
func repairJSON(s string) string {
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+64)

	i := 0
	for i < len(result) {
		ch := result[i]

		// After { or , look for unquoted keys and trailing commas.
		if ch == '{' || ch == ',' {
			// Peek past whitespace without emitting yet.
			j := i + 1
			for j < len(result) && isSpace(result[j]) {
				j++
			}

			// Trailing comma: drop the comma, keep the whitespace.
			if ch == ',' && j < len(result) && (result[j] == '}' || result[j] == ']') {
				i++
				continue
			}

			fixed = append(fixed, result[i:j]...)
			i = j

			// Unquoted key: a run of letters followed by `":` means the
			// opening quote is missing.
			if i < len(result) && result[i] != '"' && isLetter(result[i]) {
				keyStart := i
				for i < len(result) && (isLetter(result[i]) || result[i] == '_') {
					i++
				}
				if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
					fixed = append(fixed, '"')
					fixed = append(fixed, result[keyStart:i]...)
					// The closing quote is already present at result[i].
					continue
				}
				// Not a key after all; emit what was scanned.
				fixed = append(fixed, result[keyStart:i]...)
			}
			continue
		}

		fixed = append(fixed, ch)
		i++
	}

	return string(fixed)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
