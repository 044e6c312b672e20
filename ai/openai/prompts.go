package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/docgraph/ai"
)

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {
            "type": "string"
          },
          "type": {
            "type": "string"
          },
          "confidence": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          },
          "properties": {
            "type": "object",
            "additionalProperties": {"type": "string"}
          }
        },
        "required": ["name", "type", "confidence"],
        "additionalProperties": false
      }
    },
    "relations": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "from": {"type": "string"},
          "to": {"type": "string"},
          "type": {"type": "string"},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1}
        },
        "required": ["from", "to", "type", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["entities"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `Extract the technical entities mentioned in the given documentation text and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Entity names keep their conventional casing ("Kubernetes", "gRPC", "PostgreSQL").
- Type field must match exactly one of the listed values: %s.
- Confidence is a number from 0.0 (uncertain) to 1.0 (certain). Rate how sure you are that the entity is real and correctly typed.
- Include only entities that are explicitly mentioned in the text. Do not hallucinate.
- Use the properties object for concrete attributes stated in the text, such as {"version": "1.29"}.
- Relations connect two extracted entity names with a short lowercase verb phrase like "depends_on", "part_of", "replaces". Only report relations stated by the text.
- If no entities can be identified, return "entities": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Deploy the service to Kubernetes 1.29 using Helm. Helm charts are stored in an OCI registry."
Output:
{
  "entities": [
    {"name":"Kubernetes","type":"platform","confidence":0.97,"properties":{"version":"1.29"}},
    {"name":"Helm","type":"tool","confidence":0.95},
    {"name":"OCI","type":"standard","confidence":0.85}
  ],
  "relations": [
    {"from":"Helm","to":"Kubernetes","type":"deploys_to","confidence":0.9}
  ]
}

Example (nothing to extract):
Input: "See the previous section for details."
Output:
{
  "entities": []
}`

// buildSystemPrompt creates the system prompt with entity types embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(extractionPromptTemplate,
		extractionResponseSchema,
		strings.Join(ai.EntityTypes, ", "))
}
