package catalog

// scenarioSchema validates authored scenario documents before they reach
// the repository. Structural rules only; semantic rules live in
// domain.Scenario.Validate.
const scenarioSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "mode", "title", "tasks"],
  "properties": {
    "id": {
      "type": "string",
      "minLength": 1
    },
    "mode": {
      "type": "string",
      "enum": ["pbl", "assessment", "discovery"]
    },
    "status": {
      "type": "string",
      "enum": ["draft", "active", "archived"]
    },
    "title": {
      "$ref": "#/definitions/localized"
    },
    "description": {
      "$ref": "#/definitions/localized"
    },
    "tasks": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "title"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "type": {
            "type": "string",
            "enum": ["question", "chat", "creation", "analysis", "exploration"]
          },
          "title": {"$ref": "#/definitions/localized"},
          "instructions": {"$ref": "#/definitions/localized"},
          "maxScore": {"type": "number", "minimum": 0},
          "domains": {
            "type": "array",
            "items": {"type": "string"}
          }
        }
      }
    },
    "pbl": {
      "type": "object",
      "properties": {
        "ksaMapping": {
          "type": "object",
          "additionalProperties": {
            "type": "array",
            "items": {"type": "string"}
          }
        }
      }
    },
    "assessment": {
      "type": "object",
      "properties": {
        "passingScore": {"type": "number", "minimum": 0, "maximum": 100},
        "timeLimitSeconds": {"type": "integer", "minimum": 0}
      }
    },
    "discovery": {
      "type": "object",
      "properties": {
        "careerPath": {"type": "string"},
        "worldSetting": {"type": "string"}
      }
    }
  },
  "definitions": {
    "localized": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {"type": "string"}
    }
  }
}`
