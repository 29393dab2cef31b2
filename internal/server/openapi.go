package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"hub47-site/internal/common/config"
	"hub47-site/internal/forms"
)

func jsonResponse(description string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]interface{}{"type": "object"},
			},
		},
	}
}

func operation(id, summary string, ok string, body map[string]interface{}) map[string]interface{} {
	status := "200"
	if ok == "" {
		status, ok = "204", "No content"
	}
	responses := map[string]interface{}{
		"default": map[string]interface{}{"$ref": "#/components/responses/Error"},
	}
	if status == "204" {
		responses[status] = map[string]interface{}{"description": ok}
	} else {
		responses[status] = jsonResponse(ok)
	}

	op := map[string]interface{}{
		"operationId": id,
		"summary":     summary,
		"responses":   responses,
	}
	if body != nil {
		op["requestBody"] = body
	}
	return op
}

func jsonBody(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	return map[string]interface{}{
		"required": len(required) > 0,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{"schema": schema},
		},
	}
}

func pathParam(name string, enum []string) map[string]interface{} {
	schema := map[string]interface{}{"type": "string"}
	if len(enum) > 0 {
		schema["enum"] = enum
	}
	return map[string]interface{}{"name": name, "in": "path", "required": true, "schema": schema}
}

// buildOpenAPI describes the JSON API and validates the result before it is served.
func buildOpenAPI(ctx context.Context, cfg *config.Config, reg *forms.Registry) ([]byte, error) {
	var formIDs []string
	for _, f := range reg.List() {
		formIDs = append(formIDs, f.ID())
	}
	formParam := pathParam("form", formIDs)
	sessionParam := pathParam("id", nil)
	anyObject := map[string]interface{}{"type": "object"}

	paths := map[string]interface{}{
		"/api/forms": map[string]interface{}{
			"get": operation("listForms", "List enabled forms", "Form descriptors", nil),
		},
		"/api/forms/{form}": map[string]interface{}{
			"parameters": []interface{}{formParam},
			"get":        operation("getForm", "Describe one form", "Form descriptor", nil),
		},
		"/api/forms/{form}/sessions": map[string]interface{}{
			"parameters": []interface{}{formParam},
			"post": operation("createSession", "Start a wizard session", "Session created",
				jsonBody(map[string]interface{}{"preset": anyObject})),
		},
		"/api/sessions/{id}": map[string]interface{}{
			"parameters": []interface{}{sessionParam},
			"get":        operation("getSession", "Read session state", "Session state", nil),
			"delete":     operation("deleteSession", "Discard a session", "", nil),
		},
		"/api/sessions/{id}/values": map[string]interface{}{
			"parameters": []interface{}{sessionParam},
			"patch": operation("setValues", "Store field values", "Per-field validation results",
				jsonBody(map[string]interface{}{"values": anyObject}, "values")),
		},
		"/api/sessions/{id}/advance": map[string]interface{}{
			"parameters": []interface{}{sessionParam},
			"post":       operation("advance", "Move to the next step", "Session state", nil),
		},
		"/api/sessions/{id}/retreat": map[string]interface{}{
			"parameters": []interface{}{sessionParam},
			"post":       operation("retreat", "Move to the previous step", "Session state", nil),
		},
		"/api/sessions/{id}/submit": map[string]interface{}{
			"parameters": []interface{}{sessionParam},
			"post":       operation("submit", "Submit the form", "Submission receipt", nil),
		},
		"/api/sessions/{id}/reset": map[string]interface{}{
			"parameters": []interface{}{sessionParam},
			"post":       operation("reset", "Start the form over", "Session state", nil),
		},
		"/api/sessions/{id}/attachments/{slot}": map[string]interface{}{
			"parameters": []interface{}{sessionParam, pathParam("slot", nil)},
			"put": operation("stageAttachment", "Stage a file for a slot", "Session state", map[string]interface{}{
				"required": true,
				"content": map[string]interface{}{
					"multipart/form-data": map[string]interface{}{
						"schema": map[string]interface{}{
							"type":     "object",
							"required": []string{"file"},
							"properties": map[string]interface{}{
								"file": map[string]interface{}{"type": "string", "format": "binary"},
							},
						},
					},
				},
			}),
			"delete": operation("unstageAttachment", "Remove a staged file", "Session state", nil),
		},
		"/api/eligibility/questions": map[string]interface{}{
			"get": operation("listQuestions", "Eligibility quiz questions", "Questions", nil),
		},
		"/api/eligibility/score": map[string]interface{}{
			"post": operation("scoreEligibility", "Score quiz answers", "Score, status and recommendations",
				jsonBody(map[string]interface{}{
					"answers": map[string]interface{}{
						"type":                 "object",
						"additionalProperties": map[string]interface{}{"type": "string", "enum": []string{"yes", "partial", "no"}},
					},
				}, "answers")),
		},
		"/api/events": map[string]interface{}{
			"get": operation("listEvents", "Upcoming events", "Events and their source", nil),
		},
	}

	title, version := cfg.App.Name, cfg.App.Version
	if title == "" {
		title = "hub47-site"
	}
	if version == "" {
		version = "dev"
	}

	raw := map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   title + " API",
			"version": version,
		},
		"servers": []interface{}{map[string]interface{}{"url": cfg.BasePath()}},
		"paths":   paths,
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Error": map[string]interface{}{
					"type":     "object",
					"required": []string{"error"},
					"properties": map[string]interface{}{
						"error": map[string]interface{}{
							"type":     "object",
							"required": []string{"code", "message"},
							"properties": map[string]interface{}{
								"code":      map[string]interface{}{"type": "string"},
								"message":   map[string]interface{}{"type": "string"},
								"details":   map[string]interface{}{"type": "string"},
								"retryable": map[string]interface{}{"type": "boolean"},
								"metadata":  map[string]interface{}{"type": "object"},
								"timestamp": map[string]interface{}{"type": "string", "format": "date-time"},
							},
						},
					},
				},
			},
			"responses": map[string]interface{}{
				"Error": map[string]interface{}{
					"description": "Error envelope",
					"content": map[string]interface{}{
						"application/json": map[string]interface{}{
							"schema": map[string]interface{}{"$ref": "#/components/schemas/Error"},
						},
					},
				},
			},
		},
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}
	return doc.MarshalJSON()
}
