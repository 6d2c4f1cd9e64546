// Package testutil provides shared test doubles, fixtures and servers for
// the conformance engine test suites.
package testutil

// DeviceAPIDoc is the OpenAPI description used across test suites. It covers
// every endpoint shape the engine distinguishes: a list endpoint feeding a
// one-parameter endpoint, a two-parameter endpoint, a schema-less success
// response and an endpoint that never returns 200.
const DeviceAPIDoc = `{
	"openapi": "3.0.0",
	"info": {
		"title": "Device Registry API",
		"version": "1.0"
	},
	"paths": {
		"/devices": {
			"get": {
				"responses": {
					"200": {
						"description": "Registered devices",
						"content": {
							"application/json": {
								"schema": {
									"type": "array",
									"items": {
										"type": "object",
										"required": ["id"],
										"properties": {
											"id": {"type": "string"},
											"label": {"type": "string"}
										}
									}
								}
							}
						}
					}
				}
			}
		},
		"/devices/{deviceId}": {
			"parameters": [
				{
					"name": "deviceId",
					"in": "path",
					"required": true,
					"schema": {"type": "string"}
				}
			],
			"get": {
				"responses": {
					"200": {
						"description": "A single device",
						"content": {
							"application/json": {
								"schema": {
									"type": "object",
									"required": ["id"],
									"properties": {
										"id": {"type": "string"},
										"label": {"type": "string"}
									}
								}
							}
						}
					}
				}
			}
		},
		"/devices/{deviceId}/streams/{streamId}": {
			"parameters": [
				{
					"name": "deviceId",
					"in": "path",
					"required": true,
					"schema": {"type": "string"}
				},
				{
					"name": "streamId",
					"in": "path",
					"required": true,
					"schema": {"type": "string"}
				}
			],
			"get": {
				"responses": {
					"200": {
						"description": "A single stream on a device",
						"content": {
							"application/json": {
								"schema": {"type": "object"}
							}
						}
					}
				}
			}
		},
		"/health": {
			"get": {
				"responses": {
					"200": {
						"description": "Service health",
						"content": {
							"application/json": {
								"schema": {
									"type": "object",
									"required": ["status"],
									"properties": {
										"status": {"type": "string"}
									}
								}
							}
						}
					}
				}
			}
		},
		"/metrics": {
			"get": {
				"responses": {
					"200": {
						"description": "Opaque runtime counters"
					}
				}
			}
		},
		"/queue": {
			"get": {
				"responses": {
					"202": {
						"description": "Deferred listing",
						"content": {
							"application/json": {
								"schema": {"type": "object"}
							}
						}
					}
				}
			}
		},
		"/reset": {
			"post": {
				"responses": {
					"204": {
						"description": "Registry cleared"
					}
				}
			}
		}
	}
}`

// Device registry bodies matching DeviceAPIDoc, shared between the scripted
// transport stubs and the conformant test server.
const (
	DeviceListBody  = `[{"id": "alpha", "label": "Device alpha"}, {"id": "beta", "label": "Device beta"}]`
	DeviceAlphaBody = `{"id": "alpha", "label": "Device alpha"}`
	HealthBody      = `{"status": "ok"}`
	MetricsBody     = `{"uptime": 42}`
)
