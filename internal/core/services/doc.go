// Package services implements the driving port interfaces.
// Services contain the core business logic: document ingestion, stage
// orchestration and settings. They call out only through driven ports.
//
// Services are pure Go with no CGO dependencies.
package services
