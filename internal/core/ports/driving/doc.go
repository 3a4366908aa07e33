// Package driving declares the operations the CLI, TUI and MCP adapters
// call on the core. internal/core/services implements every interface here.
package driving
