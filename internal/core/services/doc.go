// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend on domain and ports only, and receive strategies,
// stores and metrics through their constructors.
package services
