// Package models contains small cell models used by the command line
// tool and the engine's own tests. They are deliberately simple: the
// engine, not the physics, is what they exercise.
package models

// Model names.
const (
	HeatModel = "heat"
	LifeModel = "life"
)

// validModels maps accepted model names.
var validModels = map[string]bool{
	HeatModel: true,
	LifeModel: true,
}

// IsValidModel returns true if name is a recognized model.
func IsValidModel(name string) bool {
	return validModels[name]
}
