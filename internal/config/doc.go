// Package config defines chartmask settings, their defaults, and how they
// are loaded from YAML files, .env files and CHARTMASK_* variables.
package config
