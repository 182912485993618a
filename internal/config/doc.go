// Package config provides the configuration of linkcrawl: the Config
// struct populated from CLI flags, its validation, and the YAML file
// listing candidate seed URLs.
package config
