/*
Package config loads publisher settings from YAML or JSON.

# Overview

Config wraps a map[string]any and provides typed accessor methods that handle
missing keys and type mismatches by returning default values. Settings
extracts and validates the publisher configuration from it.

# Basic Usage

	settings, err := config.Load("threadevent.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	pub, err := threadevent.NewBuilder(reg).WithSettings(settings).Build()

# Recognized Keys

	exception_handler: rethrow   # or swallow
	metrics: false
	tracing: false
	log_level: info              # debug, info, warn, error
	log_file: ""                 # rotated JSON log file when set
	log_max_size_mb: 10
	id_generator: uuid           # or nuid

Any other key is an error. Settings may instead be nested under a top-level
"threadevent" key, in which case sibling keys belong to the application and
are ignored:

	service:
	  port: 8080
	threadevent:
	  exception_handler: swallow

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
