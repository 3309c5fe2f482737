// Package config loads the bbhost configuration file.
//
// The file is config.yaml, searched in the working directory and then in
// $XDG_CONFIG_HOME/bbhost. Every key can be overridden from the environment
// with the BBHOST_ prefix, dots replaced by underscores:
//
//	version: 1
//	shell_name: bbhost          # $0 in the in-process shell
//	nameref_max_depth: 8        # BBHOST_NAMEREF_MAX_DEPTH
//	random_seed: 0              # 0 seeds $RANDOM from the clock
//	manifest_dirs:
//	  - ~/.local/share/bbhost/builtins
//	state_file: ""              # persist variables between runs
//	log:
//	  level: warn               # BBHOST_LOG_LEVEL
//	  format: text
//
// [Load] validates the result with struct tags checked by
// go-playground/validator. Each failure is reported as a [FieldError]
// naming the config key.
package config
