package main

import _ "embed"

// embeddedConfig holds site defaults baked in at build time. Values from a
// config file, the environment and the command line override it.
//
//go:embed embed_config.yaml
var embeddedConfig []byte
