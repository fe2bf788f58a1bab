// Package config manages housescan configuration.
//
// Configuration is layered, lowest precedence first:
//  1. compiled-in defaults (the Default* constants)
//  2. environment variables (HOUSESCAN_*), including a .env file in the
//     working directory loaded via godotenv
//  3. the optional .housescan YAML file for per-site settings
//  4. CLI flags, applied by the cmd package
//
// Design decision: a single flat Config struct passed by injection rather
// than nested sub-configs or global state. The option count is small, and
// every component reads only the fields it is handed.
package config
