// Package config centralizes application configuration loading.
//
// Configuration is assembled from per-package partial Config structs (server,
// storage, log, database, loader) using Viper for environment variable
// binding and godotenv for .env file support. Defaults come from 'default'
// struct tags, discovered by reflection over the 'mapstructure' tags.
//
// Environment variables map onto nested keys with underscores, for example
// DATABASE_HOST -> database.host and LOADER_BATCH_LIMIT -> loader.batch_limit.
package config
