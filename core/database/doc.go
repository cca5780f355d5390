// Package database manages the MySQL connection used as the persistent store
// for devices, directories and media files.
//
// It wraps GORM connection setup: DSN construction with encoded credentials,
// connection pool tuning, an initial ping with timeout, and driver error
// translation so duplicate key violations surface as gorm.ErrDuplicatedKey.
package database
