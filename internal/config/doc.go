// Package config loads invitebooker's YAML configuration and applies
// environment overrides on top of it.
//
// The file is created with defaults on first run. Environment variables win
// over the file:
//
//	USER_DEFAULT_TZ       timezone
//	WORK_START_LOCAL      work_start (HH:MM)
//	WORK_END_LOCAL        work_end (HH:MM)
//	DEFAULT_DURATION_MIN  default_duration_minutes
//	BUFFER_MIN            buffer_minutes
//	INVITEBOOKER_STORE    store as driver or driver:dsn
//	INVITEBOOKER_POLL     poll (cron spec or descriptor)
package config
