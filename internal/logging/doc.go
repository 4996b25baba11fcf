// Package logging provides leveled logging helpers controlled by the
// LOG_LEVEL and DEBUG environment variables.
package logging
