// Package env handles the process environment for echocheck.
//
// It loads .env files and reads ECHOCHECK_-prefixed variables that back
// command line flag defaults.
package env
