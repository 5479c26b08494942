// Package config loads runtime configuration for the deadbox CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment: DEADBOX_SERVER_URL, DEADBOX_SESSION_DB,
//     DEADBOX_REQUEST_TIMEOUT (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the deadbox API
//	-d string   path of the local session database
//	-t int      request timeout (seconds)
//
// Any remaining positional arguments are kept in Config.Args and select a
// one-shot command such as "checkin".
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "session_db": "deadbox-session.db",
//	  "request_timeout": "15s"
//	}
package config
