// Package config loads docdesk's configuration.
//
// # Resolution order
//
//  1. Built-in defaults
//  2. The TOML file (explicit path, else ~/.config/docdesk/config.toml)
//  3. DOCDESK_* environment variables
//
// A missing config file is not an error; docdesk runs against the local dev
// proxy out of the box. Blank values in the file or environment never replace
// a default.
//
// # Defaults
//
//   - base_url: http://127.0.0.1:7000/xapi (the dev proxy strips /xapi)
//   - timeout_ms: 10000
//   - page_size: 10
//   - credentials_path: ~/.config/docdesk/credentials.toml
//   - log_file: ~/.local/share/docdesk/docdesk.log
//   - log_level: info
//
// # TOML format
//
//	base_url = "https://docs.example.org/xapi"
//	timeout_ms = 15000
//	page_size = 20
//	log_level = "debug"
//
// # Environment
//
//	DOCDESK_BASE_URL     overrides base_url
//	DOCDESK_TIMEOUT      Go duration, e.g. 30s
//	DOCDESK_PAGE_SIZE    overrides page_size
//	DOCDESK_CREDENTIALS  overrides credentials_path
//	DOCDESK_TOKEN        bearer token used instead of the credentials file
//	DOCDESK_LOG_FILE     overrides log_file
//	DOCDESK_LOG_LEVEL    overrides log_level
//
// Paths accept a leading ~ and are returned absolute.
package config
